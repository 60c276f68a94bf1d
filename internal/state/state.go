package state

import (
	"sync"
	"time"
)

type Phase int

const (
	BOOTING Phase = iota
	STANDBY
	CONNECTED
	STOPPED
)

func (p Phase) String() string {
	switch p {
	case BOOTING:
		return "booting"
	case STANDBY:
		return "standby"
	case CONNECTED:
		return "connected"
	case STOPPED:
		return "stopped"
	}
	return "unknown"
}

type LinkInfo struct {
	Backend string
	Address string
	Uptime  time.Duration
}

// PoseInfo is the last pose shown on screen. Valid is false until the
// first successful read.
type PoseInfo struct {
	Valid   bool
	X, Y    float64
	Heading float64
}

type TargetInfo struct {
	Valid bool
	X, Y  float64
}

type CargoInfo struct {
	InTunnel  bool
	InChimney bool
	Trapped   bool
}

type NetworkInfo struct {
	URL string
}

type State struct {
	Phase   Phase
	Profile string
	Status  string
	Frame   uint64
	Link    LinkInfo
	Pose    PoseInfo
	Target  TargetInfo
	Cargo   CargoInfo
	Network NetworkInfo
}

// Store holds the latest State for readers on other goroutines. Every
// update bumps a sequence number so pollers can skip unchanged states.
type Store struct {
	mu    sync.RWMutex
	state State
	seq   uint64
}

func NewStore() *Store {
	return &Store{state: State{Phase: BOOTING}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

// SnapshotSeq returns the state together with its sequence number.
func (store *Store) SnapshotSeq() (State, uint64) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state, store.seq
}

func (store *Store) Seq() uint64 {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.seq
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	store.seq++
	store.mu.Unlock()
}

func (store *Store) UpdateNetwork(network NetworkInfo) {
	store.mu.Lock()
	store.state.Network = network
	store.seq++
	store.mu.Unlock()
}

// UpdateFrame replaces the per-frame fields, keeping Network.
func (store *Store) UpdateFrame(frame State) {
	store.mu.Lock()
	frame.Network = store.state.Network
	store.state = frame
	store.seq++
	store.mu.Unlock()
}
