package dashboard

// Telemetry keys on the robot.
const (
	FieldTable   = "/SmartDashboard/Field"
	IndexerTable = "/components/indexer"

	PoseKey          = "estimator_pose"
	EffectiveGoalKey = "effective_goal"
	TunnelKey        = "has_cargo_in_tunnel"
	ChimneyKey       = "has_cargo_in_chimney"
	TrappedKey       = "has_trapped_cargo"
)

// RobotPose is the estimated robot position in metres and heading in
// degrees, counter-clockwise.
type RobotPose struct {
	X, Y    float64
	Heading float64
}

// TargetPosition is the effective goal in metres.
type TargetPosition struct {
	X, Y float64
}

type CargoFlags struct {
	InTunnel  bool
	InChimney bool
	Trapped   bool
}

// Telemetry is one frame's worth of reads. Nil pointers mean the field was
// absent or malformed and must not update the scene.
type Telemetry struct {
	Pose   *RobotPose
	Target *TargetPosition
	Cargo  CargoFlags
}

// Reader pulls Telemetry from the remote's local mirror.
type Reader struct {
	remote Remote
}

func NewReader(remote Remote) *Reader { return &Reader{remote: remote} }

func (r *Reader) Read() Telemetry {
	var t Telemetry
	field := r.remote.GetTable(FieldTable)
	if v, ok := field.GetNumberArray(PoseKey); ok && len(v) >= 3 {
		t.Pose = &RobotPose{X: v[0], Y: v[1], Heading: v[2]}
	}
	if v, ok := field.GetNumberArray(EffectiveGoalKey); ok && len(v) >= 2 {
		t.Target = &TargetPosition{X: v[0], Y: v[1]}
	}
	indexer := r.remote.GetTable(IndexerTable)
	t.Cargo = CargoFlags{
		InTunnel:  indexer.GetBoolean(TunnelKey, false),
		InChimney: indexer.GetBoolean(ChimneyKey, false),
		Trapped:   indexer.GetBoolean(TrappedKey, false),
	}
	return t
}
