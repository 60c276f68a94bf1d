package web

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"strconv"

	"github.com/thedropbears/driverstation/internal/render"
	"github.com/thedropbears/driverstation/internal/state"
)

const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type poseResponse struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

type targetResponse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type cargoResponse struct {
	InTunnel  bool `json:"inTunnel"`
	InChimney bool `json:"inChimney"`
	Trapped   bool `json:"trapped"`
}

type statusResponse struct {
	Phase         string          `json:"phase"`
	Profile       string          `json:"profile"`
	Status        string          `json:"status"`
	Connected     bool            `json:"connected"`
	Backend       string          `json:"backend,omitempty"`
	Address       string          `json:"address"`
	UptimeSeconds int64           `json:"uptimeSeconds"`
	Frame         uint64          `json:"frame"`
	Seq           uint64          `json:"seq"`
	Pose          *poseResponse   `json:"pose"`
	Target        *targetResponse `json:"target"`
	Cargo         cargoResponse   `json:"cargo"`
	MirrorURL     string          `json:"mirrorUrl,omitempty"`
}

func newStatusResponse(snap state.State, seq uint64) statusResponse {
	resp := statusResponse{
		Phase:         snap.Phase.String(),
		Profile:       snap.Profile,
		Status:        snap.Status,
		Connected:     snap.Phase == state.CONNECTED,
		Backend:       snap.Link.Backend,
		Address:       snap.Link.Address,
		UptimeSeconds: int64(snap.Link.Uptime.Seconds()),
		Frame:         snap.Frame,
		Seq:           seq,
		Cargo: cargoResponse{
			InTunnel:  snap.Cargo.InTunnel,
			InChimney: snap.Cargo.InChimney,
			Trapped:   snap.Cargo.Trapped,
		},
		MirrorURL: snap.Network.URL,
	}
	if snap.Pose.Valid {
		resp.Pose = &poseResponse{X: snap.Pose.X, Y: snap.Pose.Y, Heading: snap.Pose.Heading}
	}
	if snap.Target.Valid {
		resp.Target = &targetResponse{X: snap.Target.X, Y: snap.Target.Y}
	}
	return resp
}

func handleStatus(deps MirrorDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, seq := deps.State.SnapshotSeq()
		writeJSON(w, http.StatusOK, newStatusResponse(snap, seq))
	}
}

func handleFrame(deps MirrorDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		img, seq := deps.Frames.Latest()
		if img == nil {
			writeAPIError(w, http.StatusServiceUnavailable, "no_frame", "no frame rendered yet")
			return
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			deps.Logger.Errorf("web", "encode frame %d: %v", seq, err)
			writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Frame-Seq", strconv.FormatUint(seq, 10))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func handleQRCode(deps MirrorDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := deps.URL()
		if url == "" {
			writeAPIError(w, http.StatusNotFound, "no_url", "mirror url unknown")
			return
		}
		size := defaultQRSize
		if raw := r.URL.Query().Get("size"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < minQRSize || parsed > maxQRSize {
				writeAPIError(w, http.StatusBadRequest, "bad_size", "size must be an integer between 64 and 1024")
				return
			}
			size = parsed
		}
		data, err := render.GenerateQRCodePNG(url, size)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
