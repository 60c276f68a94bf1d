package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thedropbears/driverstation/internal/sim"
)

// SimControl exposes the fake robot over HTTP.
type SimControl struct {
	robot   *sim.Robot
	backend string
	address string
}

func NewSimControl(robot *sim.Robot, backend, address string) *SimControl {
	return &SimControl{robot: robot, backend: backend, address: address}
}

type simStateResponse struct {
	Backend string       `json:"backend"`
	Address string       `json:"address"`
	Robot   sim.Snapshot `json:"robot"`
}

func (c *SimControl) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	registerSimEndpoints(r, c)
	return r
}

func registerSimEndpoints(r chi.Router, control *SimControl) {
	r.Post("/sim/reset", func(w http.ResponseWriter, r *http.Request) {
		control.robot.Reset()
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Get("/sim/state", func(w http.ResponseWriter, r *http.Request) {
		writeSimJSON(w, http.StatusOK, simStateResponse{
			Backend: control.backend,
			Address: control.address,
			Robot:   control.robot.Snapshot(),
		})
	})

	r.Get("/sim/faults", func(w http.ResponseWriter, r *http.Request) {
		writeSimJSON(w, http.StatusOK, control.robot.Faults())
	})

	r.Post("/sim/faults", func(w http.ResponseWriter, r *http.Request) {
		var patch struct {
			DropPose   *bool `json:"dropPose"`
			DropTarget *bool `json:"dropTarget"`
			JamCargo   *bool `json:"jamCargo"`
			Freeze     *bool `json:"freeze"`
		}
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeSimError(w, http.StatusBadRequest, "invalid json")
			return
		}
		current := control.robot.Faults()
		if patch.DropPose != nil {
			current.DropPose = *patch.DropPose
		}
		if patch.DropTarget != nil {
			current.DropTarget = *patch.DropTarget
		}
		if patch.JamCargo != nil {
			current.JamCargo = *patch.JamCargo
		}
		if patch.Freeze != nil {
			current.Freeze = *patch.Freeze
		}
		control.robot.SetFaults(current)
		writeSimJSON(w, http.StatusOK, current)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"error": message})
}
