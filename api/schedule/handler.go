// Package schedule exposes the planner over HTTP: POST a task list, receive
// the simulated schedule.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kilianp07/workplan/api/runs"
	"github.com/kilianp07/workplan/app"
	"github.com/kilianp07/workplan/core/planner"
	"github.com/kilianp07/workplan/core/scheduler"
)

// maxBody bounds request bodies.
const maxBody = 4 << 20

// Scheduler runs a decoded request.
type Scheduler interface {
	ScheduleRequest(ctx context.Context, r io.Reader) (*app.Outcome, error)
}

type errorBody struct {
	Error    string              `json:"error"`
	Rejected []planner.Rejection `json:"rejected,omitempty"`
}

// NewHandler returns an HTTP handler for POST /api/schedule. The body is an
// app.Request; the response is the run outcome.
func NewHandler(svc Scheduler, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !runs.Authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		out, err := svc.ScheduleRequest(r.Context(), http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			body := errorBody{Error: err.Error()}
			if out != nil {
				body.Rejected = out.Rejected
			}
			writeJSON(w, statusFor(err), body)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrBadRequest), errors.Is(err, scheduler.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrNoTasks):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
