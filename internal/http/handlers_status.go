package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/target/fatal-log-mailer/internal/domain"
)

// TriggerReader looks up the stored harvest trigger.
type TriggerReader interface {
	GetByAction(ctx context.Context, actionName string) (*domain.ScheduledTask, error)
}

type statusResponse struct {
	Action          string     `json:"action"`
	Scheduled       bool       `json:"scheduled"`
	IntervalSeconds int64      `json:"interval_seconds,omitempty"`
	NextRunAt       *time.Time `json:"next_run_at,omitempty"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
}

// statusHandler reports whether the harvest trigger exists and when it fires next.
func statusHandler(triggers TriggerReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		task, err := triggers.GetByAction(r.Context(), domain.HarvestActionName)
		if err != nil {
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "trigger_lookup_failed", Err: err})
			return
		}

		resp := statusResponse{Action: domain.HarvestActionName}
		if task != nil {
			next := task.NextRunAt.UTC()
			resp.Scheduled = true
			resp.IntervalSeconds = int64(task.Interval / time.Second)
			resp.NextRunAt = &next
			if task.LastRunAt != nil {
				last := task.LastRunAt.UTC()
				resp.LastRunAt = &last
			}
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
