// Package metrics holds the metric names and tag conventions for harvest runs and scheduler ticks.
package metrics

import (
	"time"

	"github.com/target/fatal-log-mailer/internal/domain/model"
	obserrors "github.com/target/fatal-log-mailer/internal/observability/errors"
	"github.com/target/fatal-log-mailer/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Metric names. The statsd client adds the configured prefix.
const (
	MetricHarvestRun      = "harvest.run"
	MetricHarvestDuration = "harvest.duration"
	MetricHarvestSent     = "harvest.mail.sent"
	MetricHarvestFiles    = "harvest.files"
	MetricHarvestWarning  = "harvest.warning"
	MetricSchedulerTick   = "scheduler.tick"
	MetricSchedulerFired  = "scheduler.fired"
	MetricSchedulerTickMs = "scheduler.tick.duration"
)

// HarvestRun captures what a single harvest run did.
type HarvestRun struct {
	Report *model.DispatchReport
	Err    error
	// Trigger is "schedule" or "manual".
	Trigger string
}

// Result derives the tag value for the run outcome.
func (in HarvestRun) Result() string {
	switch {
	case in.Err != nil:
		return ResultError
	case in.Report == nil || in.Report.Sent == 0:
		return ResultNoop
	default:
		return ResultSuccess
	}
}

// EmitHarvestRun emits the counters and timing for a finished run.
func EmitHarvestRun(sink statsd.Sink, in HarvestRun) {
	if sink == nil {
		return
	}

	tags := map[string]string{"result": in.Result()}
	if in.Trigger != "" {
		tags["trigger"] = in.Trigger
	}
	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count(MetricHarvestRun, 1, tags)

	r := in.Report
	if r == nil {
		return
	}
	if d := r.FinishedAt.Sub(r.StartedAt); d > 0 {
		sink.Timing(MetricHarvestDuration, d, CloneTags(tags))
	}
	sink.Gauge(MetricHarvestFiles, float64(r.Files), nil)
	if r.Sent > 0 {
		sink.Count(MetricHarvestSent, int64(r.Sent), nil)
	}
	for kind, n := range countWarnings(r.Warnings) {
		sink.Count(MetricHarvestWarning, int64(n), map[string]string{"kind": string(kind)})
	}
}

// SchedulerTick captures the outcome of one scheduler pass.
type SchedulerTick struct {
	Fired    int
	Duration time.Duration
	Err      error
}

// EmitSchedulerTick emits tick-level counters for the scheduler runner.
func EmitSchedulerTick(sink statsd.Sink, in SchedulerTick) {
	if sink == nil {
		return
	}

	result := ResultSuccess
	switch {
	case in.Err != nil:
		result = ResultError
	case in.Fired == 0:
		result = ResultNoop
	}
	tags := map[string]string{"result": result}
	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count(MetricSchedulerTick, 1, tags)
	if in.Fired > 0 {
		sink.Count(MetricSchedulerFired, int64(in.Fired), nil)
	}
	if in.Duration > 0 {
		sink.Timing(MetricSchedulerTickMs, in.Duration, CloneTags(tags))
	}
}

func countWarnings(ws []model.Warning) map[model.WarningKind]int {
	if len(ws) == 0 {
		return nil
	}
	out := make(map[model.WarningKind]int)
	for _, w := range ws {
		out[w.Kind]++
	}
	return out
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
