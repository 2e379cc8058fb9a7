package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyTickID     = "tick_id"
	KeyDaypart    = "daypart"
	KeyHour       = "hour"
	KeyImage      = "image"
	KeyCandidates = "candidates"
	KeySource     = "source"
	KeyOutcome    = "outcome"
	KeyCommand    = "command"
	KeyInterval   = "interval"
	KeyWait       = "wait"
	KeyPath       = "path"
	KeyJobName    = "job_name"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func TickID(id string) slog.Attr         { return slog.String(KeyTickID, id) }
func Daypart(name string) slog.Attr      { return slog.String(KeyDaypart, name) }
func Hour(h int) slog.Attr               { return slog.Int(KeyHour, h) }
func Image(path string) slog.Attr        { return slog.String(KeyImage, path) }
func Candidates(n int) slog.Attr         { return slog.Int(KeyCandidates, n) }
func Source(s string) slog.Attr          { return slog.String(KeySource, s) }
func Outcome(o string) slog.Attr         { return slog.String(KeyOutcome, o) }
func Command(c string) slog.Attr         { return slog.String(KeyCommand, c) }
func Interval(d time.Duration) slog.Attr { return slog.Duration(KeyInterval, d) }
func Wait(d time.Duration) slog.Attr     { return slog.Duration(KeyWait, d) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func JobName(n string) slog.Attr         { return slog.String(KeyJobName, n) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
