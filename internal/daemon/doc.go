// Package daemon runs the long-lived wallpaper service.
//
// A Daemon owns the rotation loop and the ambient components around it: the config
// watcher that hot-reloads settings, the scheduler that emits periodic status reports and
// an optional HTTP listener exposing Prometheus metrics and a JSON status document. Only
// the rotation loop touches loop state; the other components communicate through the
// settings store and the status tracker.
package daemon
