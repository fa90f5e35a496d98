// Package metrics exposes counters for administrative runs behind a small
// Recorder interface. Components receive a Recorder by injection and default
// to the no-op implementation, so tests and short-lived CLIs pay nothing.
package metrics
