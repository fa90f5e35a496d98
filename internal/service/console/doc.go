// Package console implements the router admin console daemon: the HTTP API
// and dashboard, the lock-serialized action runner, the web terminal
// supervisor and the periodic profile and update jobs.
package console
