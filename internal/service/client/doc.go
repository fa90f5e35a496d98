// Package client wraps the console HTTP API for the operator CLI and the
// updater's reachability probe.
package client
