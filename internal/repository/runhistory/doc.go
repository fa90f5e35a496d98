// Package runhistory persists recent administrative runs so the dashboard
// can show what happened even after a daemon restart.
package runhistory
