// Package runner executes administrative actions one at a time.
//
// Exactly one run may be in flight per host: the runner takes the advisory
// lock before doing anything else, streams the action's combined output to
// the append-only log, records the outcome in the run history, and releases
// the lock on every exit path. An invocation that finds the lock held
// performs no side effects beyond a single refusal line in the log.
package runner
