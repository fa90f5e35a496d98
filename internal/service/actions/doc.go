// Package actions resolves action names into command plans.
//
// Resolution order: builtin actions, actions pushed through the remote
// profile, and finally delegation — the name and arguments are forwarded
// verbatim to a fallback script fetched from the profile URL. Every resolved
// plan is a sequence of direct external tool invocations; this package never
// reimplements what opkg, uci or sysupgrade already do.
package actions
