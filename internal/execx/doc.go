// Package execx runs external tools (opkg, uci, sysctl, make, rsync, gcloud)
// with their combined stdout+stderr streamed to a caller-provided writer.
//
// routerdesk deliberately keeps every system operation a direct invocation of
// the pre-existing tool; this package is the single place those invocations
// go through.
package execx
