// Package actionlog maintains the append-only log administrative actions
// write their combined output to. The dashboard polls the tail of this log,
// so writes only ever append; the file is never rewritten in place.
package actionlog
