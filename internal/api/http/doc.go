// Package httpapi exposes the console's JSON endpoints and the embedded
// dashboard. The dashboard is a plain polling client: it reads the status
// endpoint on an interval, triggers actions with a POST, and links to the
// web terminal reported by the port lookup.
package httpapi
