// Package terminal supervises the web terminal (ttyd) shown on the
// dashboard. The daemon either adopts a ttyd that is already listening or
// spawns its own, and answers the dashboard's port lookup.
package terminal
