// Package operator implements the routerdesk CLI commands that talk to the
// console daemon: triggering actions, watching status, looking up the web
// terminal and listing supported devices.
package operator
