// Package updater keeps routerdesk installations current: it compares the
// local binaries against the manifest published in the update folder,
// downloads and applies changed files, and restarts the console daemon.
package updater
