// Package config defines settings shared by the routerdesk binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Besides the local settings file, the daemon consumes a remote profile: a
// JSON document fetched verbatim from a configured URL that carries the
// fallback script location and extra action definitions. The profile is never
// persisted locally; it is re-fetched on schedule.
package config
