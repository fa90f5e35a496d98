// Package packager produces the update manifest distributed alongside the
// routerdesk binaries: per-file sha512 checksums, role file lists and the
// restart targets the updater acts on.
package packager
