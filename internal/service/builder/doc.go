// Package builder drives the firmware build pipeline: it downloads the
// OpenWrt image builder for a target, runs make with the plan's profile and
// package list, verifies checksums and publishes the artifacts with rsync.
package builder
