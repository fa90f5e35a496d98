// Package common holds helpers shared by several services.
//
// It provides detection of the current system actor (hostname/username) used
// for audit records on administrative runs.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
