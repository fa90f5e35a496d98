// Package lockfile implements the advisory lock that serializes
// administrative actions on a host.
//
// The lock is a small file whose existence means "an operation is in
// progress". It records the owner PID so that a lock left behind by a killed
// process can be detected and reclaimed instead of wedging the console until
// someone deletes the file by hand.
package lockfile
