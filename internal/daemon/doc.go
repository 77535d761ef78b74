// Package daemon bundles the workflow manager and the staging sweeper
// into a single lifecycle with flock-based locking to prevent multiple
// instances from sharing one queue.
package daemon
