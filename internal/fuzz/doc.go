// Package fuzztests houses Go fuzz harnesses for the load boundary: bytes go
// through the llir backend and graph reconstruction, and the harness checks
// that no input panics and that every produced graph survives a snapshot
// round trip.
package fuzztests
