// Package signaler provides interval signalers sharing one contract, Signaler.
//
// ThreadingTimer, SystemTimer and PeriodicTimer are backed by real time.
// TestSignaler is driven manually by its Tick methods.
package signaler

var (
	_ Signaler = (*ThreadingTimer)(nil)
	_ Signaler = (*SystemTimer)(nil)
	_ Signaler = (*PeriodicTimer)(nil)
	_ Signaler = (*TestSignaler)(nil)
)
