// Package throttle enforces the gateway's shared outbound byte budget.
//
// A single Budget is shared by every in-flight stream. Each chunk is
// charged before it is forwarded to the client; when the window's bytes
// run out the stream terminates mid-transfer and the bytes already sent
// stay spent. The budget refills when its rolling window elapses.
package throttle
