// Package ratelimit implements the gateway's two-tier admission control.
//
// The burst tier caps requests per client over a fixed window using
// in-memory windowed counters. The daily tier draws on a global allowance kept in a
// durable counter store shared across instances; when that store is
// unreachable the tier fails open onto an in-memory counter with a
// reduced allowance, retrying the durable store on every evaluation.
package ratelimit
