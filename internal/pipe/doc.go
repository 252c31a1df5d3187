// Package pipe wraps an anonymous kernel pipe with end-of-life bookkeeping.
//
// A Pipe connects one pipeline stage's standard output to the next stage's
// standard input. The orchestrating process creates the pipe, stages each end
// into exactly one child via Claim, and closes its own descriptor copies with
// Close once both neighbors have started. A write-end copy left open in any
// process prevents the reader from ever seeing end-of-stream, so release must
// be unconditional and idempotent on every exit path.
package pipe
