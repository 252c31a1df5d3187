// Package sentinel provides a const-declarable error type for sentinel errors.
//
// Sentinel errors created with errors.New live in package-level vars that can
// be reassigned. Error is backed by a plain string, so error values can be
// declared as const and stay immutable while remaining comparable, which keeps
// errors.Is working through wrapped error chains.
package sentinel
