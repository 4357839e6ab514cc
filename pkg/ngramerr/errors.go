// Package ngramerr holds the one error kind the core surfaces to callers.
// Every other error taxonomy entry in the spec (InvalidConfig, InvalidInput,
// EmptyInput) is recovered locally — clamped, or resolved to an empty
// result — and never returned as a Go error.
package ngramerr

import "errors"

// ErrIncompatibleModel is returned from Load when the model's type tag
// doesn't match the engine being loaded into. It is the only recoverable
// error this core surfaces; everything else is absorbed into "no results."
var ErrIncompatibleModel = errors.New("ngramkit: incompatible model type")
