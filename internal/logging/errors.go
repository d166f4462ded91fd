package logging

import "errors"

// ErrMissingConnectionTarget is the configuration error returned when
// ModeRemote is selected without a telemetry connection target.
var ErrMissingConnectionTarget = errors.New("remote logging requires a connection target")
