package engine

import "errors"

// ErrUnavailable indicates no engine implementation is configured.
// Operators see this distinct message when the service is misconfigured,
// as opposed to a transient construction failure.
var ErrUnavailable = errors.New("retrieval engine not available")
