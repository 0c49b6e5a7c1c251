package inventory

import "errors"

// Error kinds surfaced by the engine. Parse failures abort the load of the
// whole file (and any multi-file load it is part of); serialize failures are
// returned synchronously, never swallowed.
var (
	ErrUnsupportedFormat      = errors.New("unsupported serialization format")
	ErrMalformedVariableToken = errors.New("variable token is missing '='")
	ErrMissingHostsKey        = errors.New("group entry is missing the hosts key")
	ErrSourceUnreadable       = errors.New("inventory source unreadable")
	ErrDestinationUnwritable  = errors.New("inventory destination unwritable")
	ErrHostNotFound           = errors.New("host not found")
)
