package icy

import "errors"

// Failure classes for a single extraction. Connection and transport failures
// carry no sentinel; Open returns them as wrapped errors directly.
var (
	// ErrUnsupportedStream means the server did not advertise in-stream
	// metadata via icy-metaint, so block positions are unknowable.
	ErrUnsupportedStream = errors.New("server does not support in-stream metadata (no usable icy-metaint header)")

	// ErrNoMetadata means the length byte at the current block position was
	// zero: the stream is healthy but carried no metadata this cycle.
	ErrNoMetadata = errors.New("no metadata present at this position in the stream")

	// ErrMalformedMetadata means the stream ended mid-frame or the block did
	// not decode into key='value'; assignments.
	ErrMalformedMetadata = errors.New("malformed metadata block")
)
