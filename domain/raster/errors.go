package raster

import "errors"

// Recoverable failures surfaced while producing pixel buffers. None of them is
// fatal: callers return to the previous well-defined state and report upward.
var (
	// ErrCaptureUnavailable reports a frame source that is not ready (zero
	// dimensions, stream not started) or that refused access.
	ErrCaptureUnavailable = errors.New("capture unavailable")
	// ErrEncodeFailure reports a pixel buffer that could not be produced from a
	// captured frame or a composed canvas.
	ErrEncodeFailure = errors.New("encode failure")
	// ErrInvalidUpload reports an uploaded file that is not a decodable image.
	ErrInvalidUpload = errors.New("invalid upload")
	// ErrReleased reports use of a source whose pixels were already returned.
	ErrReleased = errors.New("raster source released")
)
