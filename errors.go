package retinaface

import "errors"

var (
	// ErrConfiguration indicates the decoder parameters describe an
	// impossible model, eg. a non-positive stride or an empty base size
	// list.  No decoding is attempted.
	ErrConfiguration = errors.New("invalid decoder configuration")

	// ErrSizeMismatch indicates a tensor buffer length does not match the
	// anchor count implied by the scale configuration and input size.  The
	// caller likely has a model/config version mismatch.
	ErrSizeMismatch = errors.New("tensor size mismatch")
)
