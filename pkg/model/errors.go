package model

import "errors"

// ErrUnsupported is returned by Require when the model's format does not
// provide a capability. The neutral wrappers never return it.
var ErrUnsupported = errors.New("operation not supported by model format")
