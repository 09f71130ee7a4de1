package sign

import "errors"

var ErrMalformedInput = errors.New("malformed signing input")
var ErrUnsupportedKey = errors.New("unsupported signing key type")
var ErrSigningFailure = errors.New("signing operation failed")
