package core

import "errors"

// ErrMalformedPayload is returned by Payload getters when a key is missing or
// holds a value of the wrong type.
var ErrMalformedPayload = errors.New("malformed payload")
