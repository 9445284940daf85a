package errors

import "fmt"

var (
	ErrMissingSessionID    = fmt.Errorf("payload carries no signaling session id")
	ErrUnknownPayloadShape = fmt.Errorf("payload matches no known signaling shape")
	ErrInvalidPayload      = fmt.Errorf("signaling payload failed validation")
)
