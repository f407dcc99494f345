package errors

import "fmt"

var (
	ErrCommandFailed      = fmt.Errorf("command failed")
	ErrNotConnected       = fmt.Errorf("relay not connected")
	ErrRoomNotFound       = fmt.Errorf("room not found")
	ErrMessageNotFound    = fmt.Errorf("message not found")
	ErrEmptyContent       = fmt.Errorf("empty message content")
	ErrContentTooLong     = fmt.Errorf("message content too long")
	ErrUserExists         = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
)
