package errors

import "fmt"

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrHandlerPanic    = fmt.Errorf("command handler panic")
	ErrEmptyWords      = fmt.Errorf("no words have been found")
	ErrInvalidIdentity = fmt.Errorf("invalid identity")
	ErrInvalidSettings = fmt.Errorf("invalid settings")
	ErrTransportClosed = fmt.Errorf("transport closed")
	ErrNotConnected    = fmt.Errorf("transport not connected")
)
