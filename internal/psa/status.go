// Package psa implements the synchronous call boundary between the
// application domain and a trusted-domain service. Requests and replies
// cross the boundary only as encoded frames; no memory is shared.
package psa

import "fmt"

// Status is the result of a boundary call. Non-success values are errors.
type Status int32

const (
	Success              Status = 0
	ErrProgrammerError   Status = -129
	ErrConnectionRefused Status = -130
	ErrGeneric           Status = -132
	ErrNotSupported      Status = -134
	ErrInvalidArgument   Status = -135
)

func (s Status) Error() string {
	switch s {
	case Success:
		return "psa: success"
	case ErrProgrammerError:
		return "psa: programmer error"
	case ErrConnectionRefused:
		return "psa: connection refused"
	case ErrGeneric:
		return "psa: generic error"
	case ErrNotSupported:
		return "psa: not supported"
	case ErrInvalidArgument:
		return "psa: invalid argument"
	}
	return fmt.Sprintf("psa: status %d", int32(s))
}

// Err returns nil for Success and s otherwise.
func (s Status) Err() error {
	if s == Success {
		return nil
	}
	return s
}

// Type identifies a service operation.
type Type int32

// Wake-source service operations.
const (
	GetWakeupSource   Type = 1001
	ClearWakeupSource Type = 1002
)

func (t Type) String() string {
	switch t {
	case GetWakeupSource:
		return "GET_WAKEUP_SOURCE"
	case ClearWakeupSource:
		return "CLEAR_WAKEUP_SOURCE"
	}
	return fmt.Sprintf("TYPE_%d", int32(t))
}
