package core

import "strconv"

// ErrorCode is a numeric error reported by the videocall plugin.
type ErrorCode int

const (
	ErrNoMessage         ErrorCode = 470
	ErrInvalidJSON       ErrorCode = 471
	ErrInvalidRequest    ErrorCode = 472
	ErrRegisterFirst     ErrorCode = 473
	ErrInvalidElement    ErrorCode = 474
	ErrMissingElement    ErrorCode = 475
	ErrUsernameTaken     ErrorCode = 476
	ErrAlreadyRegistered ErrorCode = 477
	ErrNoSuchUsername    ErrorCode = 478
	ErrUseEchoTest       ErrorCode = 479
	ErrAlreadyInCall     ErrorCode = 480
	ErrNoCall            ErrorCode = 481
	ErrMissingSDP        ErrorCode = 482
	ErrInvalidSDP        ErrorCode = 483
	ErrUnknown           ErrorCode = 499
)

var errorCodeNames = map[ErrorCode]string{
	ErrNoMessage:         "no-message",
	ErrInvalidJSON:       "invalid-json",
	ErrInvalidRequest:    "invalid-request",
	ErrRegisterFirst:     "register-first",
	ErrInvalidElement:    "invalid-element",
	ErrMissingElement:    "missing-element",
	ErrUsernameTaken:     "username-taken",
	ErrAlreadyRegistered: "already-registered",
	ErrNoSuchUsername:    "no-such-username",
	ErrUseEchoTest:       "use-echo-test",
	ErrAlreadyInCall:     "already-in-call",
	ErrNoCall:            "no-call",
	ErrMissingSDP:        "missing-sdp",
	ErrInvalidSDP:        "invalid-sdp",
	ErrUnknown:           "unknown",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "code-" + strconv.Itoa(int(c))
}

func (c ErrorCode) Error() string {
	return "gateway error " + strconv.Itoa(int(c)) + " (" + c.String() + ")"
}

// Known reports whether the plugin documents c.
func (c ErrorCode) Known() bool {
	_, ok := errorCodeNames[c]
	return ok
}

// Drives reports whether c moves a session to another state. All other
// codes are diagnostic only.
func (c ErrorCode) Drives() bool {
	return c == ErrUsernameTaken || c == ErrNoSuchUsername
}
