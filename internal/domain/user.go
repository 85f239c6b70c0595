// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const MaxUsernameLen = 36

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

// NormalizeUsername trims a user supplied identity and checks it fits the
// gateway's username rules.
func NormalizeUsername(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if len(name) == 0 {
		return "", ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLen {
		return "", ErrUsernameTooLong
	}
	return name, nil
}
