package commands

import (
	"errors"
	"fmt"

	"github.com/klabast/wb-services/ophaaldagen/internal/address"
	"github.com/klabast/wb-services/ophaaldagen/internal/app"
	"github.com/klabast/wb-services/ophaaldagen/internal/config"
	"github.com/klabast/wb-services/ophaaldagen/internal/reconcile"
)

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// StatusError carries the exit code a failure should end the process with
type StatusError struct {
	Err        error
	StatusCode int
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func usageErrorf(format string, args ...any) error {
	return &StatusError{Err: fmt.Errorf(format, args...), StatusCode: ExitUsage}
}

// usageErrors are caused by what the user typed, not by the services
var usageErrors = []error{
	address.ErrAddressNotFound,
	address.ErrNoMatchingLetter,
	address.ErrInvalidPostcode,
	address.ErrInvalidHouseNumber,
	address.ErrLetterRequired,
	reconcile.ErrUnknownWeekday,
	app.ErrInvalidReminder,
	app.ErrUnknownFormat,
	config.ErrInvalidConfig,
	ErrNoTerminal,
}

// ExitCode maps an error returned by a command to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	for _, target := range usageErrors {
		if errors.Is(err, target) {
			return ExitUsage
		}
	}
	return ExitFailure
}
