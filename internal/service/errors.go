package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/dp_pos/internal/repo"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
	ErrForbidden  = errors.New("forbidden")  // 403
	ErrTimeout    = errors.New("timeout")    // 504

	ErrInvalidCredentials = errors.New("invalid email or password") // 401

	// ErrCompensationFailed means a failed workflow could not undo every
	// step it had applied. Stored state needs a manual look.
	ErrCompensationFailed = errors.New("compensation failed")
)

// StepError names the workflow step whose collaborator failed. Steps applied
// before it have been compensated unless the error also carries
// ErrCompensationFailed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return "step " + e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error { return e.Err }

// classify maps storage and context errors onto the service sentinels.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict),
		errors.Is(err, ErrForbidden), errors.Is(err, ErrTimeout):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, repo.ErrStaleOrder):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
