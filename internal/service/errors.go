package service

import (
	"errors"
	"fmt"
	"time"

	"momskitchen/internal/api"
	"momskitchen/internal/validation"
)

var (
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrAddressNotFound = errors.New("address not found")
	ErrOrderNotFound   = errors.New("order not found")
)

// UserError is a failed operation with the text to show the customer
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error { return e.Err }

// userError wraps err with the backend's message, or fallback when it sent none
func userError(err error, fallback string) error {
	return &UserError{Message: api.UserMessage(err, fallback), Err: err}
}

// ThrottleError is returned when an OTP was requested again too soon
type ThrottleError struct {
	Wait time.Duration
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("Please wait %d seconds before requesting another OTP", int(e.Wait.Round(time.Second)/time.Second))
}

// Message returns the customer-facing text for err
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message
	}
	var ve validation.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var te *ThrottleError
	if errors.As(err, &te) {
		return te.Error()
	}
	return err.Error()
}
