// Package validation holds the client-side checks run before any request is sent.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"momskitchen/internal/models"
)

var (
	otpRegex     = regexp.MustCompile(`^\d{6}$`)
	pincodeRegex = regexp.MustCompile(`^\d{6}$`)
	phoneRegex   = regexp.MustCompile(`^\+?\d{10,13}$`)
)

// AuthenticityOptions are the cuisine preferences offered to the customer
var AuthenticityOptions = []string{"North Indian", "South Indian", "East Indian", "West Indian", "Fusion", "Any"}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidatePhone checks that a phone number was entered
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ValidationError{Field: "phone_number", Message: "Enter phone number"}
	}
	if !phoneRegex.MatchString(strings.ReplaceAll(phone, " ", "")) {
		return ValidationError{Field: "phone_number", Message: "Please enter a valid phone number"}
	}
	return nil
}

// ValidateOTP checks for a 6-digit code
func ValidateOTP(code string) error {
	if !otpRegex.MatchString(code) {
		return ValidationError{Field: "otp", Message: "Please enter a valid 6-digit OTP"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{Field: "name", Message: "Enter name and phone"}
	}
	return nil
}

// ValidatePincode checks for a 6-digit postal code
func ValidatePincode(pincode string) error {
	if !pincodeRegex.MatchString(pincode) {
		return ValidationError{Field: "pincode", Message: "Please enter a valid 6-digit pincode"}
	}
	return nil
}

// ValidateAddress checks every field of a new or edited address, in form order
func ValidateAddress(a models.Address) error {
	if strings.TrimSpace(a.AddressLine) == "" {
		return ValidationError{Field: "address_line", Message: "Please enter your address"}
	}
	if strings.TrimSpace(a.City) == "" {
		return ValidationError{Field: "city", Message: "Please enter your city"}
	}
	if strings.TrimSpace(a.State) == "" {
		return ValidationError{Field: "state", Message: "Please enter your state"}
	}
	return ValidatePincode(a.Pincode)
}

// ValidatePreferences checks the dietary preference and cuisine choice
func ValidatePreferences(p models.Preferences) error {
	switch p.VegPref {
	case models.VegPrefVeg, models.VegPrefNonVeg, models.VegPrefBoth:
	default:
		return ValidationError{Field: "veg_pref", Message: "Please choose veg, nonveg or both"}
	}
	if p.Authenticity == "" {
		return nil
	}
	for _, opt := range AuthenticityOptions {
		if opt == p.Authenticity {
			return nil
		}
	}
	return ValidationError{Field: "authenticity", Message: "Unknown cuisine preference"}
}
