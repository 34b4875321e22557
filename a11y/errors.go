package a11y

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// InputValidationError rejects a request before any browser is acquired.
type InputValidationError struct {
	URL    string
	Reason string
}

func (e *InputValidationError) Error() string { return e.Reason }

// NavigationError means the target page could not be reached or loaded in
// time. It aborts the analysis.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ResourceAcquisitionError means no browser or page could be obtained.
type ResourceAcquisitionError struct {
	Err error
}

func (e *ResourceAcquisitionError) Error() string {
	return fmt.Sprintf("browser unavailable: %v", e.Err)
}

func (e *ResourceAcquisitionError) Unwrap() error { return e.Err }

// IsInputValidation reports whether err is, or wraps, an InputValidationError.
func IsInputValidation(err error) bool {
	var target *InputValidationError
	return errors.As(err, &target)
}

func IsNavigation(err error) bool {
	var target *NavigationError
	return errors.As(err, &target)
}

func IsResourceAcquisition(err error) bool {
	var target *ResourceAcquisitionError
	return errors.As(err, &target)
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) error {
	s := strings.TrimSpace(raw)
	if s == "" {
		return &InputValidationError{URL: raw, Reason: "URL is required"}
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || u.Hostname() == "" {
		return &InputValidationError{URL: raw, Reason: "Invalid URL format"}
	}
	return nil
}
