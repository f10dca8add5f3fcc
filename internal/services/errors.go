package services

import (
	"errors"
	"fmt"
)

// Not found
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrLectureNotFound     = errors.New("lecture not found")
	ErrPurchaseNotFound    = errors.New("purchase not found")
	ErrNoInstructorCourses = errors.New("course not found")
)

// Client errors reported with their message
var (
	ErrUserAlreadyExists       = errors.New("user already exists")
	ErrEmailNotRegistered      = errors.New("user not found")
	ErrIncorrectPassword       = errors.New("incorrect password")
	ErrCourseAlreadyPurchased  = errors.New("course already purchased")
	ErrCheckoutSessionFailed   = errors.New("error while creating session")
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")
	ErrNoProfileChanges        = errors.New("nothing to update")
)

// Auth
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// BusinessRuleError is a request that is well formed but breaks a domain rule.
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func IsBusinessRuleError(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrLectureNotFound) ||
		errors.Is(err, ErrPurchaseNotFound) ||
		errors.Is(err, ErrNoInstructorCourses)
}
