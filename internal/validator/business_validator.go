package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/lms-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateLectureEdit requires at least one change and a usable title.
func (bv *BusinessValidator) ValidateLectureEdit(title *string, video *models.VideoInfo, isPreviewFree *bool) ValidationErrors {
	var errors ValidationErrors

	if title == nil && video == nil && isPreviewFree == nil {
		errors = append(errors, ValidationError{
			Field:   "lectureTitle",
			Message: "one of lectureTitle, uploadVidInfo or isFree is required",
			Rule:    "business_logic",
		})
		return errors
	}

	if title != nil && strings.TrimSpace(*title) == "" {
		errors = append(errors, ValidationError{
			Field:   "lectureTitle",
			Message: "cannot be blank",
			Value:   *title,
			Rule:    "business_logic",
		})
	}

	if video != nil {
		errors = append(errors, bv.Validate(video)...)
	}

	return errors
}

// ValidatePurchaseTransition guards the purchase state machine.
func (bv *BusinessValidator) ValidatePurchaseTransition(current, next models.PurchaseStatus) ValidationErrors {
	allowed := map[models.PurchaseStatus][]models.PurchaseStatus{
		models.PurchasePending:   {models.PurchaseCompleted, models.PurchaseFailed},
		models.PurchaseFailed:    {models.PurchaseCompleted},
		models.PurchaseCompleted: {models.PurchaseCompleted},
	}

	for _, s := range allowed[current] {
		if s == next {
			return nil
		}
	}

	return ValidationErrors{{
		Field:   "status",
		Message: fmt.Sprintf("cannot transition from %s to %s", current, next),
		Value:   next,
		Rule:    "status_transition",
	}}
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("course_level", func(fl validator.FieldLevel) bool {
		switch models.CourseLevel(fl.Field().String()) {
		case models.LevelBeginner, models.LevelMedium, models.LevelAdvance:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("course_title", func(fl validator.FieldLevel) bool {
		n := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
		return n >= 1 && n <= 200
	})

	// bcrypt rejects passwords longer than 72 bytes
	bv.validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		n := len(fl.Field().String())
		return n >= 6 && n <= 72
	})
}
