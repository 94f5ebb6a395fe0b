package dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	cefrRegex  = regexp.MustCompile(`^(A1|A2|B1|B2|C1|C2)$`)
	topicRegex = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("cefr", validateCefrLevel)
	validate.RegisterValidation("topic_code", validateTopicCode)
}

func GetValidator() *validator.Validate {
	return validate
}

func validateCefrLevel(fl validator.FieldLevel) bool {
	return cefrRegex.MatchString(fl.Field().String())
}

// Topic codes are UPPER_SNAKE identifiers like PRESENT_SIMPLE.
func validateTopicCode(fl validator.FieldLevel) bool {
	return topicRegex.MatchString(fl.Field().String())
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			var message string

			switch fieldError.Tag() {
			case "required":
				message = fieldError.Field() + " is required"
			case "min":
				message = fieldError.Field() + " must have at least " + fieldError.Param() + " items"
			case "max":
				message = fieldError.Field() + " must have at most " + fieldError.Param() + " items"
			case "oneof":
				message = fieldError.Field() + " must be one of: " + fieldError.Param()
			case "cefr":
				message = fieldError.Field() + " must be a CEFR level (A1-C2)"
			case "topic_code":
				message = fieldError.Field() + " must be an UPPER_SNAKE topic code"
			default:
				message = fieldError.Field() + " is invalid"
			}

			errors = append(errors, ValidationError{
				Field:   fieldError.Field(),
				Message: message,
			})
		}
	}

	return errors
}
