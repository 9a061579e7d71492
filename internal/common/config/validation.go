package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
)

// Validate checks the `validate` tags of config. Each violation is logged and returned as an
// *jobbencherrors.ErrConfiguration, combined into a *multierror.Error.
func Validate(config interface{}) error {
	err := validator.New().Struct(config)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	LogValidationErrors(validationErrors)
	var result *multierror.Error
	for _, fieldErr := range validationErrors {
		result = multierror.Append(result, &jobbencherrors.ErrConfiguration{
			Field:   stripPrefix(fieldErr.Namespace()),
			Value:   fieldErr.Value(),
			Message: describe(fieldErr),
		})
	}
	return result.ErrorOrNil()
}

func LogValidationErrors(err error) {
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			fieldName := stripPrefix(err.Namespace())
			tag := err.Tag()
			switch tag {
			case "required":
				log.Errorf("ConfigError: Field %s is required but was not found", fieldName)
			default:
				log.Errorf("ConfigError: Field %s has invalid value %v: %s", fieldName, err.Value(), tag)
			}
		}
	}
}

func describe(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "value is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", err.Param())
	case "gte", "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "lte", "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}

func stripPrefix(s string) string {
	if idx := strings.Index(s, "."); idx != -1 {
		return s[idx+1:]
	}
	return s
}
