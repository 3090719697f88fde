package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vzahanych/kma-weather/internal/grid"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Registration only fails for an empty tag or nil func.
	_ = validate.RegisterValidation("latitude", validateLatitude)
	_ = validate.RegisterValidation("longitude", validateLongitude)
	_ = validate.RegisterValidation("city", validateCity)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func GetValidator() *validator.Validate {
	return validate
}

// Range checks are shared with grid.NewCoordinate so that the HTTP layer and
// the projection agree on what is valid.
func validateLatitude(fl validator.FieldLevel) bool {
	_, err := grid.NewCoordinate(fl.Field().Float(), 0)
	return err == nil
}

func validateLongitude(fl validator.FieldLevel) bool {
	_, err := grid.NewCoordinate(0, fl.Field().Float())
	return err == nil
}

// validateCity rejects blank names and names with path separators.
func validateCity(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	return s != "" && !strings.ContainsAny(s, "/\\")
}

type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

func FormatValidationErrors(err error) []ValidationError {
	var out []ValidationError

	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			out = append(out, ValidationError{
				Field:   fe.Field(),
				Value:   fe.Value(),
				Tag:     fe.Tag(),
				Message: getErrorMessage(fe),
			})
		}
	}

	return out
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "latitude":
		return fmt.Sprintf("%s must be a valid latitude between -90 and 90 degrees", fe.Field())
	case "longitude":
		return fmt.Sprintf("%s must be a valid longitude between -180 and 180 degrees", fe.Field())
	case "city":
		return fmt.Sprintf("%s must be a city name such as 서울 or Seoul", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func ValidateStruct(s interface{}) []ValidationError {
	if err := validate.Struct(s); err != nil {
		return FormatValidationErrors(err)
	}
	return nil
}
