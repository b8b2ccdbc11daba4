package validate

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewCustomValidator returns an echo.Validator backed by go-playground/validator
// with the project's extra tags registered.
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{validator: New()}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New builds a validator.Validate with the notblank and trimmax tags registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", notBlank) //nolint:errcheck
	_ = v.RegisterValidation("trimmax", trimMax)   //nolint:errcheck
	return v
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// trimMax bounds the rune count of a string after surrounding whitespace is removed.
func trimMax(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) <= limit
}
