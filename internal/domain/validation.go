package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const emailTag = "storefront_email"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// IsValidEmail проверяет email по упрощённому правилу витрины: local@domain.tld без пробелов.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func structValidator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation(emailTag, func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
		validatorInst = v
	})
	return validatorInst
}

// validate проверяет структуру по тегам и переводит ошибки валидатора в доменные.
func validate(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, fieldError(fe))
	}
	return fmt.Errorf("%w: %w", ErrValidation, errors.Join(errs...))
}

func fieldError(fe validator.FieldError) error {
	switch fe.Field() + "/" + fe.Tag() {
	case "name/required":
		return ErrNameRequired
	case "email/required":
		return ErrEmailRequired
	case "email/" + emailTag:
		return ErrEmailInvalid
	case "message/required":
		return ErrMessageRequired
	case "title/required":
		return ErrTitleRequired
	case "quantity/gt":
		return ErrQuantityInvalid
	default:
		return fmt.Errorf("%s failed on %q", fe.Field(), fe.Tag())
	}
}

// MissingRequired сообщает, вызвана ли ошибка пропущенным обязательным полем.
func MissingRequired(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrEmailRequired) ||
		errors.Is(err, ErrMessageRequired) ||
		errors.Is(err, ErrTitleRequired)
}
