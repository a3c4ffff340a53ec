// Package validator registers the custom binding tags used by the HTTP layer
// on gin's validator engine.
package validator

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// rejectionReasons mirrors entities.RejectionReason values. Kept here so this
// package does not depend on the domain layer.
var rejectionReasons = map[string]struct{}{
	"TOO_FAR":       {},
	"TOO_EXPENSIVE": {},
	"NOT_RELEVANT":  {},
	"OTHER":         {},
}

// Register installs custom validations on gin's default validator. Safe to
// call more than once.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

// RegisterOn installs custom validations on v.
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("rejection_reason", validateRejectionReason); err != nil {
		return err
	}
	return v.RegisterValidation("notblank", validateNotBlank)
}

func validateRejectionReason(fl validator.FieldLevel) bool {
	_, ok := rejectionReasons[strings.ToUpper(fl.Field().String())]
	return ok
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Describe turns validator errors into a field -> message map for API responses.
func Describe(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = "failed on '" + fe.Tag() + "'"
	}
	return out
}
