package controller

import (
	"errors"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
)

// Validator is implemented by beans that check themselves before the
// service sees them.
type Validator interface {
	Validate() error
}

// validateBean runs Validate when the bean implements Validator. Plain errors
// become validation AppErrors; AppErrors pass through.
func validateBean(bean any) error {
	v, ok := bean.(Validator)
	if !ok {
		return nil
	}
	err := v.Validate()
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Validation(err.Error(), nil)
}
