package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/core/validation"
)

// RequestValidator plugs the shared validation rules into echo so that
// c.Validate reports the same structured field errors as the services.
type RequestValidator struct{}

var _ echo.Validator = RequestValidator{}

func NewRequestValidator() RequestValidator {
	return RequestValidator{}
}

func (RequestValidator) Validate(i any) error {
	return validation.Struct(i)
}
