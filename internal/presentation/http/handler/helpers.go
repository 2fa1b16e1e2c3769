package handler

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/shop-billing-api/internal/application/service"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/dto/response"
	"github.com/sangkips/shop-billing-api/pkg/apperror"
)

// GetSessionID returns the cart session resolved by the session middleware.
func GetSessionID(c *gin.Context) string {
	if session := c.GetString(response.SessionKey); session != "" {
		return session
	}
	return service.DefaultSession
}

// bindJSON decodes the request body into req. Failed binding rules become a
// field-level validation error and anything else that stops decoding becomes
// ErrInvalidJSON. An empty body is allowed when allowEmpty is set.
func bindJSON(c *gin.Context, req interface{}, allowEmpty bool) error {
	if allowEmpty && c.Request.ContentLength == 0 {
		return nil
	}

	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{
				Field:   jsonFieldName(fe),
				Message: validationMessage(fe),
			})
		}
		return apperror.NewValidationError(fields)
	}

	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}

	return apperror.Wrap(apperror.ErrInvalidJSON.Code, apperror.ErrInvalidJSON.Message, err)
}

func jsonFieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "Quantity":
		return "qty"
	case "GST":
		return "gst"
	case "PerPage":
		return "per_page"
	}
	return strings.ToLower(fe.Field())
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}
