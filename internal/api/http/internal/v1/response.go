package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vibe-gaming/publisher/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func errorResponse(c *gin.Context, code ErrorCode) {
	c.AbortWithStatusJSON(http.StatusBadRequest, getErrorStruct(code))
}

func internalErrorResponse(c *gin.Context, msg string, err error) {
	logger.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
	c.AbortWithStatus(http.StatusInternalServerError)
}

func validationErrorResponse(c *gin.Context, err error) {
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		out := make([]ValidationError, len(verr))
		for i, ferr := range verr {
			out[i] = ValidationError{ferr.Field(), msgForTag(ferr.Tag(), ferr.Param())}
		}
		fieldErrorsResponse(c, out...)
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorStruct{
		ErrorCode:    ValidationErrorCode,
		ErrorMessage: "invalid request body",
		Errors:       []ValidationError{},
	})
}

func fieldErrorsResponse(c *gin.Context, errs ...ValidationError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorStruct{
		ErrorCode:    ValidationErrorCode,
		ErrorMessage: ValidationErrorMessage,
		Errors:       errs,
	})
}

func msgForTag(tag string, value string) string {
	switch tag {
	case "required":
		return "field is required"
	case "email":
		return "invalid email format"
	case "min":
		return fmt.Sprintf("minimum length is %v", value)
	case "max":
		return fmt.Sprintf("maximum length is %v", value)
	case "login":
		return "only latin letters, digits, '_' and '-' are allowed"
	}
	return tag
}
