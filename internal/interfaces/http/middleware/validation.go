package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/Nassimghoulane/Dionos-1/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RequestIDKey is the gin context key the request id is stored under
const RequestIDKey = "request_id"

// PickupPhoneTag validates the contact number given at checkout
const PickupPhoneTag = "pickup_phone"

// pickupPhonePattern accepts at least 8 digits, spaces or + - ( ) characters
var pickupPhonePattern = regexp.MustCompile(`^[0-9+\-\s()]{8,}$`)

// SetupValidator configures gin's validator: field names follow the JSON
// tags and the pickup_phone tag is registered
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	RegisterValidations(v)
	return nil
}

// RegisterValidations installs the custom tags and tag name function on v
func RegisterValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	// Registration only fails for an empty tag name.
	_ = v.RegisterValidation(PickupPhoneTag, func(fl validator.FieldLevel) bool {
		return IsPickupPhone(fl.Field().String())
	})
}

// IsPickupPhone reports whether s looks like a phone number the store can
// call. Surrounding whitespace is ignored.
func IsPickupPhone(s string) bool {
	return pickupPhonePattern.MatchString(strings.TrimSpace(s))
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   fieldPath(e),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	)
}

// HandleBindError answers a failed ShouldBind call: validator failures
// become VALIDATION_ERROR with per-field details, anything else (malformed
// JSON, wrong types) is a BAD_REQUEST
func HandleBindError(c *gin.Context, err error) {
	requestID := GetRequestID(c)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
		return
	}
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeBadRequest,
		"Malformed request body",
		requestID,
	))
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read "customer.phone"
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case PickupPhoneTag:
		return "Invalid phone number"
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "len":
		return "Must be exactly " + e.Param() + " characters"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "alphanum":
		return "Must be alphanumeric"
	default:
		return "Invalid value"
	}
}
