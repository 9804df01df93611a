package validation

import (
	"encoding/json"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	apperrors "github.com/campusdesk/capstone-support-backend/internal/core/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validator validates request data
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Errors returns the validation errors
func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errors
}

// Required validates that a string is not empty
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors.Add(field, "This field is required")
	}
	return v
}

// MinLength validates minimum string length
func (v *Validator) MinLength(field, value string, min int) *Validator {
	if len(value) < min {
		v.errors.Add(field, "Must be at least "+strconv.Itoa(min)+" characters")
	}
	return v
}

// MaxLength validates maximum string length
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if len(value) > max {
		v.errors.Add(field, "Must be at most "+strconv.Itoa(max)+" characters")
	}
	return v
}

// Email validates email format
func (v *Validator) Email(field, value string) *Validator {
	if value != "" && !emailRegex.MatchString(value) {
		v.errors.Add(field, "Must be a valid email address")
	}
	return v
}

// PositiveID validates that an identifier is a positive integer
func (v *Validator) PositiveID(field string, value int64) *Validator {
	if value <= 0 {
		v.errors.Add(field, "Must be a positive integer")
	}
	return v
}

// OneOf validates value is one of the allowed values
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v // Empty is handled by Required
	}

	for _, a := range allowed {
		if value == a {
			return v
		}
	}

	v.errors.Add(field, "Must be one of: "+strings.Join(allowed, ", "))
	return v
}

// Custom adds a custom validation
func (v *Validator) Custom(field string, valid bool, message string) *Validator {
	if !valid {
		v.errors.Add(field, message)
	}
	return v
}

// NotNil validates that a pointer is not nil
func (v *Validator) NotNil(field string, value interface{}) *Validator {
	if value == nil || (reflect.ValueOf(value).Kind() == reflect.Ptr && reflect.ValueOf(value).IsNil()) {
		v.errors.Add(field, "This field is required")
	}
	return v
}

// DecodeAndValidate decodes JSON request body and runs basic validation
func DecodeAndValidate[T any](r *http.Request) (*T, error) {
	var req T

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apperrors.NewBadRequestError(err, "Invalid request body")
	}

	return &req, nil
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ParsePage extracts 1-indexed pagination from the page/limit query
// parameters. Out-of-range or malformed values fall back to the defaults
// rather than failing the request.
func ParsePage(r *http.Request) domain.Page {
	page := domain.Page{Number: 1, Size: DefaultPageSize}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if n, err := strconv.Atoi(pageStr); err == nil && n > 0 {
			page.Number = n
		}
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			page.Size = limit
		}
	}
	if page.Size > MaxPageSize {
		page.Size = MaxPageSize
	}

	return page
}

// ParseInt64PathParam parses a positive int64 path parameter value.
func ParseInt64PathParam(value, field string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequestError(apperrors.ErrBadRequest, "Invalid "+field)
	}
	return id, nil
}

// ParseStringQueryParam safely parses a string query parameter
func ParseStringQueryParam(r *http.Request, key string) *string {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil
	}
	return &value
}

// ParseBoolQueryParam safely parses a boolean query parameter
func ParseBoolQueryParam(r *http.Request, key string, defaultValue bool) bool {
	valueStr := r.URL.Query().Get(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// ParseOptionalBoolQueryParam parses a boolean query parameter, keeping
// the absent-vs-false distinction. Malformed values count as absent.
func ParseOptionalBoolQueryParam(r *http.Request, key string) *bool {
	valueStr := r.URL.Query().Get(key)
	if valueStr == "" {
		return nil
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return nil
	}
	return &value
}

// ParseInt64QueryParam parses a positive int64 query parameter. Absent or
// malformed values yield zero, which the filters treat as unset.
func ParseInt64QueryParam(r *http.Request, key string) int64 {
	valueStr := r.URL.Query().Get(key)
	if valueStr == "" {
		return 0
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil || value <= 0 {
		return 0
	}
	return value
}
