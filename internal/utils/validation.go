package utils

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Messages shared by the hand-written form checks.
const (
	MsgRequired = "This field is required."
	MsgBlank    = "This field may not be blank."
	MsgNull     = "This field may not be null."
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

// jsonFieldName makes validator report fields by their JSON key.
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// FieldErrors maps a request field to its validation messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Merge copies every message of other into e.
func (e FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		e[field] = append(e[field], msgs...)
	}
}

// Err returns e as an error, or nil when it holds no messages.
func (e FieldErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], " "))
	}
	return strings.Join(parts, "; ")
}

// FormatValidationError converts validator errors into field-keyed messages.
func FormatValidationError(err error) FieldErrors {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}
	out := FieldErrors{}
	for _, e := range errs {
		out.Add(e.Field(), describe(e))
	}
	return out
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return MsgRequired
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param())
	case "email":
		return "Enter a valid email address."
	case "datetime":
		return "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", e.Value())
	}
	return fmt.Sprintf("Failed on the '%s' rule.", e.Tag())
}

// BindJSON binds the request body to obj and runs its binding rules.
// Rule violations come back as FieldErrors; a body that is not valid JSON
// for obj comes back as a plain error.
func BindJSON(c *gin.Context, obj interface{}) (FieldErrors, error) {
	if err := c.ShouldBindJSON(obj); err != nil {
		if errs := FormatValidationError(err); errs != nil {
			return errs, nil
		}
		return nil, err
	}
	return FieldErrors{}, nil
}

// BindAndValidate binds the request body to a struct and validates it.
// If validation fails, it sends a BadRequest response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	errs, err := BindJSON(c, obj)
	if err != nil {
		BadRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	if len(errs) > 0 {
		ValidationFailed(c, errs)
		return false
	}
	return true
}
