package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ReservedUsername is routed to the caller's own profile and can never be registered.
const ReservedUsername = "me"

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// IsValidUsername reports whether s uses only letters, digits and . @ + - _
func IsValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// IsReservedUsername matches the literal "me" only; "Me" is an ordinary name.
func IsReservedUsername(s string) bool {
	return s == ReservedUsername
}

func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

var registerOnce sync.Once

// RegisterCustomValidators registers the username and slug tags with the Gin
// validator. Safe to call more than once.
func RegisterCustomValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("username", usernameFL)
			_ = v.RegisterValidation("slug", slugFL)
			v.RegisterTagNameFunc(jsonFieldName)
		}
	})
}

// jsonFieldName makes FieldError.Field() report the JSON key clients sent.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func usernameFL(fl validator.FieldLevel) bool {
	return IsValidUsername(fl.Field().String())
}

func slugFL(fl validator.FieldLevel) bool {
	return IsValidSlug(fl.Field().String())
}

// FieldMessage renders a binding failure for a single field in plain words.
func FieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return "ensure this field has no more than " + fe.Param() + " characters"
	case "min":
		return "ensure this value is at least " + fe.Param()
	case "username":
		return "letters, digits and @/./+/-/_ only"
	case "slug":
		return "letters, numbers, underscores or hyphens only"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "invalid value"
	}
}
