package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// trans is a private global translator
var trans ut.Translator

// InitValidator configures the gin binding engine to report json field names.
// Call once before serving requests.
func InitValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		register(v, "json", "form")
	}
}

// NewValidator returns a standalone validator that names fields by their mapstructure tag,
// used for configuration structs.
func NewValidator() *validator.Validate {
	v := validator.New()
	register(v, "mapstructure")
	return v
}

func register(v *validator.Validate, tags ...string) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range tags {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	if trans == nil {
		locale := en.New()
		uni := ut.New(locale, locale)
		trans, _ = uni.GetTranslator("en")
	}

	_ = en_translations.RegisterDefaultTranslations(v, trans)
}

// ParseValidationError converts raw technical errors into a clean map
// Example: "required" -> "api_base is a required field"
func ParseValidationError(err error) map[string]string {
	errMap := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			ns := e.Namespace()
			if i := strings.Index(ns, "."); i != -1 {
				ns = ns[i+1:]
			}

			msg := e.Translate(trans)
			if e.Tag() == "oneof" {
				msg = fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(e.Param(), " ", ", "))
			}
			errMap[ns] = msg
		}
		return errMap
	}

	errMap["body"] = "Invalid request format"
	return errMap
}
