package allowlist

import (
	"errors"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	structValidator *validator.Validate
	trans           ut.Translator
)

func init() {
	structValidator = validator.New()

	uni := ut.New(en.New(), en.New())
	trans, _ = uni.GetTranslator("en")

	_ = enTranslations.RegisterDefaultTranslations(structValidator, trans)

	_ = structValidator.RegisterTranslation("required", trans, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is a required field", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", fe.Namespace())
		return t
	})
}

// TranslateValidatorError takes an error from the go-playground validator (internally just a map of errors) and
// converts it into a single readable error.
func TranslateValidatorError(err error, trans ut.Translator) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := validationErrors.Translate(trans)
	vals := make([]string, 0, len(errs))
	for _, fe := range validationErrors {
		vals = append(vals, errs[fe.Namespace()])
	}

	return errors.New(strings.Join(vals, " "))
}

func validateStruct(resource string, s interface{}) error {
	if err := structValidator.Struct(s); err != nil {
		return NewConfigurationError(resource, "", TranslateValidatorError(err, trans).Error())
	}
	return nil
}
