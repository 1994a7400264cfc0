package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shandysiswandi/gopatient/internal/pkg/strcase"
)

var (
	reMedicalRecordNumber = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*$`)
	rePersonName          = regexp.MustCompile(`^[\p{L}][\p{L} .'-]*$`)
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError is a field-to-message map returned when validation fails.
//
// Keys are field names in snake_case to match typical JSON conventions.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return sf.Name
		}
		return name
	})

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	v10CustomValidation(validate, enTrans)

	return &V10Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
// When a field breaks several rules the first one wins.
func (v *V10Validator) Validate(data any) error {
	violations, err := v.Check(data)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		return nil
	}

	errV10 := make(V10ValidationError, len(violations))
	for _, vi := range violations {
		if _, exists := errV10[vi.Field]; !exists {
			errV10[vi.Field] = vi.Message
		}
	}

	return errV10
}

// Check validates a struct and returns its violations in field order.
func (v *V10Validator) Check(data any) ([]Violation, error) {
	err := v.validate.Struct(data)
	if err == nil {
		return nil, nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return nil, err
	}

	violations := make([]Violation, 0, len(validateErrs))
	for _, fe := range validateErrs {
		violations = append(violations, Violation{
			Field:   strcase.ToLowerSnake(fe.Field()),
			Rule:    fe.Tag(),
			Message: fe.Translate(v.translator),
		})
	}

	return violations, nil
}

//nolint:errcheck,gosec // make linter silent
func v10CustomValidation(validate *validator.Validate, enTrans ut.Translator) {
	validate.RegisterValidation("mrn", func(fl validator.FieldLevel) bool {
		return reMedicalRecordNumber.MatchString(fl.Field().String())
	})

	validate.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return rePersonName.MatchString(fl.Field().String())
	})

	validate.RegisterTranslation("mrn", enTrans,
		func(ut ut.Translator) error {
			return ut.Add("mrn", "{0} can contain only letters, digits and dashes", false)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(fe.Tag(), fe.Field())
			return t
		},
	)

	validate.RegisterTranslation("personname", enTrans,
		func(ut ut.Translator) error {
			return ut.Add("personname", "{0} must start with a letter and contain only letters, spaces, dots, apostrophes or dashes", false)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(fe.Tag(), fe.Field())
			return t
		},
	)
}
