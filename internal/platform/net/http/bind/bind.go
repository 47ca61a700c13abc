// Package bind decodes JSON request bodies and validates them, reporting every failing field
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ValidatorSvc holds a singleton validator and translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce    sync.Once
	vSvc     *ValidatorSvc
	jsonMore = func(dec *json.Decoder) bool { return dec.More() } // seam
)

// Init initializes the singleton validator with english translations and json tag names
func Init() *ValidatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer json tag names in messages and details
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)

		registerShort(v, trans, "required", "{0} is required", titleField)
		registerShort(v, trans, "oneof", "Invalid {0}", strings.ToLower)

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// Get returns the validator singleton, initializing on first use
func Get() *ValidatorSvc {
	if vSvc == nil {
		return Init()
	}
	return vSvc
}

// JSONOptions controls parsing behavior
type JSONOptions struct {
	MaxBytes        int64 // default 1MB
	DisallowUnknown bool  // default false: unknown fields are ignored
}

func defaultJSONOptions() JSONOptions {
	return JSONOptions{MaxBytes: 1 << 20}
}

// ParseJSON decodes JSON into T and validates it
// A missing body decodes as {} so required fields report as validation failures.
// Type mismatches (i.e. a number where a string belongs) are collected alongside
// validator failures; each field is reported once, type errors first.
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var zero T
	o := defaultJSONOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Get().Error().Err(err).Msg("failed to close request body")
		}
	}()

	var reader io.Reader = r.Body
	if o.MaxBytes > 0 {
		reader = io.LimitReader(r.Body, o.MaxBytes)
	}
	dec := json.NewDecoder(reader)
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}

	var (
		dst     T
		details []perr.FieldDetail
		seen    = map[string]bool{}
	)
	if err := dec.Decode(&dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			// empty body
		case errors.As(err, &typeErr) && typeErr.Field != "":
			details = append(details, perr.FieldDetail{
				Field:   typeErr.Field,
				Message: titleField(typeErr.Field) + " must be " + jsonKind(typeErr.Type),
			})
			seen[typeErr.Field] = true
		default:
			return zero, perr.Wrap(err, perr.ErrorCodeJSON, "invalid JSON")
		}
	} else if jsonMore(dec) {
		return zero, perr.JSONErrf("unexpected trailing data")
	}

	if err := Get().Validator.Struct(dst); err != nil {
		var inv *validator.InvalidValidationError
		if errors.As(err, &inv) {
			logger.Get().Error().Err(inv).Msg("validator internal error")
			return zero, perr.Wrap(inv, perr.ErrorCodeUnknown, "validation error")
		}
		for _, d := range FieldErrors(err) {
			if seen[d.Field] {
				continue
			}
			seen[d.Field] = true
			details = append(details, d)
		}
	}

	if len(details) > 0 {
		return zero, perr.Validation(details...)
	}
	return dst, nil
}

// FieldErrors converts validator failures into translated per-field details
func FieldErrors(err error) []perr.FieldDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]perr.FieldDetail, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, perr.FieldDetail{Field: fe.Field(), Message: fe.Translate(Get().Translator)})
	}
	return out
}

// registerShort overrides a tag's english message; {0} is the field name passed through render
func registerShort(v *validator.Validate, trans ut.Translator, tag, text string, render func(string) string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, render(fe.Field()))
			return msg
		},
	)
}

// titleField renders "code" as "Code" for messages
func titleField(f string) string {
	return cases.Title(language.English).String(f)
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "a list"
	default:
		return "an object"
	}
}
