package settings

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Theme selects the UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme normalizes a theme name. Unknown values are rejected.
func ParseTheme(value string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(value))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("unsupported theme %q (want dark or light)", value)
	}
}

const defaultStdoutMaxSize = 5000

// Record is an arbitrary structured per-language settings record.
type Record map[string]any

// Document is the canonical, fully populated settings object.
type Document struct {
	File          string              `json:"file"`
	Theme         Theme               `json:"theme" validate:"oneof=dark light"`
	ID            string              `json:"id"`
	LastProject   string              `json:"lastProject"`
	Languages     map[Language]Record `json:"languages"`
	StdoutMaxSize int                 `json:"stdoutMaxSize" validate:"gte=0"`
}

// New returns a default document pinned to path. An empty theme falls back to
// light.
func New(path string, theme Theme) Document {
	if theme == "" {
		theme = ThemeLight
	}
	return Document{
		File:          path,
		Theme:         theme,
		Languages:     map[Language]Record{},
		StdoutMaxSize: defaultStdoutMaxSize,
	}
}

// Clone returns a deep copy that shares no maps with d.
func (d Document) Clone() Document {
	out := d
	out.Languages = cloneLanguages(d.Languages)
	return out
}

// AsPartial expresses every field of d as present, so a full document can be
// merged onto another one.
func (d Document) AsPartial() Partial {
	file := d.File
	theme := d.Theme
	id := d.ID
	lastProject := d.LastProject
	size := d.StdoutMaxSize
	languages := cloneLanguages(d.Languages)
	if languages == nil {
		languages = map[Language]Record{}
	}
	return Partial{
		File:          &file,
		Theme:         &theme,
		ID:            &id,
		LastProject:   &lastProject,
		Languages:     languages,
		StdoutMaxSize: &size,
	}
}

// ErrInvalidSettings reports canonical fields holding values outside their
// allowed range.
var ErrInvalidSettings = errors.New("invalid settings")

var validatorOnce = sync.OnceValue(newValidator)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the canonical field constraints.
func (d Document) Validate() error {
	var msgs []string
	if err := validatorOnce().Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
		for _, fe := range fieldErrs {
			msgs = append(msgs, describeFieldError(fe))
		}
	}
	var unsupported []string
	for lang := range d.Languages {
		if !lang.Valid() {
			unsupported = append(unsupported, string(lang))
		}
	}
	if len(unsupported) > 0 {
		sort.Strings(unsupported)
		msgs = append(msgs, fmt.Sprintf("languages: unsupported language(s) %s", strings.Join(unsupported, ", ")))
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", fe.Field(), fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag())
	}
}
