package multicode

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Locale selects the language of generated comments and messages
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleRussian Locale = "ru"
)

// Options configures one generation run
type Options struct {
	// IncludeComments emits label comments above nodes and section headers
	IncludeComments      bool   `json:"includeComments"`
	// IncludeSourceMarkers emits a // [node:<id>] marker before each node's code
	IncludeSourceMarkers bool   `json:"includeSourceMarkers"`
	// IndentWidth is the number of spaces per indentation level
	IndentWidth          int    `json:"indentWidth" validate:"min=1,max=16"`
	// IncludeHeaders emits the #include block
	IncludeHeaders       bool   `json:"includeHeaders"`
	// WrapInMain wraps the main body in int main() { ... }
	WrapInMain           bool   `json:"wrapInMain"`
	// GraphName is shown in the file header comment
	GraphName            string `json:"graphName,omitempty" validate:"max=256"`
	// MaxDepth bounds nested block generation
	MaxDepth             int    `json:"maxDepth" validate:"min=1,max=4096"`
	Locale               Locale `json:"locale" validate:"oneof=en ru"`
}

// DefaultOptions returns the options used by the editor
func DefaultOptions() Options {
	return Options{
		IncludeComments: true,
		IndentWidth:     4,
		IncludeHeaders:  true,
		WrapInMain:      true,
		MaxDepth:        64,
		Locale:          LocaleEnglish,
	}
}

// Validate checks option ranges
func (o Options) Validate() error {
	if err := Validator().Struct(o); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// IndentUnit returns one level of indentation
func (o Options) IndentUnit() string {
	return strings.Repeat(" ", o.IndentWidth)
}

// Localized reports whether secondary-locale text should be preferred
func (o Options) Localized() bool {
	return o.Locale == LocaleRussian
}

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

// Validator returns the shared struct validator
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}
