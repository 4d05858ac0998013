// Package ux renders command output as styled text, JSON or YAML.
package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Formatter writes one command result.
type Formatter interface {
	Format(data any) error
}

// TextRenderer is implemented by results that have a text form.
type TextRenderer interface {
	RenderText(styles Styles) string
}

// FormatterOptions contains configuration for formatters
type FormatterOptions struct {
	// Writer is where output is written (defaults to os.Stdout)
	Writer io.Writer
	// NoColor disables styling in text output
	NoColor bool
	// Compact disables indentation for JSON and YAML
	Compact bool
}

// Formats lists the supported --output values.
var Formats = []string{"text", "json", "yaml"}

// NewFormatter creates a formatter based on the format string
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	if opts == nil {
		opts = &FormatterOptions{}
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch format {
	case "json":
		return &JSONFormatter{opts: opts}, nil
	case "yaml":
		return &YAMLFormatter{opts: opts}, nil
	case "text", "":
		styles := DefaultStyles()
		if opts.NoColor {
			styles = PlainStyles()
		}
		return &TextFormatter{opts: opts, styles: styles}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: text, json, yaml)", format)
	}
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	opts *FormatterOptions
}

func (f *JSONFormatter) Format(data any) error {
	encoder := json.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	opts *FormatterOptions
}

func (f *YAMLFormatter) Format(data any) error {
	encoder := yaml.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		encoder.SetIndent(2)
	}
	defer encoder.Close()
	return encoder.Encode(data)
}

// TextFormatter writes TextRenderer results with styles, strings and
// fmt.Stringer values as they are.
type TextFormatter struct {
	opts   *FormatterOptions
	styles Styles
}

func (f *TextFormatter) Format(data any) error {
	var text string
	switch v := data.(type) {
	case TextRenderer:
		text = v.RenderText(f.styles)
	case string:
		text = v
	case fmt.Stringer:
		text = v.String()
	default:
		return fmt.Errorf("text output is not supported for %T; use --output json or yaml", data)
	}
	_, err := fmt.Fprintln(f.opts.Writer, text)
	return err
}

var (
	_ Formatter = (*JSONFormatter)(nil)
	_ Formatter = (*YAMLFormatter)(nil)
	_ Formatter = (*TextFormatter)(nil)
)
