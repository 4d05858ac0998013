package ux

import (
	"errors"
	"strings"

	forgeerrors "github.com/felixgeelhaar/idleforge/internal/errors"
)

// RenderError formats err for the terminal. Coded errors show their
// code, message, cause and suggestions on separate lines.
func RenderError(err error, styles Styles) string {
	if err == nil {
		return ""
	}

	var fe *forgeerrors.ForgeError
	if !errors.As(err, &fe) {
		return styles.Error.Render("Error: ") + err.Error()
	}

	var b strings.Builder
	b.WriteString(styles.Error.Render("Error [" + string(fe.Code) + "]: "))
	b.WriteString(fe.Message)
	if fe.Cause != nil {
		b.WriteString("\n")
		b.WriteString(fe.Cause.Error())
	}
	if len(fe.Suggestions) > 0 {
		b.WriteString("\n\n")
		b.WriteString(styles.Heading.Render("Suggestions:"))
		for _, s := range fe.Suggestions {
			b.WriteString("\n  - ")
			b.WriteString(s)
		}
	}
	if fe.DocsURL != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Muted.Render("Documentation: " + fe.DocsURL))
	}
	return b.String()
}
