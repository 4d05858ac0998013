package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPack           = errors.New("invalid content pack")
	ErrInvalidID             = errors.New("invalid content id")
	ErrDuplicateID           = errors.New("duplicate content id")
	ErrMissingDependency     = errors.New("missing pack dependency")
	ErrDependencyCycle       = errors.New("pack dependency cycle")
	ErrMissingOverrideTarget = errors.New("missing override target")
	ErrActivePackNotFound    = errors.New("active pack not found")
)

// MergeError is a merge failure. Kind is one of the Err* sentinels and
// supports errors.Is; Msg is the author-facing diagnostic.
type MergeError struct {
	Kind error
	Msg  string
}

func (e *MergeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *MergeError) Unwrap() error { return e.Kind }

func mergeErrorf(kind error, format string, args ...any) error {
	return &MergeError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	return &MergeError{
		Kind: ErrDependencyCycle,
		Msg:  "Detected cyclic pack dependency: " + strings.Join(path, " -> "),
	}
}
