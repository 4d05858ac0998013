package content

import (
	"strings"

	"github.com/felixgeelhaar/idleforge/internal/rawval"
)

// ResolveScopedID returns the globally unique id of a pack entry. A raw
// id without a namespace is prefixed with the pack id; a raw id in
// "namespace:local" form is kept as is once both halves are non-empty.
func ResolveScopedID(packID string, rawID any) (string, error) {
	if _, ok := rawval.NonEmptyString(packID); !ok {
		return "", mergeErrorf(ErrInvalidID, "packId must be a non-empty string.")
	}
	id, ok := rawval.NonEmptyString(rawID)
	if !ok {
		return "", mergeErrorf(ErrInvalidID, "content entry id must be a non-empty string.")
	}

	namespace, local, scoped := strings.Cut(id, ":")
	if !scoped {
		return packID + ":" + id, nil
	}
	if strings.TrimSpace(namespace) == "" || strings.TrimSpace(local) == "" {
		return "", mergeErrorf(ErrInvalidID, "content entry id '%s' has an invalid namespace format.", id)
	}
	return id, nil
}
