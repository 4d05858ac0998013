// Package game wires content, progression and persistence into a
// playable session.
package game

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/idleforge/internal/catalog"
	"github.com/felixgeelhaar/idleforge/internal/content"
	"github.com/felixgeelhaar/idleforge/internal/equipment"
	forgeerrors "github.com/felixgeelhaar/idleforge/internal/errors"
	"github.com/felixgeelhaar/idleforge/internal/log"
	"github.com/felixgeelhaar/idleforge/internal/metrics"
	"github.com/felixgeelhaar/idleforge/internal/telemetry"
)

var mergeKinds = []struct {
	kind  error
	code  forgeerrors.ErrorCode
	label string
}{
	{content.ErrInvalidPack, forgeerrors.ErrCodePackInvalid, "invalid_pack"},
	{content.ErrInvalidID, forgeerrors.ErrCodePackInvalid, "invalid_id"},
	{content.ErrDuplicateID, forgeerrors.ErrCodePackDuplicateID, "duplicate_id"},
	{content.ErrMissingDependency, forgeerrors.ErrCodePackMissingDep, "missing_dependency"},
	{content.ErrDependencyCycle, forgeerrors.ErrCodePackCyclicDep, "dependency_cycle"},
	{content.ErrMissingOverrideTarget, forgeerrors.ErrCodePackOverrideTarget, "missing_override_target"},
	{content.ErrActivePackNotFound, forgeerrors.ErrCodePackActiveNotFound, "active_pack_not_found"},
	{equipment.ErrInvalidDefinitions, forgeerrors.ErrCodeEquipmentInvalid, "invalid_equipment"},
}

// ContentErrorKind returns the metrics label for a content error.
func ContentErrorKind(err error) string {
	for _, k := range mergeKinds {
		if errors.Is(err, k.kind) {
			return k.label
		}
	}
	if code := forgeerrors.CodeOf(err); code != "" {
		return string(code)
	}
	return "unknown"
}

// AsForgeError converts a content or equipment error into a coded
// error. Errors that already carry a code are returned as they are.
func AsForgeError(err error) error {
	if err == nil {
		return nil
	}
	var fe *forgeerrors.ForgeError
	if errors.As(err, &fe) {
		return err
	}
	var ve *equipment.ValidationError
	if errors.As(err, &ve) {
		return ve.AsForgeError()
	}
	for _, k := range mergeKinds {
		if errors.Is(err, k.kind) {
			return forgeerrors.Wrap(k.code, "content merge failed", err).
				WithSuggestion("Fix the pack named in the message and run 'idleforge validate' again")
		}
	}
	return err
}

// MergePacks merges packs with a span and merge metrics around the
// pure merge.
func MergePacks(ctx context.Context, packs map[string]content.RawPack, active []string, m *metrics.Metrics) (*content.Merged, error) {
	_, span := telemetry.StartSpan(ctx, "content", "merge",
		attribute.Int("packs.available", len(packs)),
		attribute.StringSlice("packs.active", active),
	)
	start := time.Now()

	merged, err := content.Merge(packs, active)
	m.RecordMerge(err == nil, time.Since(start))
	if err != nil {
		m.RecordContentError(ContentErrorKind(err))
	} else {
		span.SetAttributes(attribute.StringSlice("packs.resolved", merged.ResolvedOrder))
	}
	telemetry.End(span, err)
	return merged, err
}

// Validation is the result of checking a packs directory.
type Validation struct {
	Merged *content.Merged
	Digest string
}

// ValidateContent loads every pack under dir, merges the active set and
// validates the merged equipment. Any failure is returned as a coded
// error listing every problem found.
func ValidateContent(ctx context.Context, dir string, active []string, m *metrics.Metrics) (Validation, error) {
	ctx, span := telemetry.StartSpan(ctx, "content", "validate", attribute.String("packs.dir", dir))

	packs, err := content.LoadDirectory(dir)
	if err != nil {
		telemetry.End(span, err)
		return Validation{}, AsForgeError(err)
	}

	merged, err := MergePacks(ctx, packs, active, m)
	if err != nil {
		telemetry.End(span, err)
		return Validation{}, AsForgeError(err)
	}

	if _, err := equipment.AssertValid(merged.EquipmentList()); err != nil {
		m.RecordContentError(ContentErrorKind(err))
		telemetry.End(span, err)
		return Validation{Merged: merged}, AsForgeError(err)
	}

	digest, err := merged.Digest()
	telemetry.End(span, err)
	if err != nil {
		return Validation{Merged: merged}, err
	}
	return Validation{Merged: merged, Digest: digest}, nil
}

// ContentResult is the outcome of loading content for a session. When
// Err is set the built-in catalog is used and Merged is nil.
type ContentResult struct {
	Merged  *content.Merged
	Catalog *catalog.Catalog
	Err     error
}

// UsingDefaults reports whether the built-in catalog is in use.
func (r ContentResult) UsingDefaults() bool {
	return r.Merged == nil
}

// LoadContent builds the session catalog from the packs under dir. It
// never fails: an empty dir, a load error, a merge error or an invalid
// catalog all fall back to the built-in catalog with Err set.
func LoadContent(ctx context.Context, dir string, active []string, m *metrics.Metrics, logger *log.Logger) ContentResult {
	logger = log.OrDiscard(logger).WithComponent("content")
	fallback := func(err error) ContentResult {
		if err != nil {
			logger.LogErrorContext(ctx, "content packs rejected, using built-in content", AsForgeError(err))
		}
		return ContentResult{Catalog: catalog.Default(), Err: err}
	}

	if dir == "" {
		return fallback(nil)
	}

	packs, err := content.LoadDirectory(dir)
	if err != nil {
		return fallback(err)
	}

	merged, err := MergePacks(ctx, packs, active, m)
	if err != nil {
		return fallback(err)
	}

	cat, err := catalog.FromContent(merged)
	if err != nil {
		return fallback(err)
	}

	logger.InfoContext(ctx, "content packs loaded",
		"packs", merged.ResolvedOrder,
		"stats", cat.Stats.Len(),
		"tasks", len(cat.Tasks.Order()),
	)
	return ContentResult{Merged: merged, Catalog: cat}
}

// LoadEquipment returns the equipment for a session: the data file when
// it is set, otherwise the merged pack equipment. Invalid or missing
// equipment yields no definitions and is logged.
func LoadEquipment(ctx context.Context, path string, merged *content.Merged, m *metrics.Metrics, logger *log.Logger) equipment.LoadResult {
	logger = log.OrDiscard(logger).WithComponent("equipment")

	var result equipment.LoadResult
	switch {
	case path != "":
		result = equipment.LoadFile(path)
	case merged != nil && len(merged.Equipment) > 0:
		defs, err := equipment.Decode(merged.EquipmentList())
		result = equipment.LoadResult{Definitions: defs, Err: err}
	default:
		return equipment.LoadResult{}
	}

	if !result.OK() {
		m.RecordContentError(ContentErrorKind(result.Err))
		logger.LogErrorContext(ctx, "skipping invalid equipment definitions", AsForgeError(result.Err))
		return equipment.LoadResult{Err: result.Err}
	}
	return result
}
