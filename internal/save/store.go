package save

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/felixgeelhaar/idleforge/internal/rawval"
	"github.com/felixgeelhaar/idleforge/internal/state"
	"github.com/felixgeelhaar/idleforge/internal/storage"
)

// LoadOutcome describes how a load resolved. Every outcome except
// OutcomeLoaded and OutcomeMigrated yields default state.
type LoadOutcome string

const (
	OutcomeLoaded             LoadOutcome = "loaded"
	OutcomeMigrated           LoadOutcome = "migrated"
	OutcomeFresh              LoadOutcome = "fresh"
	OutcomeUnavailable        LoadOutcome = "unavailable"
	OutcomeCorrupt            LoadOutcome = "corrupt"
	OutcomeUnsupportedVersion LoadOutcome = "unsupported_version"
	OutcomeMissingMigration   LoadOutcome = "missing_migration"
)

// Restored reports whether the outcome carries a stored state.
func (o LoadOutcome) Restored() bool {
	return o == OutcomeLoaded || o == OutcomeMigrated
}

// Decode parses stored save text. It never fails: anything that cannot
// be read becomes default state and the outcome says why.
func (c Codec) Decode(data string) (state.RuntimeState, LoadOutcome) {
	var parsed any
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return c.Defaults(), OutcomeCorrupt
	}
	payload, ok := rawval.Map(parsed)
	if !ok {
		return c.Defaults(), OutcomeCorrupt
	}

	migrated, from, err := Migrate(payload)
	switch {
	case errors.Is(err, ErrUnsupportedVersion):
		return c.Defaults(), OutcomeUnsupportedVersion
	case err != nil:
		return c.Defaults(), OutcomeMissingMigration
	}

	runtime, ok := rawval.Map(migrated["runtimeState"])
	if !ok {
		runtime = map[string]any{}
	}

	outcome := OutcomeLoaded
	if from != CurrentVersion {
		outcome = OutcomeMigrated
	}
	return c.SanitizeRaw(runtime), outcome
}

// Load reads the save from store. A nil store, a missing key, a read
// failure or a corrupt value all yield default state.
func Load(ctx context.Context, store storage.KeyValueStore, codec Codec) (state.RuntimeState, LoadOutcome) {
	if store == nil {
		return codec.Defaults(), OutcomeUnavailable
	}

	raw, ok, err := store.Get(ctx, Key)
	if err != nil {
		return codec.Defaults(), OutcomeUnavailable
	}
	if !ok || raw == "" {
		return codec.Defaults(), OutcomeFresh
	}
	return codec.Decode(raw)
}

// Save writes s to store. It returns false without error when store is
// nil.
func Save(ctx context.Context, store storage.KeyValueStore, codec Codec, s state.RuntimeState) (bool, error) {
	if store == nil {
		return false, nil
	}

	data, err := codec.Encode(s)
	if err != nil {
		return false, err
	}
	if err := store.Set(ctx, Key, data); err != nil {
		return false, err
	}
	return true, nil
}

// Reset deletes the stored save.
func Reset(ctx context.Context, store storage.KeyValueStore) error {
	if store == nil {
		return nil
	}
	return store.Delete(ctx, Key)
}
