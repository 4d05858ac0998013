package save

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/idleforge/internal/rawval"
)

var (
	// ErrUnsupportedVersion means the stored version is outside [1, current].
	ErrUnsupportedVersion = errors.New("unsupported save version")
	// ErrMissingMigration means no step exists for an intermediate version.
	ErrMissingMigration = errors.New("missing save migration")
)

// Migration upgrades a raw payload by one version. It returns a new map
// carrying the next saveVersion and must not modify its input.
type Migration func(payload map[string]any) (map[string]any, error)

// Migrations is keyed by the version a step upgrades from.
type Migrations map[int]Migration

var migrations = Migrations{
	1: migrateV1,
}

// DefaultMigrations returns the built-in migration table.
func DefaultMigrations() Migrations {
	out := make(Migrations, len(migrations))
	for v, m := range migrations {
		out[v] = m
	}
	return out
}

// Migrate upgrades payload to CurrentVersion using the built-in table.
// It also returns the version the payload was stored with.
func Migrate(payload map[string]any) (map[string]any, int, error) {
	return MigrateWith(payload, migrations, CurrentVersion)
}

// MigrateWith upgrades payload to current using table. A missing or
// non-integer saveVersion is read as version 1.
func MigrateWith(payload map[string]any, table Migrations, current int) (map[string]any, int, error) {
	version, ok := rawval.Integer(payload["saveVersion"])
	if !ok {
		version = 1
	}
	if version < 1 || version > current {
		return nil, version, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	from := version
	migrated := rawval.CloneMap(payload)
	migrated["saveVersion"] = version

	for version < current {
		step, ok := table[version]
		if !ok {
			return nil, from, fmt.Errorf("%w: %d -> %d", ErrMissingMigration, version, version+1)
		}

		next, err := step(migrated)
		if err != nil {
			return nil, from, fmt.Errorf("migrate save from version %d: %w", version, err)
		}

		nextVersion, ok := rawval.Integer(next["saveVersion"])
		if !ok || nextVersion <= version {
			return nil, from, fmt.Errorf("%w: step from %d did not advance the version", ErrMissingMigration, version)
		}

		migrated = next
		version = nextVersion
	}

	return migrated, from, nil
}

// migrateV1 renames equippedEquipmentIds to equippedBySlot unless the
// new field already exists. Other fields are kept as they are.
func migrateV1(payload map[string]any) (map[string]any, error) {
	runtime, ok := rawval.Map(payload["runtimeState"])
	if !ok {
		runtime = map[string]any{}
	}
	runtime = rawval.CloneMap(runtime)

	if _, ok := rawval.Map(runtime["equippedBySlot"]); !ok {
		legacy, ok := rawval.Map(runtime[legacyEquippedField])
		if !ok {
			legacy = map[string]any{}
		}
		runtime["equippedBySlot"] = legacy
	}

	out := rawval.CloneMap(payload)
	out["saveVersion"] = 2
	out["runtimeState"] = runtime
	return out, nil
}
