package equipment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"

	forgeerrors "github.com/felixgeelhaar/idleforge/internal/errors"
)

// Definition is a validated equipment template.
type Definition struct {
	ID           string             `json:"id" mapstructure:"id"`
	Name         string             `json:"name" mapstructure:"name"`
	Slot         string             `json:"slot" mapstructure:"slot"`
	Tier         int                `json:"tier" mapstructure:"tier"`
	Tags         []string           `json:"tags" mapstructure:"tags"`
	BaseEffects  map[string]float64 `json:"baseEffects" mapstructure:"baseEffects"`
	FlavorText   string             `json:"flavorText" mapstructure:"flavorText"`
	LoreRefs     []string           `json:"loreRefs" mapstructure:"loreRefs"`
	SourcePackID string             `json:"sourcePackId,omitempty" mapstructure:"sourcePackId"`
}

// Decode validates raw definitions and converts them to typed ones.
// Invalid input is rejected as a whole.
func Decode(raw any) ([]Definition, error) {
	if _, err := AssertValid(raw); err != nil {
		return nil, err
	}

	var defs []Definition
	if err := mapstructure.Decode(raw, &defs); err != nil {
		return nil, fmt.Errorf("decode equipment definitions: %w", err)
	}
	return defs, nil
}

// LoadResult is the outcome of loading an equipment data file. Err is
// set when the file was missing, unreadable or invalid; callers treat
// that as "no equipment" rather than a startup failure.
type LoadResult struct {
	Definitions []Definition
	Err         error
}

// OK reports whether definitions were loaded.
func (r LoadResult) OK() bool {
	return r.Err == nil
}

// LoadFile reads and validates a flat JSON array of definitions.
func LoadFile(path string) LoadResult {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return LoadResult{Err: forgeerrors.NewFileNotFoundError(path)}
		}
		return LoadResult{Err: forgeerrors.Wrap(forgeerrors.ErrCodeFileReadFailed, "failed to read equipment file", err)}
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LoadResult{Err: forgeerrors.NewFileUnmarshalError(path, "JSON", err)}
	}

	defs, err := Decode(raw)
	if err != nil {
		return LoadResult{Err: err}
	}
	return LoadResult{Definitions: defs}
}
