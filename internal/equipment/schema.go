// Package equipment validates and indexes equipment definitions.
package equipment

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	forgeerrors "github.com/felixgeelhaar/idleforge/internal/errors"
	"github.com/felixgeelhaar/idleforge/internal/rawval"
)

// Slots lists the allowed equipment slots.
var Slots = []string{"head", "chest", "hands", "legs", "feet", "weapon", "offhand", "accessory"}

// ErrInvalidDefinitions is matched by every error AssertValid returns.
var ErrInvalidDefinitions = errors.New("invalid equipment definitions")

// Result is the outcome of Validate.
type Result struct {
	Valid  bool     `json:"isValid"`
	Errors []string `json:"errors"`
}

// Validate checks a list of raw equipment definitions. Every entry is
// checked and every problem is collected.
func Validate(definitions any) Result {
	items, ok := rawval.Slice(definitions)
	if !ok {
		return Result{Valid: false, Errors: []string{"Equipment definitions must be an array."}}
	}

	var problems []string
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		problems = append(problems, validateEntry(fmt.Sprintf("entry[%d]", i), item, seen)...)
	}

	return Result{Valid: len(problems) == 0, Errors: problems}
}

func validateEntry(path string, item any, seen map[string]bool) []string {
	def, ok := rawval.Map(item)
	if !ok {
		return []string{path + ": must be an object."}
	}

	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, path+fmt.Sprintf(format, args...))
	}

	if id, ok := rawval.NonEmptyString(def["id"]); !ok {
		add(".id: must be a non-empty string.")
	} else if seen[id] {
		add(".id: duplicate id '%s'.", id)
	} else {
		seen[id] = true
	}

	if _, ok := rawval.NonEmptyString(def["name"]); !ok {
		add(".name: must be a non-empty string.")
	}

	if slot, _ := def["slot"].(string); !IsSlot(slot) {
		add(".slot: '%s' is invalid. Allowed slots: %s.", describe(def["slot"]), strings.Join(Slots, ", "))
	}

	if tier, ok := rawval.Integer(def["tier"]); !ok || tier < 1 {
		add(".tier: must be an integer >= 1.")
	}

	if _, ok := rawval.StringList(def["tags"]); !ok {
		add(".tags: must be an array of non-empty strings.")
	}

	effects, ok := rawval.Map(def["baseEffects"])
	if !ok || len(effects) == 0 {
		add(".baseEffects: must be a non-empty object.")
	} else {
		names := make([]string, 0, len(effects))
		for name := range effects {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				add(".baseEffects: contains an empty effect key.")
			}
			if v, ok := rawval.Float(effects[name]); !ok || v <= 0 {
				add(".baseEffects.%s: must be a finite number greater than 0.", name)
			}
		}
	}

	if _, ok := rawval.NonEmptyString(def["flavorText"]); !ok {
		add(".flavorText: must be a non-empty string.")
	}

	if _, ok := rawval.StringList(def["loreRefs"]); !ok {
		add(".loreRefs: must be an array of non-empty strings.")
	}

	return problems
}

func describe(v any) string {
	if v == nil {
		return "undefined"
	}
	return fmt.Sprintf("%v", v)
}

// IsSlot reports whether slot is an allowed equipment slot.
func IsSlot(slot string) bool {
	for _, s := range Slots {
		if s == slot {
			return true
		}
	}
	return false
}

// ValidationError lists every problem found in a definitions file.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "Invalid equipment definitions:\n- " + strings.Join(e.Problems, "\n- ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidDefinitions }

// AsForgeError converts the problem list into a coded CLI error.
func (e *ValidationError) AsForgeError() *forgeerrors.ForgeError {
	return forgeerrors.NewEquipmentInvalidError(e.Problems)
}

// AssertValid returns definitions unchanged when they are valid, and
// otherwise a *ValidationError listing every problem.
func AssertValid(definitions any) (any, error) {
	result := Validate(definitions)
	if !result.Valid {
		return nil, &ValidationError{Problems: result.Errors}
	}
	return definitions, nil
}
