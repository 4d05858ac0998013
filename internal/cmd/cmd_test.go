package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	forgeerrors "github.com/felixgeelhaar/idleforge/internal/errors"
	"github.com/felixgeelhaar/idleforge/internal/exitcode"
	"github.com/felixgeelhaar/idleforge/internal/save"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// writePacks lays out a base pack with one fast, capped stat and an
// expansion that depends on it.
func writePacks(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base", "pack.json"), `{"name":"Base","version":"1.0.0"}`)
	writeFile(t, filepath.Join(dir, "base", "stats.json"),
		`[{"id":"strength","label":"Strength","growth":{"rewardPerCompletion":1,"taskBaseSeconds":2,"taskScaleFactor":0},"caps":{"points":3}}]`)
	writeFile(t, filepath.Join(dir, "base", "tasks.json"),
		`[{"id":"lift","label":"Lift","type":"stat","stat":"base:strength"},{"id":"shift","type":"job","job":"warehouse"}]`)
	writeFile(t, filepath.Join(dir, "base", "equipment.json"),
		`[{"id":"gloves","name":"Gloves","slot":"hands","tier":1,"tags":["starter"],"baseEffects":{"grip":1.1},"flavorText":"Worn leather.","loreRefs":["base:intro"]}]`)
	writeFile(t, filepath.Join(dir, "expansion", "pack.json"), `{"name":"Expansion","version":"0.1.0","dependencies":["base"]}`)
	writeFile(t, filepath.Join(dir, "expansion", "tasks.json"), `[{"id":"quest","type":"stat","stat":"base:strength"}]`)
	return dir
}

// runCLI executes a fresh command tree with an isolated config file.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)

	base := []string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "--no-color", "--log-level", "error"}
	root.SetArgs(append(base, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	dir := writePacks(t)

	out, err := runCLI(t, "validate", "--packs-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Content validation passed for 2 pack(s): base, expansion.")
	assert.Contains(t, out, "Digest:")
}

func TestValidateCommandJSON(t *testing.T) {
	dir := writePacks(t)

	out, err := runCLI(t, "validate", "--packs-dir", dir, "--packs", "base", "-o", "json")
	require.NoError(t, err)

	var got validateResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"base"}, got.Packs)
	assert.Equal(t, 1, got.Stats)
	assert.Equal(t, 2, got.Tasks)
	assert.Equal(t, 1, got.Equipment)
	assert.Len(t, got.Digest, 64)
}

func TestValidateCommandFailures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, dir string)
		args     []string
		wantCode forgeerrors.ErrorCode
		wantExit int
	}{
		{
			name: "duplicate id",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, "expansion", "tasks.json"), `[{"id":"base:lift","type":"stat","stat":"base:strength"}]`)
			},
			wantCode: forgeerrors.ErrCodePackDuplicateID,
			wantExit: exitcode.MergeFailed,
		},
		{
			name:     "unknown active pack",
			args:     []string{"--packs", "missing"},
			wantCode: forgeerrors.ErrCodePackActiveNotFound,
			wantExit: exitcode.MergeFailed,
		},
		{
			name: "invalid equipment",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, "base", "equipment.json"), `[{"id":"gloves","name":"Gloves","slot":"tail","tier":0}]`)
			},
			wantCode: forgeerrors.ErrCodeEquipmentInvalid,
			wantExit: exitcode.ValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writePacks(t)
			if tt.setup != nil {
				tt.setup(t, dir)
			}

			_, err := runCLI(t, append([]string{"validate", "--packs-dir", dir}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, forgeerrors.CodeOf(err))
			assert.Equal(t, tt.wantExit, exitcode.DetermineExitCode(err))
		})
	}
}

func TestValidateShippedContent(t *testing.T) {
	out, err := runCLI(t, "validate",
		"--packs-dir", filepath.Join("..", "..", "content", "packs"),
		"--equipment", filepath.Join("..", "..", "data", "equipment.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "Content validation passed for 2 pack(s): base, frontier.")
}

func TestPacksCommand(t *testing.T) {
	dir := writePacks(t)

	out, err := runCLI(t, "packs", "--packs-dir", dir, "--packs", "expansion", "-o", "yaml")
	require.NoError(t, err)

	var got struct {
		Packs []struct {
			ID           string   `yaml:"id"`
			Dependencies []string `yaml:"dependencies"`
			Active       bool     `yaml:"active"`
		} `yaml:"packs"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got.Packs, 2)
	assert.Equal(t, "base", got.Packs[0].ID)
	assert.False(t, got.Packs[0].Active)
	assert.Equal(t, "expansion", got.Packs[1].ID)
	assert.True(t, got.Packs[1].Active)
	assert.Equal(t, []string{"base"}, got.Packs[1].Dependencies)
}

func TestSimulateWritesSave(t *testing.T) {
	dir := writePacks(t)
	saves := t.TempDir()
	common := []string{"--packs-dir", dir, "--storage", "file", "--storage-path", saves}

	out, err := runCLI(t, append([]string{"simulate", "--task", "base:lift", "--seconds", "10", "--write", "-o", "json"}, common...)...)
	require.NoError(t, err)

	var got simulateResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 5, got.Completions)
	assert.InDelta(t, 5, got.StatGains["base:strength"], 1e-9)
	assert.True(t, got.Saved)
	require.Len(t, got.Status.Stats, 1)
	assert.InDelta(t, 3, got.Status.Stats[0].Points, 1e-9, "points are clamped to the cap")

	out, err = runCLI(t, append([]string{"save", "show", "-o", "json"}, common...)...)
	require.NoError(t, err)

	var shown struct {
		Outcome      save.LoadOutcome `json:"outcome"`
		SaveVersion  int              `json:"saveVersion"`
		RuntimeState struct {
			TaskProgress map[string]struct {
				Level float64 `json:"level"`
			} `json:"taskProgress"`
		} `json:"runtimeState"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, save.OutcomeLoaded, shown.Outcome)
	assert.Equal(t, save.CurrentVersion, shown.SaveVersion)
	assert.Equal(t, 5.0, shown.RuntimeState.TaskProgress["base:lift"].Level)
}

func TestSimulateWithoutWriteKeepsSave(t *testing.T) {
	dir := writePacks(t)
	saves := t.TempDir()
	common := []string{"--packs-dir", dir, "--storage", "file", "--storage-path", saves}

	_, err := runCLI(t, append([]string{"simulate", "--task", "base:lift", "--seconds", "10"}, common...)...)
	require.NoError(t, err)

	out, err := runCLI(t, append([]string{"save", "show", "-o", "json"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"outcome": "fresh"`)
}

func TestSimulateUnknownTask(t *testing.T) {
	_, err := runCLI(t, "simulate", "--task", "nope", "--storage", "memory", "--packs-dir", writePacks(t))
	require.Error(t, err)
	assert.Equal(t, forgeerrors.ErrCodeTaskUnknown, forgeerrors.CodeOf(err))
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
}

func TestSimulateRequiresTask(t *testing.T) {
	_, err := runCLI(t, "simulate", "--storage", "memory")
	require.Error(t, err)
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
}

func TestStatusCommandFallsBackToBuiltInContent(t *testing.T) {
	out, err := runCLI(t, "status", "--storage", "memory", "--packs-dir", filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Contains(t, out, "Content: built-in")
	assert.Contains(t, out, "Save: fresh")
	assert.Contains(t, out, "Strength")
}

func TestStatusGroupsStatsByCategory(t *testing.T) {
	packs := filepath.Join("..", "..", "content", "packs")

	out, err := runCLI(t, "status", "--storage", "memory", "--packs-dir", packs, "-o", "json")
	require.NoError(t, err)

	var got statusReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	var categories []string
	for _, row := range got.Stats {
		if n := len(categories); n == 0 || categories[n-1] != row.Category {
			categories = append(categories, row.Category)
		}
	}
	assert.Equal(t, []string{"core", "combat", "social", "utility"}, categories)
	require.Len(t, got.Stats, 5)
	assert.Equal(t, "base:strength", got.Stats[0].ID)
	assert.Equal(t, "frontier:survival", got.Stats[4].ID)

	text, err := runCLI(t, "status", "--storage", "memory", "--packs-dir", packs)
	require.NoError(t, err)
	core := strings.Index(text, "  core\n")
	utility := strings.Index(text, "  utility\n")
	require.GreaterOrEqual(t, core, 0)
	assert.Greater(t, utility, core)
	assert.Contains(t, text, "Charisma: 0.00 / 500")
}

func TestPlayRunsForDuration(t *testing.T) {
	dir := writePacks(t)
	saves := t.TempDir()

	out, err := runCLI(t, "play", "--task", "base:lift", "--duration", "50ms", "--report-interval", "0",
		"--packs-dir", dir, "--storage", "sqlite", "--storage-path", saves, "-o", "json")
	require.NoError(t, err)

	var got statusReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "base:lift", got.ActiveTask)
	assert.Equal(t, []string{"base", "expansion"}, got.Packs)

	// The final save on exit makes the selected task's progress visible.
	out, err = runCLI(t, "save", "show", "-o", "json",
		"--packs-dir", dir, "--storage", "sqlite", "--storage-path", saves)
	require.NoError(t, err)
	assert.Contains(t, out, `"outcome": "loaded"`)
	assert.Contains(t, out, `"base:lift"`)
}

func TestSaveReset(t *testing.T) {
	saves := t.TempDir()
	common := []string{"--storage", "file", "--storage-path", saves, "--packs-dir", writePacks(t)}

	_, err := runCLI(t, append([]string{"simulate", "--task", "base:lift", "--write"}, common...)...)
	require.NoError(t, err)

	_, err = runCLI(t, append([]string{"save", "reset"}, common...)...)
	require.Error(t, err, "reset needs --yes")

	out, err := runCLI(t, append([]string{"save", "reset", "--yes"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Save deleted.")

	out, err = runCLI(t, append([]string{"save", "show", "-o", "json"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"outcome": "fresh"`)
}

func TestInvalidConfig(t *testing.T) {
	_, err := runCLI(t, "status", "--storage", "floppy")
	require.Error(t, err)
	assert.Equal(t, forgeerrors.ErrCodeConfigInvalid, forgeerrors.CodeOf(err))
	assert.Equal(t, exitcode.ConfigError, exitcode.DetermineExitCode(err))
}

func TestInvalidOutputFormat(t *testing.T) {
	_, err := runCLI(t, "status", "--storage", "memory", "-o", "xml")
	require.Error(t, err)
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "idleforge ")

	out, err = runCLI(t, "version", "-o", "json")
	require.NoError(t, err)
	var info struct {
		Version     string `json:"version"`
		SaveVersion int    `json:"saveVersion"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, save.CurrentVersion, info.SaveVersion)
}

func TestDoctorCommand(t *testing.T) {
	out, err := runCLI(t, "doctor", "--storage", "file", "--storage-path", t.TempDir(), "--packs-dir", writePacks(t), "-o", "json")
	require.NoError(t, err)

	var got struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "healthy", got.Status)
	assert.Equal(t, "healthy", got.Checks["save-storage"].Status)
	assert.Equal(t, "healthy", got.Checks["content"].Status)
}

func TestDoctorReportsBuiltInFallback(t *testing.T) {
	dir := writePacks(t)
	writeFile(t, filepath.Join(dir, "base", "pack.json"), `{"name":"Base","dependencies":["expansion"]}`)

	out, err := runCLI(t, "doctor", "--storage", "memory", "--packs-dir", dir)
	require.NoError(t, err, "degraded is not a failure")
	assert.Contains(t, out, "Overall: degraded")
	assert.Contains(t, out, "content: content packs rejected")
}
