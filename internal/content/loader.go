package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	forgeerrors "github.com/felixgeelhaar/idleforge/internal/errors"
)

// PackFiles are the per-pack file stems, read in this order.
var PackFiles = []string{"pack", "stats", "equipment", "tasks", "skills"}

var extensions = []string{".json", ".yaml", ".yml"}

// LoadDirectory reads every sub-directory of dir as a pack named after
// the directory. Missing files are skipped; unreadable or malformed
// files fail the load.
func LoadDirectory(dir string) (map[string]RawPack, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, forgeerrors.NewPackDirectoryNotFoundError(dir)
		}
		return nil, forgeerrors.Wrap(forgeerrors.ErrCodeDirectoryFailed, "failed to read packs directory", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	packs := make(map[string]RawPack, len(names))
	for _, name := range names {
		pack, err := LoadPack(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		packs[name] = pack
	}
	return packs, nil
}

// LoadPack reads the files of a single pack directory.
func LoadPack(root string) (RawPack, error) {
	var pack RawPack
	for _, stem := range PackFiles {
		value, err := readFirst(root, stem)
		if err != nil {
			return RawPack{}, err
		}
		switch stem {
		case "pack":
			pack.Pack = value
		case "stats":
			pack.Stats = value
		case "equipment":
			pack.Equipment = value
		case "tasks":
			pack.Tasks = value
		case "skills":
			pack.Skills = value
		}
	}
	return pack, nil
}

// readFirst decodes stem.json, falling back to stem.yaml and stem.yml.
// It returns nil when none exists.
func readFirst(root, stem string) (any, error) {
	for _, ext := range extensions {
		path := filepath.Join(root, stem+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, forgeerrors.Wrap(forgeerrors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read %s", path), err)
		}
		return DecodeDocument(path, data)
	}
	return nil, nil
}

// DecodeDocument parses JSON or YAML based on the file extension.
func DecodeDocument(path string, data []byte) (any, error) {
	var value any
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &value); err != nil {
			return nil, forgeerrors.NewFileUnmarshalError(path, "YAML", err)
		}
	default:
		if err := json.Unmarshal(data, &value); err != nil {
			return nil, forgeerrors.NewFileUnmarshalError(path, "JSON", err)
		}
	}
	return value, nil
}
