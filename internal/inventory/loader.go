package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load resolves each source (a file, or a directory whose immediate
// .ini/.yaml/.yml children are taken in lexical order), parses every match,
// and merges the results first-wins in discovery order. Paths with unknown
// extensions are silently discarded. Zero parseable files is not an error:
// the result is a valid empty registry. One unreadable or malformed file
// fails the whole load.
func Load(sources ...string) (*Registry, error) {
	worklist := append([]string{}, sources...)
	var loaded []*Registry

	for len(worklist) > 0 {
		path := worklist[0]
		worklist = worklist[1:]

		if info, err := os.Stat(path); err == nil && info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("read dir %s: %w: %v", path, ErrSourceUnreadable, err)
			}
			for _, entry := range entries {
				switch filepath.Ext(entry.Name()) {
				case ".ini", ".yaml", ".yml":
					worklist = append(worklist, filepath.Join(path, entry.Name()))
				}
			}
			continue
		}

		var (
			reg *Registry
			err error
		)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			reg, err = loadFile(path, parseStructured)
		case ".ini":
			reg, err = loadFile(path, parseGroupedList)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		loaded = append(loaded, reg)
	}

	merged := NewRegistry()
	merged.Merge(loaded...)
	return merged, nil
}

func loadFile(path string, parse func([]byte) (*Registry, error)) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	return parse(data)
}

// Serialize renders the registry as "ini", "yaml"/"yml", or "json". Any
// other format is ErrUnsupportedFormat.
func (g *Registry) Serialize(format string) (string, error) {
	switch strings.ToLower(format) {
	case "ini":
		return g.serializeGroupedList(), nil
	case "yaml", "yml":
		return g.serializeStructured()
	case "json":
		return g.serializeFlatJSON()
	default:
		return "", fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
}

// SaveToDisk writes the registry to path, inferring the format from the
// extension.
func (g *Registry) SaveToDisk(path string) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	out, err := g.Serialize(format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return fmt.Errorf("write %s: %w: %v", path, ErrDestinationUnwritable, err)
	}
	return nil
}
