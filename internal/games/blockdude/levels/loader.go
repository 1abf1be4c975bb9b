// Package levels provides map loading for Block Dude.
// This package depends on core but core does not depend on levels.
package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/levels/formats"
)

//go:embed maps/*.json
var bundledFS embed.FS

// Level represents a complete map definition.
type Level struct {
	ID       string
	Name     string
	Map      core.GridMap
	FilePath string
}

// Width returns the map width.
func (l *Level) Width() int { return l.Map.Width() }

// Height returns the map height.
func (l *Level) Height() int { return l.Map.Height() }

// NewState creates a fresh simulation state on a private copy of the map.
func (l *Level) NewState() (*core.State, error) {
	return core.NewState(l.Map, true)
}

// Title returns the display name, falling back to the ID.
func (l *Level) Title() string {
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}

// Entry is one scanned map file, loaded or not.
type Entry struct {
	Path  string
	Level Level
	Err   error
}

// Loader handles loading maps from a file tree.
type Loader struct {
	Root string
	fsys fs.FS
}

// NewLoader creates a loader over a directory on disk.
func NewLoader(root string) *Loader {
	return &Loader{Root: root, fsys: os.DirFS(root)}
}

// Bundled returns a loader over the maps compiled into the binary.
func Bundled() *Loader {
	sub, err := fs.Sub(bundledFS, "maps")
	if err != nil {
		panic(fmt.Sprintf("levels: bundled maps: %v", err))
	}
	return &Loader{Root: "bundled", fsys: sub}
}

// ForDir returns a directory loader, or the bundled one when dir is empty.
func ForDir(dir string) *Loader {
	if dir == "" {
		return Bundled()
	}
	return NewLoader(dir)
}

// Scan walks the tree and tries to load every map file.
// Entries are sorted by path; failures are kept with their error.
func (l *Loader) Scan() ([]Entry, error) {
	var entries []Entry

	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedExtension(strings.ToLower(path.Ext(p))) {
			return nil
		}
		lvl, err := l.LoadFile(p)
		entries = append(entries, Entry{Path: p, Level: lvl, Err: err})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

// LoadAll loads every valid map, sorted by ID. Invalid files are skipped.
func (l *Loader) LoadAll() ([]Level, error) {
	entries, err := l.Scan()
	if err != nil {
		return nil, err
	}

	var levels []Level
	for _, e := range entries {
		if e.Err != nil {
			continue
		}
		levels = append(levels, e.Level)
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})
	return levels, nil
}

// LoadFile loads a single map file relative to the loader root.
func (l *Loader) LoadFile(name string) (Level, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", name, err)
	}
	lvl, err := parse(data, name)
	if err != nil {
		return Level{}, err
	}
	lvl.FilePath = path.Join(l.Root, name)
	return lvl, nil
}

// LoadByID loads a specific map by ID.
func (l *Loader) LoadByID(id string) (Level, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return Level{}, err
	}

	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}

	return Level{}, fmt.Errorf("map not found: %s", id)
}

// ListIDs returns all map IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, nil
}

// Load reads a map file from disk. Errors wrap core.ErrInvalidMap when
// the file parses badly or fails validation.
func Load(p string) (Level, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", p, err)
	}
	lvl, err := parse(data, filepath.Base(p))
	if err != nil {
		return Level{}, err
	}
	lvl.FilePath = p
	return lvl, nil
}

// Resolve finds a map by file path first, then by ID in the loader.
func Resolve(l *Loader, ref string) (Level, error) {
	if _, err := os.Stat(ref); err == nil {
		return Load(ref)
	}
	return l.LoadByID(ref)
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// parse routes to the correct parser and fills the ID from the file name.
func parse(data []byte, name string) (Level, error) {
	ext := strings.ToLower(path.Ext(name))

	var (
		parsed formats.Level
		err    error
	)
	switch ext {
	case ".json":
		parsed, err = formats.ParseJSON(data)
	case ".yaml", ".yml":
		parsed, err = formats.ParseYAML(data)
	default:
		return Level{}, fmt.Errorf("unsupported extension: %s", ext)
	}
	if err != nil {
		return Level{}, fmt.Errorf("parsing file %s: %w", name, err)
	}

	id := parsed.ID
	if id == "" {
		id = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	return Level{ID: id, Name: parsed.Name, Map: parsed.Map}, nil
}
