// Package replay stores trained policies together with the map they were
// trained on, so a run can be watched again later.
package replay

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
	"github.com/vovakirdan/blockdude-evo/internal/neat"
)

// Ext is the file extension of replay files.
const Ext = ".replay"

// Well-known replay names inside the replays directory.
const (
	WinnerName  = "winner"
	FailureName = "failure"
)

// magic prefixes every replay file; the last byte is the format version.
var magic = []byte("BDRP\x01")

// ErrNotReplay is returned for files that do not start with the replay header.
var ErrNotReplay = errors.New("replay: not a replay file")

// Record is a saved policy and the map it plays. Records are written once
// and never modified.
type Record struct {
	Config neat.Config
	// Genome is the goNEAT genome in its YAML encoding.
	Genome   []byte
	GenomeID int
	Map      core.GridMap
	MapID    string
	Fitness  float64
	Won      bool
	Created  time.Time
}

// New builds a record from a genome and the fitness it scored.
func New(cfg *neat.Config, g *genetics.Genome, fitness float64, mapID string, m core.GridMap) (*Record, error) {
	data, err := neat.EncodeGenome(g)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return &Record{
		Config:   *cfg,
		Genome:   data,
		GenomeID: g.Id,
		Map:      core.GridMap{Cells: core.CloneCells(m.Cells), StartX: m.StartX, StartY: m.StartY, StartDirection: m.StartDirection},
		MapID:    mapID,
		Fitness:  fitness,
		Created:  time.Now(),
	}, nil
}

// Net decodes the genome and builds its network.
func (r *Record) Net() (*neat.Network, error) {
	g, err := neat.DecodeGenome(r.Genome)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return neat.NewNetwork(g)
}

// Encode writes rec as a gzip-compressed gob stream behind the header.
func Encode(w io.Writer, rec *Record) error {
	if _, err := w.Write(magic); err != nil {
		return fmt.Errorf("replay: write header: %w", err)
	}
	zw := gzip.NewWriter(w)
	if err := gob.NewEncoder(zw).Encode(rec); err != nil {
		zw.Close()
		return fmt.Errorf("replay: encode: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("replay: compress: %w", err)
	}
	return nil
}

// Decode reads a record written by Encode. An empty or truncated stream
// yields (nil, nil): there is no replay to play.
func Decode(r io.Reader) (*Record, error) {
	br := bufio.NewReader(r)
	head := make([]byte, len(magic))
	n, err := io.ReadFull(br, head)
	if err != nil {
		if isTruncated(err) && bytes.HasPrefix(magic, head[:n]) {
			return nil, nil
		}
		if isTruncated(err) {
			return nil, ErrNotReplay
		}
		return nil, fmt.Errorf("replay: read header: %w", err)
	}
	if !bytes.Equal(head, magic) {
		return nil, ErrNotReplay
	}

	zr, err := gzip.NewReader(br)
	if err != nil {
		if isTruncated(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("replay: decompress: %w", err)
	}
	defer zr.Close()

	var rec Record
	if err := gob.NewDecoder(zr).Decode(&rec); err != nil {
		if isTruncated(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("replay: decode: %w", err)
	}
	// Reach the gzip trailer so a cut-off checksum is noticed too.
	if _, err := io.Copy(io.Discard, zr); err != nil {
		if isTruncated(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("replay: decompress: %w", err)
	}
	return &rec, nil
}

func isTruncated(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// Save writes rec to path, replacing any previous file atomically.
func Save(path string, rec *Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("replay: create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".replay-*")
	if err != nil {
		return fmt.Errorf("replay: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, rec); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("replay: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replay: rename: %w", err)
	}
	return nil
}

// Load reads the replay at path. It returns (nil, nil) when the file is
// empty or truncated.
func Load(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: open: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// PathFor returns the file path of the replay called name in dir.
func PathFor(dir, name string) string {
	if strings.HasSuffix(name, Ext) {
		return filepath.Join(dir, name)
	}
	return filepath.Join(dir, name+Ext)
}

// Info describes a replay file on disk.
type Info struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// List returns the replay files in dir, newest first.
// A missing directory has no replays.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("replay: list %s: %w", dir, err)
	}

	var infos []Info
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:    strings.TrimSuffix(e.Name(), Ext),
			Path:    filepath.Join(dir, e.Name()),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	sort.SliceStable(infos, func(i, j int) bool {
		if !infos[i].ModTime.Equal(infos[j].ModTime) {
			return infos[i].ModTime.After(infos[j].ModTime)
		}
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}
