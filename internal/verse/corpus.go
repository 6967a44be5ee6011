// internal/verse/corpus.go
//
// Corpus loading for the solver and the simulator.
//
// Responsibilities:
//   - Decode poem collections in the chinese-poetry JSON layout
//     (an array of records, each with an ordered "paragraphs" list).
//   - Clean each paragraph down to ideographs and keep those of the target length.
//   - Deduplicate by content while preserving first-seen order.
//
// Sources (Load):
//   1. A single JSON file.
//   2. A directory: every *.json file below it, in lexical order.
//   3. An empty path: the embedded sample corpus from the assets package.
//
// Errors are fatal to startup; there is no fallback corpus when a configured
// source is missing or malformed.

package verse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robalobadob/xunhualing/assets"
)

var (
	ErrNoVerses      = errors.New("verse: corpus has no verses of the requested length")
	ErrInvalidLength = errors.New("verse: length must be 10 or 14")
)

// Record is one poem as stored in the corpus files.
type Record struct {
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Paragraphs []string `json:"paragraphs"`
}

// Load reads the corpus at path and returns the unique verses of exactly
// length characters.
func Load(path string, length int) ([]Verse, error) {
	if !ValidLength(length) {
		return nil, ErrInvalidLength
	}
	if path == "" {
		f, err := assets.OpenDefaultCorpus()
		if err != nil {
			return nil, fmt.Errorf("open embedded corpus: %w", err)
		}
		defer f.Close()
		return finish(ParseRecords(f, length))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat corpus: %w", err)
	}
	if !info.IsDir() {
		return finish(loadFile(path, length))
	}

	var files []string
	if err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".json") {
			files = append(files, p)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("walk corpus dir: %w", err)
	}
	sort.Strings(files)

	var all []Verse
	for _, f := range files {
		vs, err := loadFile(f, length)
		if err != nil {
			return nil, err
		}
		all = append(all, vs...)
	}
	return finish(Dedup(all), nil)
}

func loadFile(path string, length int) ([]Verse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()
	vs, err := ParseRecords(f, length)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vs, nil
}

func finish(vs []Verse, err error) ([]Verse, error) {
	if err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, ErrNoVerses
	}
	return vs, nil
}

// ParseRecords decodes a JSON array of records from r and extracts verses of
// the given length. An empty result is not an error here.
func ParseRecords(r io.Reader, length int) ([]Verse, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	return Extract(records, length), nil
}

// Extract cleans every paragraph of records and keeps the unique ones of
// exactly length characters, in corpus order.
func Extract(records []Record, length int) []Verse {
	var out []Verse
	for _, rec := range records {
		for _, p := range rec.Paragraphs {
			v := Verse(Clean(strings.TrimSpace(p)))
			if v.Len() == length {
				out = append(out, v)
			}
		}
	}
	return Dedup(out)
}

// Dedup removes repeated verses, keeping the first occurrence.
func Dedup(vs []Verse) []Verse {
	seen := make(map[Verse]struct{}, len(vs))
	out := make([]Verse, 0, len(vs))
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
