// Package vocabulary maps free-text labels to Wikidata entity identifiers.
//
// Labels are grouped into categories ("institutions", "role"), each persisted
// as its own JSON object file. A lookup that misses asks an Assigner for an
// identifier and writes the whole category back before returning it.
package vocabulary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lehigh-university-libraries/orcidator/metrics"
)

// DefaultPattern selects category files inside the vocabulary directory.
const DefaultPattern = "*.json"

// ErrNoAssignment is returned when no identifier could be obtained for a label.
var ErrNoAssignment = errors.New("no identifier assigned")

var entityIDRegex = regexp.MustCompile(`^[A-Z][0-9]+$`)

// IsEntityID reports whether s is already an entity identifier such as Q42.
func IsEntityID(s string) bool {
	return entityIDRegex.MatchString(s)
}

// Assigner obtains an identifier for a label the store does not know.
// entries is a copy of the category's current mapping.
type Assigner interface {
	Assign(ctx context.Context, category, label string, entries map[string]string) (string, error)
}

// AssignerFunc adapts a function to the Assigner interface.
type AssignerFunc func(ctx context.Context, category, label string, entries map[string]string) (string, error)

// Assign calls f.
func (f AssignerFunc) Assign(ctx context.Context, category, label string, entries map[string]string) (string, error) {
	return f(ctx, category, label, entries)
}

// Store holds every category of the controlled vocabulary.
type Store struct {
	dir        string
	categories map[string]map[string]string
	paths      map[string]string
	assigner   Assigner

	Metrics *metrics.Metrics
}

// NewStore creates an empty store rooted at dir.
func NewStore(dir string, assigner Assigner) *Store {
	return &Store{
		dir:        dir,
		categories: make(map[string]map[string]string),
		paths:      make(map[string]string),
		assigner:   assigner,
	}
}

// Load reads every category file under dir matching pattern. The category
// name is the file name without its extension.
func Load(dir, pattern string, assigner Assigner) (*Store, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	s := NewStore(dir, assigner)

	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("listing vocabulary files: %w", err)
	}
	slices.Sort(matches)

	for _, match := range matches {
		path := filepath.Join(dir, filepath.FromSlash(match))
		category := strings.TrimSuffix(filepath.Base(match), filepath.Ext(match))

		if existing, ok := s.paths[category]; ok {
			return nil, fmt.Errorf("category %q defined by both %s and %s", category, existing, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading vocabulary file: %w", err)
		}

		entries := make(map[string]string)
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parsing vocabulary file %s: %w", path, err)
		}

		slog.Debug("loaded vocabulary", "category", category, "path", path, "entries", len(entries))
		s.categories[category] = entries
		s.paths[category] = path
	}

	return s, nil
}

// Lookup returns the identifier for label in category. Labels that are
// already entity identifiers are returned unchanged without touching the
// store. A miss is resolved through the Assigner and persisted immediately.
func (s *Store) Lookup(ctx context.Context, category, label string) (string, error) {
	if IsEntityID(label) {
		s.Metrics.VocabularyLookup(category, metrics.ResultPassthrough)
		return label, nil
	}

	entries := s.categories[category]
	if id, ok := entries[label]; ok {
		s.Metrics.VocabularyLookup(category, metrics.ResultHit)
		return id, nil
	}

	s.Metrics.VocabularyLookup(category, metrics.ResultMiss)
	slog.Debug("vocabulary miss", "category", category, "label", label)

	if s.assigner == nil {
		return "", fmt.Errorf("%s %q: %w", category, label, ErrNoAssignment)
	}

	id, err := s.assigner.Assign(ctx, category, label, maps.Clone(entries))
	if err != nil {
		return "", fmt.Errorf("%s %q: %w", category, label, err)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%s %q: %w", category, label, ErrNoAssignment)
	}

	if err := s.add(category, label, id); err != nil {
		return "", err
	}

	slog.Info("added vocabulary entry", "category", category, "label", label, "id", id)
	return id, nil
}

// add inserts one entry and flushes the category, undoing the insert if the
// write fails.
func (s *Store) add(category, label, id string) error {
	entries, ok := s.categories[category]
	if !ok {
		entries = make(map[string]string)
		s.categories[category] = entries
	}
	entries[label] = id

	if err := s.Flush(category); err != nil {
		delete(entries, label)
		if !ok {
			delete(s.categories, category)
		}
		return err
	}
	return nil
}

// Flush overwrites the category's file with its current entries, indented
// and with keys sorted.
func (s *Store) Flush(category string) error {
	entries, ok := s.categories[category]
	if !ok {
		return fmt.Errorf("unknown vocabulary category %q", category)
	}

	data, err := encode(entries)
	if err != nil {
		return fmt.Errorf("encoding %s vocabulary: %w", category, err)
	}

	path := s.path(category)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating vocabulary dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+category+"-*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s vocabulary: %w", category, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s vocabulary: %w", category, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s vocabulary: %w", category, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	s.paths[category] = path
	slog.Debug("flushed vocabulary", "category", category, "path", path, "entries", len(entries))
	return nil
}

func (s *Store) path(category string) string {
	if p, ok := s.paths[category]; ok {
		return p
	}
	return filepath.Join(s.dir, category+".json")
}

func encode(entries map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Categories returns the loaded category names in sorted order.
func (s *Store) Categories() []string {
	return slices.Sorted(maps.Keys(s.categories))
}

// Entries returns a copy of a category's mapping.
func (s *Store) Entries(category string) (map[string]string, bool) {
	entries, ok := s.categories[category]
	if !ok {
		return nil, false
	}
	return maps.Clone(entries), true
}

// Path returns the file a category is persisted to.
func (s *Store) Path(category string) string {
	return s.path(category)
}

// Problems describes every entry whose label is empty or whose identifier is
// not an entity identifier, sorted by category and label.
func (s *Store) Problems() []string {
	var problems []string
	for _, category := range s.Categories() {
		entries := s.categories[category]
		for _, label := range slices.Sorted(maps.Keys(entries)) {
			id := entries[label]
			switch {
			case strings.TrimSpace(label) == "":
				problems = append(problems, fmt.Sprintf("%s: empty label mapped to %q", category, id))
			case !IsEntityID(id):
				problems = append(problems, fmt.Sprintf("%s: %q maps to %q, not an entity identifier", category, label, id))
			}
		}
	}
	return problems
}
