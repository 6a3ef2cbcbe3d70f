package vocabulary

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/orcidator/metrics"
)

type recordingAssigner struct {
	ids   map[string]string
	err   error
	calls []string
}

func (a *recordingAssigner) Assign(ctx context.Context, category, label string, entries map[string]string) (string, error) {
	a.calls = append(a.calls, category+"/"+label)
	if a.err != nil {
		return "", a.err
	}
	return a.ids[label], nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func setupDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "institutions.json"), `{"University of London": "Q170027"}`)
	writeFile(t, filepath.Join(dir, "role.json"), `{"Professor": "Q121594"}`)
	writeFile(t, filepath.Join(dir, "README.md"), "not a category")
	return dir
}

func TestIsEntityID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Q42", true},
		{"P2427", true},
		{"L7", true},
		{"Q", false},
		{"q42", false},
		{"Q42a", false},
		{"Professor Q42", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEntityID(tt.in))
		})
	}
}

func TestLoad(t *testing.T) {
	s, err := Load(setupDir(t), "", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"institutions", "role"}, s.Categories())
	entries, ok := s.Entries("role")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"Professor": "Q121594"}, entries)
}

func TestLoadRecursivePatternRejectsDuplicates(t *testing.T) {
	dir := setupDir(t)
	writeFile(t, filepath.Join(dir, "extra", "role.json"), `{}`)

	_, err := Load(dir, "**/*.json", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `category "role"`)
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "role.json"), `["not", "a", "map"]`)

	_, err := Load(dir, "", nil)
	require.Error(t, err)
}

func TestLookupHitDoesNotWrite(t *testing.T) {
	dir := setupDir(t)
	a := &recordingAssigner{}
	s, err := Load(dir, "", a)
	require.NoError(t, err)
	m := metrics.New()
	s.Metrics = m

	path := filepath.Join(dir, "institutions.json")
	before, err := os.Stat(path)
	require.NoError(t, err)

	id, err := s.Lookup(context.Background(), "institutions", "University of London")
	require.NoError(t, err)
	assert.Equal(t, "Q170027", id)
	assert.Empty(t, a.calls)

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VocabularyLookupsTotal.WithLabelValues("institutions", metrics.ResultHit)))
}

func TestLookupEntityIDPassthrough(t *testing.T) {
	dir := t.TempDir()
	a := &recordingAssigner{}
	s, err := Load(dir, "", a)
	require.NoError(t, err)

	id, err := s.Lookup(context.Background(), "institutions", "Q1520149")
	require.NoError(t, err)
	assert.Equal(t, "Q1520149", id)
	assert.Empty(t, a.calls)

	_, ok := s.Entries("institutions")
	assert.False(t, ok)
	_, err = os.Stat(filepath.Join(dir, "institutions.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestLookupMissAssignsAndPersists(t *testing.T) {
	dir := setupDir(t)
	a := &recordingAssigner{ids: map[string]string{"Lehigh University": "Q1520149"}}
	s, err := Load(dir, "", a)
	require.NoError(t, err)

	id, err := s.Lookup(context.Background(), "institutions", "Lehigh University")
	require.NoError(t, err)
	assert.Equal(t, "Q1520149", id)
	assert.Equal(t, []string{"institutions/Lehigh University"}, a.calls)

	data, err := os.ReadFile(filepath.Join(dir, "institutions.json"))
	require.NoError(t, err)
	want := "{\n  \"Lehigh University\": \"Q1520149\",\n  \"University of London\": \"Q170027\"\n}\n"
	assert.Equal(t, want, string(data))

	// A second lookup is a hit.
	id, err = s.Lookup(context.Background(), "institutions", "Lehigh University")
	require.NoError(t, err)
	assert.Equal(t, "Q1520149", id)
	assert.Len(t, a.calls, 1)

	reloaded, err := Load(dir, "", nil)
	require.NoError(t, err)
	entries, _ := reloaded.Entries("institutions")
	assert.Equal(t, "Q1520149", entries["Lehigh University"])
}

func TestLookupMissCreatesCategory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vocab")
	a := &recordingAssigner{ids: map[string]string{"Postdoc": "Q1402"}}
	s, err := Load(t.TempDir(), "", a)
	require.NoError(t, err)
	s.dir = dir

	id, err := s.Lookup(context.Background(), "role", "Postdoc")
	require.NoError(t, err)
	assert.Equal(t, "Q1402", id)
	assert.Equal(t, filepath.Join(dir, "role.json"), s.Path("role"))

	data, err := os.ReadFile(filepath.Join(dir, "role.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Postdoc": "Q1402"}`, string(data))
}

func TestLookupAssignmentFailureLeavesStoreUntouched(t *testing.T) {
	tests := []struct {
		name     string
		assigner Assigner
	}{
		{"no assigner", nil},
		{"assigner error", &recordingAssigner{err: ErrNoAssignment}},
		{"empty identifier", &recordingAssigner{ids: map[string]string{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupDir(t)
			path := filepath.Join(dir, "institutions.json")
			before, err := os.ReadFile(path)
			require.NoError(t, err)

			s, err := Load(dir, "", tt.assigner)
			require.NoError(t, err)

			_, err = s.Lookup(context.Background(), "institutions", "Unknown College")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoAssignment), "got %v", err)

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after))

			entries, _ := s.Entries("institutions")
			assert.NotContains(t, entries, "Unknown College")
		})
	}
}

func TestLookupFlushFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	writeFile(t, blocker, "file, not a directory")

	a := AssignerFunc(func(ctx context.Context, category, label string, entries map[string]string) (string, error) {
		return "Q1", nil
	})
	s := NewStore(filepath.Join(blocker, "vocab"), a)

	_, err := s.Lookup(context.Background(), "role", "Lecturer")
	require.Error(t, err)
	assert.Empty(t, s.Categories())
}

func TestAssignerReceivesCopy(t *testing.T) {
	dir := setupDir(t)
	a := AssignerFunc(func(ctx context.Context, category, label string, entries map[string]string) (string, error) {
		entries["Professor"] = "Q999"
		return "Q1", nil
	})
	s, err := Load(dir, "", a)
	require.NoError(t, err)

	_, err = s.Lookup(context.Background(), "role", "Lecturer")
	require.NoError(t, err)

	entries, _ := s.Entries("role")
	assert.Equal(t, map[string]string{"Professor": "Q121594", "Lecturer": "Q1"}, entries)
}

func TestFlushUnknownCategory(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	assert.Error(t, s.Flush("missing"))
}

func TestProblems(t *testing.T) {
	dir := setupDir(t)
	writeFile(t, filepath.Join(dir, "degree.json"), `{"PhD": "Q752297", "MSc": "master of science", "": "Q1"}`)

	s, err := Load(dir, "", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		`degree: empty label mapped to "Q1"`,
		`degree: "MSc" maps to "master of science", not an entity identifier`,
	}, s.Problems())
}
