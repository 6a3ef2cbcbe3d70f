package vocabulary

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/orcidator/helpers"
	"github.com/lehigh-university-libraries/orcidator/wikidata"
)

var errInvalidAnswer = errors.New("invalid answer")

// Searcher finds candidate entities for a label.
type Searcher interface {
	SearchEntities(ctx context.Context, search, language string, limit int) ([]wikidata.SearchResult, error)
}

// PromptAssigner asks an operator for the identifier of an unknown label,
// offering search candidates when a Searcher is configured.
type PromptAssigner struct {
	reader   *bufio.Reader
	out      io.Writer
	searcher Searcher

	Language    string
	Limit       int
	MaxAttempts int
}

// NewPromptAssigner creates a prompt reading answers from in and writing
// prompts to out. searcher may be nil.
func NewPromptAssigner(in io.Reader, out io.Writer, searcher Searcher) *PromptAssigner {
	return &PromptAssigner{
		reader:      bufio.NewReader(in),
		out:         out,
		searcher:    searcher,
		Language:    "en",
		Limit:       5,
		MaxAttempts: 3,
	}
}

// Assign prompts until the operator picks a candidate, types an identifier,
// or gives up with a blank line.
func (p *PromptAssigner) Assign(ctx context.Context, category, label string, entries map[string]string) (string, error) {
	fmt.Fprintf(p.out, "\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(p.out, "Unknown %s: %q\n", category, label)
	fmt.Fprintf(p.out, "  %d entries in vocabulary\n", len(entries))

	candidates := p.candidates(ctx, label)
	if len(candidates) > 0 {
		fmt.Fprintln(p.out, "\nCandidates:")
		for i, c := range candidates {
			desc := ""
			if c.Description != "" {
				desc = " - " + c.Description
			}
			fmt.Fprintf(p.out, "  %2d. %-12s %s%s\n", i+1, c.ID, c.Label, desc)
		}
	}

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if len(candidates) > 0 {
			fmt.Fprint(p.out, "\nEnter choice or identifier (blank to abort): ")
		} else {
			fmt.Fprint(p.out, "\nEnter identifier (blank to abort): ")
		}

		id, err := p.readAnswer(candidates)
		if errors.Is(err, errInvalidAnswer) {
			fmt.Fprintf(p.out, "%v\n", err)
			continue
		}
		return id, err
	}

	return "", fmt.Errorf("too many invalid answers: %w", ErrNoAssignment)
}

func (p *PromptAssigner) candidates(ctx context.Context, label string) []wikidata.SearchResult {
	if p.searcher == nil {
		return nil
	}
	results, err := p.searcher.SearchEntities(ctx, helpers.CleanLabel(label), p.Language, p.Limit)
	if err != nil {
		slog.Warn("entity search failed", "label", label, "error", err)
		return nil
	}
	return results
}

// readAnswer reads one answer. A blank line or end of input aborts.
func (p *PromptAssigner) readAnswer(candidates []wikidata.SearchResult) (string, error) {
	input, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return "", ErrNoAssignment
	}

	if IsEntityID(input) {
		return input, nil
	}

	choice, err := strconv.Atoi(input)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errInvalidAnswer, input)
	}
	if choice < 1 || choice > len(candidates) {
		return "", fmt.Errorf("%w: choice out of range: %d (1-%d)", errInvalidAnswer, choice, len(candidates))
	}
	return candidates[choice-1].ID, nil
}
