package wikidata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/orcidator/metrics"
)

// Resolver finds the entity that already carries an external identifier.
type Resolver struct {
	Querier Querier
	Metrics *metrics.Metrics
}

// NewResolver creates a Resolver backed by q.
func NewResolver(q Querier) *Resolver {
	return &Resolver{Querier: q}
}

// Lookup asks which entity has property set to externalID. It reports found
// only when exactly one entity matches.
func (r *Resolver) Lookup(ctx context.Context, externalID, property string) (string, bool, error) {
	bindings, err := r.Querier.Query(ctx, LookupQuery(property, externalID))
	if err != nil {
		return "", false, fmt.Errorf("looking up %s %q: %w", property, externalID, err)
	}

	if len(bindings) != 1 {
		slog.Debug("no unique entity for external id", "property", property, "id", externalID, "matches", len(bindings))
		r.Metrics.RemoteLookup(property, metrics.ResultDefault)
		return "", false, nil
	}

	item, ok := bindings[0]["item"]
	if !ok || item.Value == "" {
		r.Metrics.RemoteLookup(property, metrics.ResultDefault)
		return "", false, nil
	}

	r.Metrics.RemoteLookup(property, metrics.ResultFound)
	return EntityID(item.Value), true, nil
}

// Resolve returns the entity carrying property = externalID, or def when zero
// or several entities match.
func (r *Resolver) Resolve(ctx context.Context, externalID, property, def string) (string, error) {
	id, found, err := r.Lookup(ctx, externalID, property)
	if err != nil {
		return "", err
	}
	if !found {
		return def, nil
	}
	return id, nil
}

// LookupQuery builds the SELECT query for entities with property = value.
func LookupQuery(property, value string) string {
	return fmt.Sprintf(`SELECT ?item ?itemLabel
WHERE
{
    ?item wdt:%s %s .
}`, property, quoteLiteral(value))
}

// EntityID returns the last path segment of an entity URI.
func EntityID(uri string) string {
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
)

func quoteLiteral(s string) string {
	return `"` + literalEscaper.Replace(s) + `"`
}
