package affiliation

import (
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/orcidator/orcid"
)

// Wikidata time precisions.
const (
	PrecisionYear  = 9
	PrecisionMonth = 10
	PrecisionDay   = 11
)

// ErrMissingYear is returned for a date block that has a month or day but no year.
var ErrMissingYear = errors.New("date has no year")

// FormatDate renders an ORCID fuzzy date as a QuickStatements time value,
// e.g. +2020-05-00T00:00:00Z/10. Missing components are written as 00 and
// lower the precision. A nil date yields "".
func FormatDate(d *orcid.FuzzyDate) (string, error) {
	if d == nil {
		return "", nil
	}
	if d.Year == nil {
		if d.Month != nil || d.Day != nil {
			return "", ErrMissingYear
		}
		return "", nil
	}

	year := d.Year.Value
	month := "00"
	day := "00"
	precision := PrecisionYear

	if d.Month != nil {
		month = d.Month.Value
		precision = PrecisionMonth
	}
	if d.Day != nil {
		day = d.Day.Value
		precision = PrecisionDay
	}

	return fmt.Sprintf("+%s-%s-%sT00:00:00Z/%d", year, month, day, precision), nil
}
