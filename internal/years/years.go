// Package years provides set and range operations over calendar years,
// and the text form used in copyright notices ("2018-2020, 2022").
package years

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// MaxYear bounds parsed years so a malformed range cannot expand into a huge set.
const MaxYear = 9999

// Set is a set of calendar years.
type Set map[int]struct{}

// NewSet returns a Set holding the given years.
func NewSet(ys ...int) Set {
	s := make(Set, len(ys))
	for _, y := range ys {
		s[y] = struct{}{}
	}
	return s
}

// Add inserts a year into the set.
func (s Set) Add(y int) {
	s[y] = struct{}{}
}

// Len returns the number of years in the set.
func (s Set) Len() int { return len(s) }

// Sorted returns the years in ascending order.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for y := range s {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// Filter returns a new Set containing only the years for which keep returns true.
func (s Set) Filter(keep func(int) bool) Set {
	out := make(Set, len(s))
	for y := range s {
		if keep(y) {
			out[y] = struct{}{}
		}
	}
	return out
}

// String returns the canonical range text, e.g. "2018-2020, 2022".
func (s Set) String() string {
	return Format(s)
}

// Range is an inclusive run of consecutive years.
type Range struct {
	Start int
	End   int
}

// String renders a single year as "Y" and a span as "Y1-Y2".
func (r Range) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Merge returns the union of a and b. Neither input is modified.
func Merge(a, b Set) Set {
	out := make(Set, len(a)+len(b))
	for y := range a {
		out[y] = struct{}{}
	}
	for y := range b {
		out[y] = struct{}{}
	}
	return out
}

// ToRanges groups the set into ascending, disjoint, non-adjacent ranges.
func ToRanges(s Set) []Range {
	sorted := s.Sorted()
	if len(sorted) == 0 {
		return nil
	}

	ranges := []Range{{Start: sorted[0], End: sorted[0]}}
	for _, y := range sorted[1:] {
		last := &ranges[len(ranges)-1]
		if y == last.End+1 {
			last.End = y
			continue
		}
		ranges = append(ranges, Range{Start: y, End: y})
	}
	return ranges
}

// FormatRanges joins ranges with ", " in the order given.
func FormatRanges(ranges []Range) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

// Format is shorthand for FormatRanges(ToRanges(s)).
func Format(s Set) string {
	return FormatRanges(ToRanges(s))
}

// MalformedYearsError is returned when year text does not follow the
// "Y" / "Y1-Y2" token grammar.
type MalformedYearsError struct {
	// Text is the full input that failed to parse
	Text string

	// Token is the offending token, if one was isolated
	Token string

	// Reason describes what was wrong with the token
	Reason string
}

func (e *MalformedYearsError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("malformed years %q: %s", e.Text, e.Reason)
	}
	return fmt.Sprintf("malformed years %q: token %q: %s", e.Text, e.Token, e.Reason)
}

// dashes accepted between the two ends of a range, with optional spacing
var rangeDash = regexp.MustCompile(`\s*[-–—]\s*`)

// ParseRanges parses text produced by FormatRanges back into a Set.
//
// Tokens may be separated by commas and/or whitespace. A range dash may be
// a hyphen, en dash or em dash, with optional surrounding spaces. Empty
// text yields an empty set.
func ParseRanges(text string) (Set, error) {
	s := make(Set)
	normalized := rangeDash.ReplaceAllString(strings.TrimSpace(text), "-")
	if normalized == "" {
		return s, nil
	}

	for _, chunk := range strings.Split(normalized, ",") {
		fields := strings.Fields(chunk)
		if len(fields) == 0 {
			return nil, &MalformedYearsError{Text: text, Reason: "empty token"}
		}
		for _, tok := range fields {
			start, end, err := parseToken(tok)
			if err != nil {
				return nil, &MalformedYearsError{Text: text, Token: tok, Reason: err.Error()}
			}
			for y := start; y <= end; y++ {
				s[y] = struct{}{}
			}
		}
	}
	return s, nil
}

func parseToken(tok string) (start, end int, err error) {
	lo, hi, isRange := strings.Cut(tok, "-")
	start, err = parseYear(lo)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return start, start, nil
	}
	end, err = parseYear(hi)
	if err != nil {
		return 0, 0, err
	}
	if start > end {
		return 0, 0, fmt.Errorf("range start %d is after end %d", start, end)
	}
	return start, end, nil
}

func parseYear(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("missing year")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not an integer")
		}
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}
	if y < 1 || y > MaxYear {
		return 0, fmt.Errorf("year %d out of range 1-%d", y, MaxYear)
	}
	return y, nil
}
