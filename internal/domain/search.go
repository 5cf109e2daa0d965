package domain

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// SearchThreshold bounds accepted scores; 0 is an exact match.
const SearchThreshold = 0.4

type SearchField[T any] struct {
	Name  string
	Value func(T) string
}

type searchHit[T any] struct {
	item  T
	score float64
}

// Search ranks items by how well field matches query. A blank query returns
// items untouched. The input slice is never modified.
func Search[T any](items []T, query string, field SearchField[T]) []T {
	needle := []rune(strings.ToLower(strings.TrimSpace(query)))
	if len(needle) == 0 {
		return items
	}

	hits := make([]searchHit[T], 0, len(items))
	for _, item := range items {
		if field.Value == nil {
			break
		}
		haystack := []rune(strings.ToLower(strings.TrimSpace(field.Value(item))))
		if score, ok := matchScore(needle, haystack); ok {
			hits = append(hits, searchHit[T]{item: item, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score < hits[j].score
	})

	result := make([]T, 0, len(hits))
	for _, hit := range hits {
		result = append(result, hit.item)
	}
	return result
}

// matchScore grades a match in bands: exact 0, substring up to 0.2,
// subsequence up to 0.35, approximate below SearchThreshold.
func matchScore(needle, haystack []rune) (float64, bool) {
	if len(haystack) == 0 {
		return 1, false
	}
	if string(needle) == string(haystack) {
		return 0, true
	}

	if idx := strings.Index(string(haystack), string(needle)); idx >= 0 {
		position := float64(len([]rune(string(haystack)[:idx])))
		coverage := float64(len(needle)) / float64(len(haystack))
		return 0.05 + 0.1*(1-coverage) + 0.05*(position/float64(len(haystack))), true
	}

	if span, ok := subsequenceSpan(needle, haystack); ok {
		gaps := float64(span-len(needle)) / float64(len(haystack))
		return 0.2 + 0.15*gaps, true
	}

	distance := float64(approximateDistance(needle, haystack)) / float64(len(needle))
	if distance >= SearchThreshold {
		return distance, false
	}
	return 0.35 + 0.05*(distance/SearchThreshold), true
}

// subsequenceSpan reports the width of the leftmost window of haystack that
// contains needle in order.
func subsequenceSpan(needle, haystack []rune) (int, bool) {
	first, matched := -1, 0
	for i, r := range haystack {
		if r != needle[matched] {
			continue
		}
		if first < 0 {
			first = i
		}
		matched++
		if matched == len(needle) {
			return i - first + 1, true
		}
	}
	return 0, false
}

// approximateDistance is the smallest edit distance, counting adjacent
// transpositions, between needle and any substring of haystack.
func approximateDistance(needle, haystack []rune) int {
	width := len(haystack) + 1
	prev2 := make([]int, width)
	prev := make([]int, width)
	cur := make([]int, width)

	for i := 1; i <= len(needle); i++ {
		cur[0] = i
		for j := 1; j <= len(haystack); j++ {
			cost := 1
			if needle[i-1] == haystack[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j-1]+cost, prev[j]+1, cur[j-1]+1)
			if i > 1 && j > 1 && needle[i-1] == haystack[j-2] && needle[i-2] == haystack[j-1] {
				cur[j] = min(cur[j], prev2[j-2]+1)
			}
		}
		prev2, prev, cur = prev, cur, prev2
	}

	best := prev[0]
	for _, d := range prev[1:] {
		best = min(best, d)
	}
	return best
}

// SearchFilter keeps a query and the field it applies to. The first field
// given to NewSearchFilter is the default.
type SearchFilter[T any] struct {
	mu     sync.RWMutex
	fields []SearchField[T]
	field  int
	query  string
}

func NewSearchFilter[T any](fields ...SearchField[T]) *SearchFilter[T] {
	return &SearchFilter[T]{fields: fields}
}

func (f *SearchFilter[T]) SetQuery(query string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = query
}

func (f *SearchFilter[T]) Query() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.query
}

func (f *SearchFilter[T]) SetField(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, field := range f.fields {
		if strings.EqualFold(field.Name, name) {
			f.field = i
			return nil
		}
	}
	return fmt.Errorf("set search field %q: %w", name, ErrUnknownSearchField)
}

func (f *SearchFilter[T]) Field() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.field].Name
}

func (f *SearchFilter[T]) Fields() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.fields))
	for _, field := range f.fields {
		names = append(names, field.Name)
	}
	return names
}

func (f *SearchFilter[T]) Apply(items []T) []T {
	f.mu.RLock()
	query := f.query
	var field SearchField[T]
	if len(f.fields) > 0 {
		field = f.fields[f.field]
	}
	f.mu.RUnlock()
	return Search(items, query, field)
}

var PatientSearchFields = []SearchField[Patient]{
	{Name: "Name", Value: func(p Patient) string { return p.Name }},
	{Name: "patientID", Value: func(p Patient) string { return p.ID }},
}

var PrescriptionSearchFields = []SearchField[Prescription]{
	{Name: "MedicineName", Value: func(p Prescription) string { return p.MedicineName }},
	{Name: "prescriptionID", Value: func(p Prescription) string { return p.ID }},
	{Name: "patientID", Value: func(p Prescription) string { return p.PatientID }},
}
