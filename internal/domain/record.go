package domain

import (
	"fmt"
	"sort"
	"strconv"
)

type Patient struct {
	ID   string
	Name string
}

// Record is a loosely typed object returned verbatim by the portal, such as a
// patient profile or an assigned doctor.
type Record map[string]any

func (r Record) String(key string) string {
	value, ok := r[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
