package collection

import (
	"fmt"
	"strconv"
	"strings"
)

// FilterState maps a filter key to a scalar value. A nil value means the
// filter is unset.
type FilterState map[string]any

func (f FilterState) Clone() FilterState {
	out := make(FilterState, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Reset sets every known key back to unset. Keys are kept so the UI still
// knows which filters exist.
func (f FilterState) Reset() {
	for k := range f {
		f[k] = nil
	}
}

// Keys returns the filter keys in a stable order.
func (f FilterState) Keys() []string {
	return sortedKeys(f)
}

// IsSet reports whether key carries a value that would be sent.
func (f FilterState) IsSet(key string) bool {
	_, ok := f.Encoded(key)
	return ok
}

// Active returns the number of filters that would be sent.
func (f FilterState) Active() int {
	n := 0
	for k := range f {
		if f.IsSet(k) {
			n++
		}
	}
	return n
}

// Encoded renders the value for key as a query parameter value. Unset, empty
// and "all" values report false and must be omitted from the request.
func (f FilterState) Encoded(key string) (string, bool) {
	value, ok := f[key]
	if !ok || value == nil {
		return "", false
	}

	var s string
	switch v := value.(type) {
	case string:
		s = strings.TrimSpace(v)
	case *string:
		if v == nil {
			return "", false
		}
		s = strings.TrimSpace(*v)
	case bool:
		s = strconv.FormatBool(v)
	case *bool:
		if v == nil {
			return "", false
		}
		s = strconv.FormatBool(*v)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}

	if s == "" || s == FilterAll {
		return "", false
	}
	return s, true
}
