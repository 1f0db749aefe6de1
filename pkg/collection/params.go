package collection

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 15
	MaxPerPage     = 100

	// MinSearchLength is the shortest free-text term that is sent to the backend.
	MinSearchLength = 3

	// FilterAll is the "no filter" sentinel some list pages send for enum filters.
	FilterAll = "all"
)

// Wire names of the list parameters.
const (
	ParamPage      = "page"
	ParamPerPage   = "per_page"
	ParamSearch    = "search"
	ParamFields    = "s_f[]"
	ParamValues    = "s_v[]"
	ParamOperator  = "s_o"
	ParamSortField = "sort_field"
	ParamSortDir   = "sort_dir"
)

var ErrSearchTooShort = fmt.Errorf("search term must have at least %d characters", MinSearchLength)

type Operator string

const (
	OperatorOr  Operator = "or"
	OperatorAnd Operator = "and"
)

type Direction string

const (
	SortAsc  Direction = "asc"
	SortDesc Direction = "desc"
)

// Search is a single typed string matched against one or more columns.
type Search struct {
	Term     string
	Fields   []string
	Operator Operator
}

// Active reports whether the search carries a term at all.
func (s Search) Active() bool {
	return strings.TrimSpace(s.Term) != ""
}

// TooShort reports a non-empty term below MinSearchLength.
func (s Search) TooShort() bool {
	term := strings.TrimSpace(s.Term)
	return term != "" && utf8.RuneCountInString(term) < MinSearchLength
}

type Sort struct {
	Field     string
	Direction Direction
}

// Query is the UI state of one collection view in the form the backend understands.
type Query struct {
	Page    int
	PerPage int
	Search  Search
	Filters FilterState
	Sort    *Sort
}

// NewQuery returns a first-page query with the default page size.
func NewQuery() Query {
	return Query{Page: DefaultPage, PerPage: DefaultPerPage, Filters: FilterState{}}
}

// Clone returns a copy that shares no mutable state with q.
func (q Query) Clone() Query {
	out := q
	out.Filters = q.Filters.Clone()
	if q.Search.Fields != nil {
		out.Search.Fields = append([]string(nil), q.Search.Fields...)
	}
	if q.Sort != nil {
		s := *q.Sort
		out.Sort = &s
	}
	return out
}

func (q Query) normalized() Query {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	return q
}

// Values builds the request parameters. A term shorter than MinSearchLength
// returns ErrSearchTooShort so no request is issued for it.
func (q Query) Values() (url.Values, error) {
	if q.Search.TooShort() {
		return nil, ErrSearchTooShort
	}
	q = q.normalized()

	v := url.Values{}
	v.Set(ParamPage, strconv.Itoa(q.Page))
	v.Set(ParamPerPage, strconv.Itoa(q.PerPage))

	if q.Search.Active() {
		term := strings.TrimSpace(q.Search.Term)
		if len(q.Search.Fields) == 0 {
			v.Set(ParamSearch, term)
		} else {
			op := q.Search.Operator
			if op == "" {
				op = OperatorOr
			}
			for _, field := range q.Search.Fields {
				v.Add(ParamFields, field)
				v.Add(ParamValues, term)
			}
			v.Set(ParamOperator, string(op))
		}
	}

	for _, key := range q.Filters.Keys() {
		if value, ok := q.Filters.Encoded(key); ok {
			v.Set(key, value)
		}
	}

	if q.Sort != nil && q.Sort.Field != "" {
		dir := q.Sort.Direction
		if dir != SortDesc {
			dir = SortAsc
		}
		v.Set(ParamSortField, q.Sort.Field)
		v.Set(ParamSortDir, string(dir))
	}
	return v, nil
}

// Key identifies the cached result of q for an entity kind. Two queries that
// produce the same request share a key.
func (q Query) Key(kind string) string {
	v, err := q.Values()
	if err != nil {
		return kind + "|invalid"
	}
	return kind + "|" + v.Encode()
}

// ParseOptions restricts what ParseQuery accepts from a request.
type ParseOptions struct {
	SearchFields []string
	Filters      []string
	SortFields   []string
	DefaultSort  *Sort
}

var errInvalidParam = errors.New("invalid list parameter")

// ParseQuery is the backend side of Values. Unknown filters, search fields and
// sort fields are dropped rather than rejected.
func ParseQuery(v url.Values, opts ParseOptions) (Query, error) {
	q := NewQuery()

	if raw := v.Get(ParamPage); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, fmt.Errorf("%w: page %q", errInvalidParam, raw)
		}
		q.Page = page
	}
	if raw := v.Get(ParamPerPage); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, fmt.Errorf("%w: per_page %q", errInvalidParam, raw)
		}
		q.PerPage = perPage
	}
	q = q.normalized()
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}

	if term := strings.TrimSpace(v.Get(ParamSearch)); term != "" {
		q.Search = Search{Term: term, Fields: append([]string(nil), opts.SearchFields...), Operator: OperatorOr}
	}
	if fields := v[ParamFields]; len(fields) > 0 {
		values := v[ParamValues]
		allowed := toSet(opts.SearchFields)
		var picked []string
		var term string
		for i, f := range fields {
			if !allowed[f] {
				continue
			}
			picked = append(picked, f)
			if i < len(values) && term == "" {
				term = strings.TrimSpace(values[i])
			}
		}
		op := Operator(strings.ToLower(v.Get(ParamOperator)))
		if op != OperatorAnd {
			op = OperatorOr
		}
		if len(picked) > 0 && term != "" {
			q.Search = Search{Term: term, Fields: picked, Operator: op}
		}
	}

	for _, key := range opts.Filters {
		raw, ok := v[key]
		if !ok || len(raw) == 0 {
			continue
		}
		value := strings.TrimSpace(raw[0])
		if value == "" || value == FilterAll {
			continue
		}
		q.Filters[key] = value
	}

	q.Sort = opts.DefaultSort
	if field := v.Get(ParamSortField); field != "" && toSet(opts.SortFields)[field] {
		dir := SortAsc
		if strings.EqualFold(v.Get(ParamSortDir), string(SortDesc)) {
			dir = SortDesc
		}
		q.Sort = &Sort{Field: field, Direction: dir}
	}
	return q, nil
}

// IsInvalidParam reports whether err came from a malformed list parameter.
func IsInvalidParam(err error) bool {
	return errors.Is(err, errInvalidParam)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
