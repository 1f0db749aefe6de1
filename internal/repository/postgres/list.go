package postgres

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jwalitptl/optica-admin/pkg/collection"
)

// ListSpec describes how one resource is listed. Every map goes from the
// public parameter name to the SQL expression it reads, so only whitelisted
// names ever reach the query text.
type ListSpec struct {
	Select  string
	From    string
	Search  map[string]string
	Filters map[string]string
	Sorts   map[string]string
	// Order is the ORDER BY used when no sort is requested.
	Order string
}

// ListQuery is a built page query plus its matching count query.
type ListQuery struct {
	SQL       string
	Args      []interface{}
	CountSQL  string
	CountArgs []interface{}
}

// Options returns parse options that accept exactly the declared columns.
func (s ListSpec) Options() collection.ParseOptions {
	return collection.ParseOptions{
		SearchFields: keys(s.Search),
		Filters:      keys(s.Filters),
		SortFields:   keys(s.Sorts),
	}
}

// Build renders the page and count queries for q. Unknown search fields,
// filters and sort fields are ignored.
func (s ListSpec) Build(q collection.Query) ListQuery {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Search.Active() {
		fields := q.Search.Fields
		if len(fields) == 0 {
			fields = keys(s.Search)
		}
		var exprs []string
		var placeholder string
		for _, f := range fields {
			expr, ok := s.Search[f]
			if !ok {
				continue
			}
			if placeholder == "" {
				placeholder = arg("%" + escapeLike(strings.TrimSpace(q.Search.Term)) + "%")
			}
			exprs = append(exprs, fmt.Sprintf("%s ILIKE %s", expr, placeholder))
		}
		if len(exprs) > 0 {
			join := " OR "
			if q.Search.Operator == collection.OperatorAnd {
				join = " AND "
			}
			where = append(where, "("+strings.Join(exprs, join)+")")
		}
	}

	for _, key := range q.Filters.Keys() {
		expr, ok := s.Filters[key]
		if !ok {
			continue
		}
		value, set := q.Filters.Encoded(key)
		if !set {
			continue
		}
		where = append(where, fmt.Sprintf("%s = %s", expr, arg(value)))
	}

	from := " FROM " + s.From
	if len(where) > 0 {
		from += " WHERE " + strings.Join(where, " AND ")
	}

	order := s.Order
	if q.Sort != nil {
		if expr, ok := s.Sorts[q.Sort.Field]; ok {
			dir := "ASC"
			if q.Sort.Direction == collection.SortDesc {
				dir = "DESC"
			}
			order = expr + " " + dir
		}
	}

	countArgs := append([]interface{}(nil), args...)
	perPage := q.PerPage
	if perPage < 1 {
		perPage = collection.DefaultPerPage
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	sqlText := "SELECT " + s.Select + from
	if order != "" {
		sqlText += " ORDER BY " + order
	}
	sqlText += fmt.Sprintf(" LIMIT %s OFFSET %s", arg(perPage), arg((page-1)*perPage))

	return ListQuery{
		SQL:       sqlText,
		Args:      args,
		CountSQL:  "SELECT COUNT(*)" + from,
		CountArgs: countArgs,
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
