package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/optica-admin/pkg/collection"
)

type listFlags struct {
	search  string
	fields  []string
	op      string
	filters []string
	page    int
	perPage int
	sort    string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "free-text search term")
	cmd.Flags().StringSliceVar(&f.fields, "fields", nil, "columns the search term is matched against")
	cmd.Flags().StringVar(&f.op, "op", string(collection.OperatorOr), "how field matches combine (or|and)")
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "filter as key=value, repeatable")
	cmd.Flags().IntVarP(&f.page, "page", "p", collection.DefaultPage, "page number")
	cmd.Flags().IntVar(&f.perPage, "per-page", 0, "rows per page")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort as field or field:desc")
}

// query turns the flags into a collection query.
func (f *listFlags) query(defaultPerPage int) (collection.Query, error) {
	q := collection.NewQuery()
	q.Page = f.page
	q.PerPage = defaultPerPage
	if f.perPage > 0 {
		q.PerPage = f.perPage
	}
	if q.PerPage > collection.MaxPerPage {
		q.PerPage = collection.MaxPerPage
	}

	q.Search = collection.Search{Term: f.search, Fields: f.fields}
	switch op := collection.Operator(strings.ToLower(f.op)); op {
	case collection.OperatorOr, collection.OperatorAnd:
		q.Search.Operator = op
	default:
		return q, fmt.Errorf("invalid --op %q: want or|and", f.op)
	}

	for _, raw := range f.filters {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return q, fmt.Errorf("invalid --filter %q: want key=value", raw)
		}
		q.Filters[key] = strings.TrimSpace(value)
	}

	if f.sort != "" {
		field, dir, _ := strings.Cut(f.sort, ":")
		s := &collection.Sort{Field: field, Direction: collection.SortAsc}
		if strings.EqualFold(dir, string(collection.SortDesc)) {
			s.Direction = collection.SortDesc
		}
		q.Sort = s
	}
	return q, nil
}

func newListCmd(a *app) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List a collection as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.screen(args[0])
			if err != nil {
				return err
			}
			q, err := flags.query(a.perPage())
			if err != nil {
				return err
			}
			if q.Search.TooShort() {
				fmt.Fprintln(a.out, "type at least 3 characters")
				return nil
			}

			out, err := s.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, out)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.screen(args[0])
			if err != nil {
				return err
			}
			if err := s.Delete(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s deleted\n", s.Kind(), args[1])
			return nil
		},
	}
}
