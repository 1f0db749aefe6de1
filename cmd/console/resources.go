package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/pkg/apiclient"
	"github.com/jwalitptl/optica-admin/pkg/collection"
	"github.com/jwalitptl/optica-admin/pkg/mutation"
	"github.com/jwalitptl/optica-admin/pkg/table"
)

var recordStatus = table.Dictionary{
	model.StatusActive:   {Label: "Active", Variant: table.VariantSuccess},
	model.StatusInactive: {Label: "Inactive", Variant: table.VariantDanger},
}

var discountStatus = table.Dictionary{
	string(model.DiscountStatusPending):  {Label: "Pending", Variant: table.VariantWarning},
	string(model.DiscountStatusApproved): {Label: "Approved", Variant: table.VariantSuccess},
	string(model.DiscountStatusRejected): {Label: "Rejected", Variant: table.VariantDanger},
}

// lookup lists the options of one filter, e.g. the brands of brand_id.
type lookup struct {
	filter string
	kind   string
}

// screen is one list page of the console.
type screen interface {
	Kind() string
	// List fetches q and renders the table, the pager and the filter options.
	List(ctx context.Context, q collection.Query) (string, error)
	// Watch keeps a view of q open and calls render after every applied change.
	Watch(ctx context.Context, q collection.Query, render func(string)) (refetch func(context.Context) error, closeFn func())
	Delete(ctx context.Context, id string) error
}

type listScreen[T any] struct {
	app     *app
	api     *apiclient.Resource[T]
	table   *table.Table[T]
	lookups []lookup
}

func (s *listScreen[T]) Kind() string { return s.api.Kind() }

func (s *listScreen[T]) newView(ctx context.Context, q collection.Query, onChange func(collection.State[T])) *collection.View[T] {
	zl := s.app.log.Zerolog()
	return collection.NewView[T](ctx, collection.Config[T]{
		Kind:     s.api.Kind(),
		Fetcher:  s.api,
		Cache:    s.app.cache,
		Initial:  q,
		OnChange: onChange,
		Logger:   &zl,
	})
}

func (s *listScreen[T]) render(st collection.State[T], options map[string][]string) string {
	var b strings.Builder
	switch {
	case st.SearchTooShort:
		b.WriteString("type at least 3 characters\n")
		return b.String()
	case st.Err != nil:
		fmt.Fprintf(&b, "Error: %s\n", st.Err.Message)
	}
	b.WriteString(s.table.Render(st.Page.Data))
	b.WriteString("\n")
	b.WriteString(table.PagerOf(st.Page).String())
	b.WriteString("\n")

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, strings.Join(options[k], ", "))
	}
	return b.String()
}

func (s *listScreen[T]) List(ctx context.Context, q collection.Query) (string, error) {
	view := s.newView(ctx, q, nil)
	defer view.Close()

	var (
		mu      sync.Mutex
		options = map[string][]string{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return view.Load(gctx)
	})
	for _, l := range s.lookups {
		l := l
		g.Go(func() error {
			opts, err := s.app.lookupOptions(gctx, l.kind)
			if err != nil {
				s.app.log.Warn("Lookup failed", "kind", l.kind, "error", err.Error())
				return nil
			}
			mu.Lock()
			options[l.filter] = opts
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return s.render(view.State(), options), nil
}

func (s *listScreen[T]) Watch(ctx context.Context, q collection.Query, render func(string)) (func(context.Context) error, func()) {
	view := s.newView(ctx, q, func(st collection.State[T]) {
		if st.Loading {
			return
		}
		render(s.render(st, nil))
	})
	return view.Invalidate, view.Close
}

func (s *listScreen[T]) Delete(ctx context.Context, id string) error {
	return s.dispatcher().Delete(ctx, id)
}

func (s *listScreen[T]) dispatcher() *mutation.Dispatcher[T] {
	zl := s.app.log.Zerolog()
	return mutation.New(mutation.Config[T]{
		Backend: s.api,
		Cache:   s.app.cache,
		Logger:  &zl,
	})
}

// option is the part of a lookup record shown next to a filter.
type option struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// lookupOptions returns "name (id)" entries of the active records of kind.
func (a *app) lookupOptions(ctx context.Context, kind string) ([]string, error) {
	q := collection.NewQuery()
	q.PerPage = collection.MaxPerPage
	q.Filters["status"] = model.StatusActive

	page, err := apiclient.NewResource[option](a.client, kind).Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(page.Data))
	for _, o := range page.Data {
		out = append(out, o.Name+" ("+strconv.FormatInt(o.ID, 10)+")")
	}
	return out, nil
}

func idOf(b model.Base) string {
	return strconv.FormatInt(b.ID, 10)
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// screens returns the list pages by resource name. discounts is an alias of
// discount-requests.
func (a *app) screens() map[string]screen {
	brands := &listScreen[model.Brand]{
		app: a,
		api: apiclient.NewResource[model.Brand](a.client, "brands"),
		table: table.New[model.Brand](
			table.TextColumn[model.Brand]{Title: "ID", Value: func(b model.Brand) string { return idOf(b.Base) }},
			table.TextColumn[model.Brand]{Title: "Name", Value: func(b model.Brand) string { return b.Name }},
			table.TextColumn[model.Brand]{Title: "Description", Value: func(b model.Brand) string { return optional(b.Description) }},
			table.StatusColumn[model.Brand]{Title: "Status", Value: func(b model.Brand) string { return b.Status }, Dictionary: recordStatus},
			table.DateColumn[model.Brand]{Title: "Created", Value: func(b model.Brand) time.Time { return b.CreatedAt }},
		),
	}
	categories := &listScreen[model.Category]{
		app: a,
		api: apiclient.NewResource[model.Category](a.client, "categories"),
		table: table.New[model.Category](
			table.TextColumn[model.Category]{Title: "ID", Value: func(c model.Category) string { return idOf(c.Base) }},
			table.TextColumn[model.Category]{Title: "Name", Value: func(c model.Category) string { return c.Name }},
			table.StatusColumn[model.Category]{Title: "Status", Value: func(c model.Category) string { return c.Status }, Dictionary: recordStatus},
		),
	}
	suppliers := &listScreen[model.Supplier]{
		app: a,
		api: apiclient.NewResource[model.Supplier](a.client, "suppliers"),
		table: table.New[model.Supplier](
			table.TextColumn[model.Supplier]{Title: "ID", Value: func(s model.Supplier) string { return idOf(s.Base) }},
			table.TextColumn[model.Supplier]{Title: "Name", Value: func(s model.Supplier) string { return s.Name }},
			table.TextColumn[model.Supplier]{Title: "Contact", Value: func(s model.Supplier) string { return optional(s.ContactName) }},
			table.TextColumn[model.Supplier]{Title: "Phone", Value: func(s model.Supplier) string { return optional(s.Phone) }},
			table.StatusColumn[model.Supplier]{Title: "Status", Value: func(s model.Supplier) string { return s.Status }, Dictionary: recordStatus},
		),
	}
	products := &listScreen[model.Product]{
		app: a,
		api: apiclient.NewResource[model.Product](a.client, "products"),
		table: table.New[model.Product](
			table.TextColumn[model.Product]{Title: "SKU", Value: func(p model.Product) string { return p.SKU }},
			table.TextColumn[model.Product]{Title: "Name", Value: func(p model.Product) string { return p.Name }},
			table.TextColumn[model.Product]{Title: "Brand", Value: func(p model.Product) string { return p.BrandName }},
			table.TextColumn[model.Product]{Title: "Category", Value: func(p model.Product) string { return p.CategoryName }},
			table.MoneyColumn[model.Product]{Title: "Price", Value: func(p model.Product) decimal.Decimal { return p.Price }},
			table.TextColumn[model.Product]{Title: "Stock", Value: func(p model.Product) string { return strconv.Itoa(p.Stock) }},
			table.StatusColumn[model.Product]{Title: "Status", Value: func(p model.Product) string { return p.Status }, Dictionary: recordStatus},
		),
		lookups: []lookup{{filter: "brand_id", kind: "brands"}, {filter: "category_id", kind: "categories"}},
	}
	patients := &listScreen[model.Patient]{
		app: a,
		api: apiclient.NewResource[model.Patient](a.client, "patients"),
		table: table.New[model.Patient](
			table.TextColumn[model.Patient]{Title: "ID", Value: func(p model.Patient) string { return idOf(p.Base) }},
			table.TextColumn[model.Patient]{Title: "Name", Value: func(p model.Patient) string { return p.FullName() }},
			table.TextColumn[model.Patient]{Title: "Identification", Value: func(p model.Patient) string { return p.Identification }},
			table.TextColumn[model.Patient]{Title: "Email", Value: func(p model.Patient) string { return p.Email }},
			table.TextColumn[model.Patient]{Title: "Phone", Value: func(p model.Patient) string { return p.Phone }},
			table.StatusColumn[model.Patient]{Title: "Status", Value: func(p model.Patient) string { return p.Status }, Dictionary: recordStatus},
		),
	}
	discounts := &listScreen[model.DiscountRequest]{
		app: a,
		api: apiclient.NewResource[model.DiscountRequest](a.client, "discount-requests"),
		table: table.New[model.DiscountRequest](
			table.TextColumn[model.DiscountRequest]{Title: "ID", Value: func(d model.DiscountRequest) string { return idOf(d.Base) }},
			table.TextColumn[model.DiscountRequest]{Title: "Patient", Value: func(d model.DiscountRequest) string { return d.PatientName }},
			table.TextColumn[model.DiscountRequest]{Title: "Discount", Value: func(d model.DiscountRequest) string { return d.Percentage.StringFixed(2) + "%" }},
			table.TextColumn[model.DiscountRequest]{Title: "Requested by", Value: func(d model.DiscountRequest) string { return d.RequestedBy }},
			table.StatusColumn[model.DiscountRequest]{Title: "Status", Value: func(d model.DiscountRequest) string { return string(d.Status) }, Dictionary: discountStatus},
			table.DateColumn[model.DiscountRequest]{Title: "Requested", Value: func(d model.DiscountRequest) time.Time { return d.CreatedAt }},
		),
	}

	return map[string]screen{
		"brands":            brands,
		"categories":        categories,
		"suppliers":         suppliers,
		"products":          products,
		"patients":          patients,
		"discount-requests": discounts,
		"discounts":         discounts,
	}
}

func (a *app) screen(name string) (screen, error) {
	s, ok := a.screens()[name]
	if !ok {
		var names []string
		for n := range a.screens() {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown resource %q (one of %s)", name, strings.Join(names, ", "))
	}
	return s, nil
}
