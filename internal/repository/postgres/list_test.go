package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/optica-admin/pkg/collection"
)

func TestBuildDefaultPage(t *testing.T) {
	lq := BrandList.Build(collection.NewQuery())

	assert.Equal(t,
		"SELECT id, name, description, status, created_at, updated_at FROM brands ORDER BY name ASC, id ASC LIMIT $1 OFFSET $2",
		lq.SQL)
	assert.Equal(t, []interface{}{15, 0}, lq.Args)
	assert.Equal(t, "SELECT COUNT(*) FROM brands", lq.CountSQL)
	assert.Empty(t, lq.CountArgs)
}

func TestBuildMultiFieldSearchSharesOnePlaceholder(t *testing.T) {
	q := collection.NewQuery()
	q.Page = 3
	q.Search = collection.Search{Term: "gar", Fields: []string{"first_name", "email", "unknown"}, Operator: collection.OperatorOr}
	q.Filters["status"] = "active"
	q.Filters["gender"] = collection.FilterAll

	lq := PatientList.Build(q)

	assert.Contains(t, lq.SQL, "WHERE (first_name ILIKE $1 OR email ILIKE $1) AND status = $2")
	assert.NotContains(t, lq.SQL, "unknown")
	assert.NotContains(t, lq.SQL, "gender =")
	assert.Equal(t, []interface{}{"%gar%", "active", 15, 30}, lq.Args)
	assert.Equal(t, []interface{}{"%gar%", "active"}, lq.CountArgs)
	assert.Equal(t, "SELECT COUNT(*) FROM patients WHERE (first_name ILIKE $1 OR email ILIKE $1) AND status = $2", lq.CountSQL)
}

func TestBuildAndOperator(t *testing.T) {
	q := collection.NewQuery()
	q.Search = collection.Search{Term: "ray", Fields: []string{"name", "brand"}, Operator: collection.OperatorAnd}

	lq := ProductList.Build(q)
	assert.Contains(t, lq.SQL, "(p.name ILIKE $1 AND b.name ILIKE $1)")
}

func TestBuildPlainSearchUsesEverySearchableColumn(t *testing.T) {
	q := collection.NewQuery()
	q.Search = collection.Search{Term: "acme"}

	lq := SupplierList.Build(q)
	assert.Contains(t, lq.SQL, "(COALESCE(contact_name, '') ILIKE $1 OR COALESCE(email, '') ILIKE $1 OR name ILIKE $1 OR COALESCE(phone, '') ILIKE $1)")
}

func TestBuildEscapesLikeWildcards(t *testing.T) {
	q := collection.NewQuery()
	q.Search = collection.Search{Term: `50%_off\`, Fields: []string{"name"}}

	lq := BrandList.Build(q)
	assert.Equal(t, `%50\%\_off\\%`, lq.Args[0])
}

func TestBuildSort(t *testing.T) {
	q := collection.NewQuery()
	q.Sort = &collection.Sort{Field: "price", Direction: collection.SortDesc}
	assert.Contains(t, ProductList.Build(q).SQL, "ORDER BY p.price DESC LIMIT")

	q.Sort = &collection.Sort{Field: "password_hash", Direction: collection.SortAsc}
	assert.Contains(t, ProductList.Build(q).SQL, "ORDER BY p.name ASC, p.id ASC LIMIT")
}

func TestOptionsRoundTripThroughParseQuery(t *testing.T) {
	q := collection.NewQuery()
	q.Search = collection.Search{Term: "ana", Fields: []string{"email", "last_name"}, Operator: collection.OperatorOr}
	q.Filters["status"] = "inactive"
	q.Sort = &collection.Sort{Field: "last_name", Direction: collection.SortAsc}

	values, err := q.Values()
	assert.NoError(t, err)
	values.Add("role", "admin")

	parsed, err := collection.ParseQuery(values, PatientList.Options())
	assert.NoError(t, err)
	assert.Equal(t, PatientList.Build(q), PatientList.Build(parsed))
}
