package repositories

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
)

var placeColumns = []any{
	"id", "title", "description", "country", "city", "county", "district",
	"image_paths", "area", "rooms", "beds", "wc", "price", "pets", "available",
	"category", "amenities", "features", "creator", "created_at", "updated_at",
}

// buildSearchQuery renders a place search. Every present filter becomes one
// predicate and all predicates are ANDed. Range bounds are exclusive.
func buildSearchQuery(filter models.PlaceFilter) (string, []any, error) {
	var where []exp.Expression

	if filter.Category != "" {
		where = append(where, goqu.C("category").Eq(filter.Category))
	}

	locations := []struct {
		column string
		values models.StringList
	}{
		{"country", filter.Country},
		{"city", filter.City},
		{"county", filter.County},
		{"district", filter.District},
	}
	for _, loc := range locations {
		if len(loc.values) > 0 {
			where = append(where, goqu.C(loc.column).In([]string(loc.values)))
		}
	}

	where = appendRange(where, "area", filter.Area)
	where = appendRange(where, "price", filter.Price)

	if filter.Rooms != nil {
		where = append(where, goqu.C("rooms").Eq(*filter.Rooms))
	}
	if filter.Beds != nil {
		where = append(where, goqu.C("beds").Eq(*filter.Beds))
	}
	if filter.WC != nil {
		where = append(where, goqu.C("wc").Eq(*filter.WC))
	}
	if filter.Pets != nil {
		where = append(where, goqu.C("pets").Eq(*filter.Pets))
	}
	if filter.Available != nil {
		where = append(where, goqu.C("available").Eq(*filter.Available))
	}

	if len(filter.Amenities) > 0 {
		where = append(where, goqu.L("amenities @> ?", pq.StringArray(filter.Amenities)))
	}
	if len(filter.Features) > 0 {
		where = append(where, goqu.L("features @> ?", pq.StringArray(filter.Features)))
	}

	ds := dialect.From("places").Prepared(true).
		Select(placeColumns...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Asc())
	if len(where) > 0 {
		ds = ds.Where(where...)
	}
	if filter.Limit > 0 {
		ds = ds.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		ds = ds.Offset(filter.Offset)
	}

	return ds.ToSQL()
}

func appendRange(where []exp.Expression, column string, r *models.Range) []exp.Expression {
	if r == nil {
		return where
	}
	if r.Min != nil {
		where = append(where, goqu.C(column).Gt(*r.Min))
	}
	if r.Max != nil {
		where = append(where, goqu.C(column).Lt(*r.Max))
	}
	return where
}
