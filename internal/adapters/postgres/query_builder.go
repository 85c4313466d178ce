package postgres

import (
	"fmt"
	"strings"

	"github.com/jian131/agent-bds/internal/core/domain"
)

// queryBuilder collects WHERE conditions with numbered placeholders so
// filter code never concatenates user input into SQL.
type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId:      1,
		conditions: make([]string, 0, 8),
		args:       make([]interface{}, 0, 8),
	}
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

// AddStringFilter adds an exact match when the value is non-empty.
func (qb *queryBuilder) AddStringFilter(fieldName string, value string) {
	if value != "" {
		qb.addCondition("%s = $%d", fieldName, value)
	}
}

// AddInt64Filter adds range bounds for whichever side is set.
func (qb *queryBuilder) AddInt64Filter(fieldName string, min *int64, max *int64) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

// AddFloatFilter adds range bounds for whichever side is set.
func (qb *queryBuilder) AddFloatFilter(fieldName string, min *float64, max *float64) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

// build renders the WHERE clause, empty when no condition was added.
func (qb *queryBuilder) build() (string, []interface{}) {
	if len(qb.conditions) == 0 {
		return "", qb.args
	}
	return "WHERE " + strings.Join(qb.conditions, " AND "), qb.args
}

// applyListingFilters maps a domain filter onto listings columns. Zero
// values are not applied; an unset status means any status.
func applyListingFilters(filter domain.ListingFilter) (string, []interface{}) {
	qb := newQueryBuilder()

	qb.AddStringFilter("city", filter.City)
	qb.AddStringFilter("district", filter.District)
	qb.AddStringFilter("source_platform", filter.Platform)
	qb.AddStringFilter("property_type", filter.PropertyType)
	qb.AddStringFilter("status", filter.Status)
	qb.AddInt64Filter("price_vnd", filter.PriceMin, filter.PriceMax)
	qb.AddFloatFilter("area_m2", filter.AreaMin, filter.AreaMax)

	return qb.build()
}
