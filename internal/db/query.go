package db

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Collections readable by the site
const (
	CollectionBranches    = "branches"
	CollectionEvents      = "events"
	CollectionTeamMembers = "team_members"
	CollectionData        = "data"
)

// columns lists the selectable columns per collection, in select order.
var columns = map[string][]string{
	CollectionBranches:    {"id", "city", "slug", "description", "image", "color", "chapters", "rds", "featured"},
	CollectionEvents:      {"id", "title", "description", "branch_id", "images_folder"},
	CollectionTeamMembers: {"id", "name", "position", "category", "order_rank", "image", "description", "social", "university"},
	CollectionData:        {"section", "file_ids"},
}

// Row is one record keyed by column name.
type Row map[string]any

// Eq is an equality predicate.
type Eq struct {
	Field string
	Value any
}

// Order sorts by one field.
type Order struct {
	Field string
	Desc  bool
}

// Query describes a read against one collection.
type Query struct {
	Collection string
	Filter     *Eq
	Order      *Order
}

// Validate checks the collection and field names against the allow-list.
func (q Query) Validate() error {
	cols, ok := columns[q.Collection]
	if !ok {
		return fmt.Errorf("%w: unknown collection %q", ErrInvalidQuery, q.Collection)
	}
	if q.Filter != nil && !hasColumn(cols, q.Filter.Field) {
		return fmt.Errorf("%w: unknown filter field %q on %s", ErrInvalidQuery, q.Filter.Field, q.Collection)
	}
	if q.Order != nil && !hasColumn(cols, q.Order.Field) {
		return fmt.Errorf("%w: unknown order field %q on %s", ErrInvalidQuery, q.Order.Field, q.Collection)
	}
	return nil
}

// SQL renders the query as a parameterised SELECT.
func (q Query) SQL() (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	cols := columns[q.Collection]
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(quoted, ", "), pgx.Identifier{q.Collection}.Sanitize())

	var args []any
	if q.Filter != nil {
		args = append(args, q.Filter.Value)
		fmt.Fprintf(&b, " WHERE %s = $1", pgx.Identifier{q.Filter.Field}.Sanitize())
	}
	if q.Order != nil {
		dir := "ASC"
		if q.Order.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s", pgx.Identifier{q.Order.Field}.Sanitize(), dir)
	}
	return b.String(), args, nil
}

func hasColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}
