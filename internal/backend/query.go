package backend

// Collection names a record collection of the hosted data store.
type Collection string

const (
	Matches      Collection = "matches"
	Profiles     Collection = "profiles"
	Participants Collection = "match_participants"
)

// Column names a column of a collection.
type Column string

const (
	ColumnID        Column = "id"
	ColumnUserID    Column = "user_id"
	ColumnMatchID   Column = "match_id"
	ColumnMatchTime Column = "match_time"
	ColumnSport     Column = "sport"
	ColumnLocation  Column = "location"
	ColumnCreatedAt Column = "created_at"
)

type FilterOp string

const (
	OpEq FilterOp = "eq"
	OpIn FilterOp = "in"
)

// Filter is one equality or membership clause. Values has exactly one element
// for OpEq.
type Filter struct {
	Column Column
	Op     FilterOp
	Values []string
}

type Direction int

const (
	Ascending Direction = iota
	Descending
)

type Order struct {
	Column    Column
	Direction Direction
}

// Query is an immutable description of a select against one collection.
// Every builder method returns a modified copy.
type Query struct {
	Collection Collection
	Filters    []Filter
	Order      *Order
}

func From(collection Collection) Query {
	return Query{Collection: collection}
}

func (q Query) Eq(column Column, value string) Query {
	return q.with(Filter{Column: column, Op: OpEq, Values: []string{value}})
}

// In matches rows whose column is one of values. An empty values list
// matches nothing.
func (q Query) In(column Column, values []string) Query {
	copied := make([]string, len(values))
	copy(copied, values)
	return q.with(Filter{Column: column, Op: OpIn, Values: copied})
}

func (q Query) OrderBy(column Column, direction Direction) Query {
	q.Filters = cloneFilters(q.Filters)
	q.Order = &Order{Column: column, Direction: direction}
	return q
}

func (q Query) with(filter Filter) Query {
	filters := cloneFilters(q.Filters)
	q.Filters = append(filters, filter)
	if q.Order != nil {
		order := *q.Order
		q.Order = &order
	}
	return q
}

func cloneFilters(filters []Filter) []Filter {
	cloned := make([]Filter, len(filters), len(filters)+1)
	copy(cloned, filters)
	return cloned
}
