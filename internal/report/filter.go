package report

// Filter operators. The vocabulary is fixed; builders and stored report
// configurations both depend on these exact strings.
const (
	OpEquals             = "equals"
	OpNotEquals          = "not_equals"
	OpGreaterThan        = "greater_than"
	OpLessThan           = "less_than"
	OpGreaterThanOrEqual = "greater_than_or_equal"
	OpLessThanOrEqual    = "less_than_or_equal"
	OpContains           = "contains"
	OpNotContains        = "not_contains"
	OpStartsWith         = "starts_with"
	OpEndsWith           = "ends_with"
	OpIn                 = "in"
	OpNotIn              = "not_in"
	OpIsNull             = "is_null"
	OpIsNotNull          = "is_not_null"
	OpIsEmpty            = "is_empty"
	OpIsNotEmpty         = "is_not_empty"
	OpBetween            = "between"
	OpRange              = "range"
)

// Group logic values.
const (
	LogicAnd = "and"
	LogicOr  = "or"
)

var validOperators = map[string]bool{
	OpEquals: true, OpNotEquals: true,
	OpGreaterThan: true, OpLessThan: true,
	OpGreaterThanOrEqual: true, OpLessThanOrEqual: true,
	OpContains: true, OpNotContains: true,
	OpStartsWith: true, OpEndsWith: true,
	OpIn: true, OpNotIn: true,
	OpIsNull: true, OpIsNotNull: true,
	OpIsEmpty: true, OpIsNotEmpty: true,
	OpBetween: true, OpRange: true,
}

// ValidOperator reports whether op is a recognized filter operator.
func ValidOperator(op string) bool {
	return validOperators[op]
}

// JoinStep is one hop of a relationship path between two tables.
type JoinStep struct {
	FromTable    string `json:"fromTable"`
	ToTable      string `json:"toTable"`
	JoinField    string `json:"joinField"`
	ForeignField string `json:"foreignField"`
	JoinType     string `json:"joinType"` // INNER or LEFT
}

// Filter is one predicate over a field. Value is left loosely typed: the
// query compiler coerces scalars, comma-separated strings, and arrays as the
// operator requires.
type Filter struct {
	ID       string `json:"id,omitempty"`
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
	Type     string `json:"type,omitempty"`

	// Cross-table filters carry the table they target and the join path
	// from the primary source.
	DataSource       string     `json:"dataSource,omitempty"`
	TargetTable      string     `json:"targetTable,omitempty"`
	RelationshipPath []JoinStep `json:"relationshipPath,omitempty"`
}

// IsCrossTable reports whether the filter targets a table other than the
// primary source and therefore needs its relationship path joined in.
func (f Filter) IsCrossTable() bool {
	return f.TargetTable != "" && len(f.RelationshipPath) > 0
}

// FilterGroup combines member filters with a single logic operator. Groups
// and ungrouped filters are AND-ed together at the top level.
type FilterGroup struct {
	ID      string   `json:"id,omitempty"`
	Logic   string   `json:"logic"`
	Filters []Filter `json:"filters"`
}

// FilterField is one filterable field offered to report builders, resolved
// either from live schema introspection or the static catalog.
type FilterField struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	DisplayName      string     `json:"displayName"`
	DataType         string     `json:"dataType"`
	Source           string     `json:"source"`
	Field            string     `json:"field"`
	TargetTable      string     `json:"targetTable,omitempty"`
	RelationshipPath []JoinStep `json:"relationshipPath,omitempty"`
	EnumValues       []string   `json:"enumValues,omitempty"`
}
