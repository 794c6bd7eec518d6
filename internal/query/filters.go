package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"sporeless-reporting/internal/report"
)

// coerceScalar converts a filter value to its bind type. Numeric-looking
// strings bind as numbers so Postgres compares them numerically; everything
// else binds as text. "inf" and "nan" parse as floats but have no numeric
// column encoding, so they stay text. Values are never interpolated into
// the SQL.
func coerceScalar(v any) any {
	switch val := v.(type) {
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil &&
			!math.IsInf(n, 0) && !math.IsNaN(n) {
			return n
		}
		return val
	case float64, float32, int, int32, int64, bool, nil:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// listValues expands an in/not_in value into its members: arrays pass
// through, comma-separated strings split.
func listValues(v any) []any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = coerceScalar(item)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = coerceScalar(item)
		}
		return out
	case string:
		parts := strings.Split(val, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = coerceScalar(strings.TrimSpace(p))
		}
		return out
	default:
		return []any{coerceScalar(v)}
	}
}

// rangeValues expands a between/range value into its two bounds. A "a,b"
// string or a 2-element array both work; anything else reports false.
func rangeValues(v any) (any, any, bool) {
	switch val := v.(type) {
	case string:
		parts := strings.SplitN(val, ",", 2)
		if len(parts) != 2 {
			return nil, nil, false
		}
		return coerceScalar(strings.TrimSpace(parts[0])), coerceScalar(strings.TrimSpace(parts[1])), true
	case []any:
		if len(val) != 2 {
			return nil, nil, false
		}
		return coerceScalar(val[0]), coerceScalar(val[1]), true
	case []string:
		if len(val) != 2 {
			return nil, nil, false
		}
		return coerceScalar(val[0]), coerceScalar(val[1]), true
	default:
		return nil, nil, false
	}
}

// buildFilterClause compiles one filter into a parameterized predicate.
// qualifier prefixes the field with its owning table when set. Identifier
// checks here are a backstop; Validate rejects these earlier with field
// lists in hand.
func buildFilterClause(f report.Filter, pb *paramBuilder) (string, error) {
	if !report.ValidIdentifier(f.Field) {
		return "", fmt.Errorf("invalid filter field %q", f.Field)
	}
	field := f.Field
	if f.TargetTable != "" {
		if !report.ValidIdentifier(f.TargetTable) {
			return "", fmt.Errorf("invalid filter table %q", f.TargetTable)
		}
		field = f.TargetTable + "." + f.Field
	} else if f.DataSource != "" {
		if !report.ValidIdentifier(f.DataSource) {
			return "", fmt.Errorf("invalid filter source %q", f.DataSource)
		}
		field = f.DataSource + "." + f.Field
	}

	switch f.Operator {
	case report.OpEquals:
		return fmt.Sprintf("%s = %s", field, pb.Add(coerceScalar(f.Value))), nil
	case report.OpNotEquals:
		return fmt.Sprintf("%s != %s", field, pb.Add(coerceScalar(f.Value))), nil
	case report.OpGreaterThan:
		return fmt.Sprintf("%s > %s", field, pb.Add(coerceScalar(f.Value))), nil
	case report.OpLessThan:
		return fmt.Sprintf("%s < %s", field, pb.Add(coerceScalar(f.Value))), nil
	case report.OpGreaterThanOrEqual:
		return fmt.Sprintf("%s >= %s", field, pb.Add(coerceScalar(f.Value))), nil
	case report.OpLessThanOrEqual:
		return fmt.Sprintf("%s <= %s", field, pb.Add(coerceScalar(f.Value))), nil
	case report.OpContains:
		return fmt.Sprintf("%s ILIKE %s", field, pb.Add(fmt.Sprintf("%%%v%%", f.Value))), nil
	case report.OpNotContains:
		return fmt.Sprintf("%s NOT ILIKE %s", field, pb.Add(fmt.Sprintf("%%%v%%", f.Value))), nil
	case report.OpStartsWith:
		return fmt.Sprintf("%s ILIKE %s", field, pb.Add(fmt.Sprintf("%v%%", f.Value))), nil
	case report.OpEndsWith:
		return fmt.Sprintf("%s ILIKE %s", field, pb.Add(fmt.Sprintf("%%%v", f.Value))), nil
	case report.OpIn:
		return fmt.Sprintf("%s = ANY(%s)", field, pb.Add(listValues(f.Value))), nil
	case report.OpNotIn:
		return fmt.Sprintf("%s != ALL(%s)", field, pb.Add(listValues(f.Value))), nil
	case report.OpIsNull:
		return fmt.Sprintf("%s IS NULL", field), nil
	case report.OpIsNotNull:
		return fmt.Sprintf("%s IS NOT NULL", field), nil
	case report.OpIsEmpty:
		return fmt.Sprintf("(%s IS NULL OR %s = '')", field, field), nil
	case report.OpIsNotEmpty:
		return fmt.Sprintf("(%s IS NOT NULL AND %s != '')", field, field), nil
	case report.OpBetween:
		lo, hi, ok := rangeValues(f.Value)
		if !ok {
			return fmt.Sprintf("%s = %s", field, pb.Add(coerceScalar(f.Value))), nil
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", field, pb.Add(lo), pb.Add(hi)), nil
	case report.OpRange:
		lo, hi, ok := rangeValues(f.Value)
		if !ok {
			return fmt.Sprintf("%s = %s", field, pb.Add(coerceScalar(f.Value))), nil
		}
		return fmt.Sprintf("(%s >= %s AND %s <= %s)", field, pb.Add(lo), field, pb.Add(hi)), nil
	default:
		return "", fmt.Errorf("unknown filter operator %q", f.Operator)
	}
}

// buildWhere compiles filter groups and ungrouped filters. Each group is
// parenthesized and joined with its own logic; groups and ungrouped filters
// combine with AND.
func buildWhere(cfg *report.ReportConfig, pb *paramBuilder) ([]string, error) {
	var clauses []string

	selected := make(map[string]bool, len(cfg.DataSources))
	for _, s := range cfg.DataSources {
		selected[s.ID] = true
	}
	// A source-qualified filter may only name a selected source: selected
	// sources are always joined, so the qualifier never dangles.
	checkSource := func(f report.Filter) error {
		if f.TargetTable == "" && f.DataSource != "" && !selected[f.DataSource] {
			return fmt.Errorf("filter on %q references unselected source %q", f.Field, f.DataSource)
		}
		return nil
	}

	grouped := make(map[string]bool)
	for _, g := range cfg.FilterGroups {
		if len(g.Filters) == 0 {
			continue
		}
		sep := " AND "
		if g.Logic == report.LogicOr {
			sep = " OR "
		}
		parts := make([]string, 0, len(g.Filters))
		for _, f := range g.Filters {
			if err := checkSource(f); err != nil {
				return nil, err
			}
			clause, err := buildFilterClause(f, pb)
			if err != nil {
				return nil, err
			}
			parts = append(parts, clause)
			if f.ID != "" {
				grouped[f.ID] = true
			}
		}
		clauses = append(clauses, "("+strings.Join(parts, sep)+")")
	}

	for _, f := range cfg.Filters {
		if f.ID != "" && grouped[f.ID] {
			continue
		}
		if err := checkSource(f); err != nil {
			return nil, err
		}
		clause, err := buildFilterClause(f, pb)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}

	return clauses, nil
}
