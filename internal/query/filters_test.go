package query

import (
	"strings"
	"testing"

	"sporeless-reporting/internal/catalog"
	"sporeless-reporting/internal/report"
)

func compileFilter(t *testing.T, f report.Filter) (string, []any) {
	t.Helper()
	pb := &paramBuilder{}
	clause, err := buildFilterClause(f, pb)
	if err != nil {
		t.Fatalf("build filter: %v", err)
	}
	return clause, pb.params
}

func TestFilterBetween(t *testing.T) {
	clause, params := compileFilter(t, report.Filter{
		Field: "growth_index", Operator: report.OpBetween, Value: "10,50",
	})
	if clause != "growth_index BETWEEN $1 AND $2" {
		t.Fatalf("unexpected clause %q", clause)
	}
	if len(params) != 2 || params[0] != float64(10) || params[1] != float64(50) {
		t.Fatalf("unexpected params %v", params)
	}
}

func TestFilterBetweenArray(t *testing.T) {
	clause, params := compileFilter(t, report.Filter{
		Field: "growth_index", Operator: report.OpBetween, Value: []any{float64(5), float64(15)},
	})
	if clause != "growth_index BETWEEN $1 AND $2" {
		t.Fatalf("unexpected clause %q", clause)
	}
	if params[0] != float64(5) || params[1] != float64(15) {
		t.Fatalf("unexpected params %v", params)
	}
}

func TestFilterContains(t *testing.T) {
	clause, params := compileFilter(t, report.Filter{
		Field: "petri_code", Operator: report.OpContains, Value: "P1",
	})
	if clause != "petri_code ILIKE $1" {
		t.Fatalf("unexpected clause %q", clause)
	}
	if params[0] != "%P1%" {
		t.Fatalf("unexpected params %v", params)
	}
}

func TestFilterStartsEndsWith(t *testing.T) {
	clause, params := compileFilter(t, report.Filter{
		Field: "petri_code", Operator: report.OpStartsWith, Value: "P",
	})
	if clause != "petri_code ILIKE $1" || params[0] != "P%" {
		t.Fatalf("unexpected starts_with: %q %v", clause, params)
	}

	clause, params = compileFilter(t, report.Filter{
		Field: "petri_code", Operator: report.OpEndsWith, Value: "1",
	})
	if clause != "petri_code ILIKE $1" || params[0] != "%1" {
		t.Fatalf("unexpected ends_with: %q %v", clause, params)
	}
}

func TestFilterValueCoercion(t *testing.T) {
	// Numeric-looking strings bind as numbers.
	_, params := compileFilter(t, report.Filter{
		Field: "growth_index", Operator: report.OpGreaterThan, Value: "42",
	})
	if params[0] != float64(42) {
		t.Fatalf("expected numeric bind, got %T %v", params[0], params[0])
	}

	// Everything else binds as text; nothing is interpolated.
	clause, params := compileFilter(t, report.Filter{
		Field: "weather", Operator: report.OpEquals, Value: "Clear'); DROP TABLE sites;--",
	})
	if strings.Contains(clause, "DROP") {
		t.Fatalf("value leaked into SQL: %q", clause)
	}
	if params[0] != "Clear'); DROP TABLE sites;--" {
		t.Fatalf("unexpected param %v", params[0])
	}
}

func TestFilterInOperators(t *testing.T) {
	clause, params := compileFilter(t, report.Filter{
		Field: "placement", Operator: report.OpIn, Value: []any{"P1", "P2"},
	})
	if clause != "placement = ANY($1)" {
		t.Fatalf("unexpected clause %q", clause)
	}
	list, ok := params[0].([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("unexpected param %v", params[0])
	}

	// Comma-separated strings split into members.
	clause, params = compileFilter(t, report.Filter{
		Field: "placement", Operator: report.OpNotIn, Value: "P1, P2, P3",
	})
	if clause != "placement != ALL($1)" {
		t.Fatalf("unexpected clause %q", clause)
	}
	list = params[0].([]any)
	if len(list) != 3 || list[1] != "P2" {
		t.Fatalf("unexpected members %v", list)
	}
}

func TestFilterNullAndEmpty(t *testing.T) {
	cases := map[string]string{
		report.OpIsNull:     "notes IS NULL",
		report.OpIsNotNull:  "notes IS NOT NULL",
		report.OpIsEmpty:    "(notes IS NULL OR notes = '')",
		report.OpIsNotEmpty: "(notes IS NOT NULL AND notes != '')",
	}
	for op, want := range cases {
		clause, params := compileFilter(t, report.Filter{Field: "notes", Operator: op})
		if clause != want {
			t.Fatalf("%s: expected %q, got %q", op, want, clause)
		}
		if len(params) != 0 {
			t.Fatalf("%s: expected no params, got %v", op, params)
		}
	}
}

func TestFilterRange(t *testing.T) {
	clause, params := compileFilter(t, report.Filter{
		Field: "flow_rate", Operator: report.OpRange, Value: "1.5,9",
	})
	if clause != "(flow_rate >= $1 AND flow_rate <= $2)" {
		t.Fatalf("unexpected clause %q", clause)
	}
	if params[0] != 1.5 || params[1] != float64(9) {
		t.Fatalf("unexpected params %v", params)
	}
}

func TestFilterCrossTableQualification(t *testing.T) {
	clause, _ := compileFilter(t, report.Filter{
		Field: "program_name", Operator: report.OpEquals, Value: "Pilot A",
		TargetTable: "pilot_programs",
	})
	if clause != "pilot_programs.program_name = $1" {
		t.Fatalf("unexpected clause %q", clause)
	}
}

func TestFilterUnknownOperator(t *testing.T) {
	pb := &paramBuilder{}
	if _, err := buildFilterClause(report.Filter{Field: "x", Operator: "regex"}, pb); err == nil {
		t.Fatal("expected error for unknown operator")
	}
}

func TestBuildWhereGroups(t *testing.T) {
	cfg := &report.ReportConfig{
		FilterGroups: []report.FilterGroup{{
			ID:    "g1",
			Logic: report.LogicOr,
			Filters: []report.Filter{
				{ID: "f1", Field: "weather", Operator: report.OpEquals, Value: "Clear"},
				{ID: "f2", Field: "weather", Operator: report.OpEquals, Value: "Cloudy"},
			},
		}},
		Filters: []report.Filter{
			// Already in the group: must not compile twice.
			{ID: "f1", Field: "weather", Operator: report.OpEquals, Value: "Clear"},
			{ID: "f3", Field: "growth_index", Operator: report.OpGreaterThan, Value: "10"},
		},
	}
	pb := &paramBuilder{}
	clauses, err := buildWhere(cfg, pb)
	if err != nil {
		t.Fatalf("buildWhere: %v", err)
	}
	if len(clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d: %v", len(clauses), clauses)
	}
	if clauses[0] != "(weather = $1 OR weather = $2)" {
		t.Fatalf("unexpected group clause %q", clauses[0])
	}
	if clauses[1] != "growth_index > $3" {
		t.Fatalf("unexpected ungrouped clause %q", clauses[1])
	}
	if len(pb.params) != 3 {
		t.Fatalf("expected 3 params, got %v", pb.params)
	}
}

func TestFilterNonFiniteNumericStrings(t *testing.T) {
	// "inf" and "nan" parse as floats but have no numeric column
	// encoding, so they bind as text.
	for _, v := range []string{"inf", "-inf", "nan", "NaN", "Infinity"} {
		_, params := compileFilter(t, report.Filter{
			Field: "growth_index", Operator: report.OpEquals, Value: v,
		})
		if params[0] != v {
			t.Fatalf("%s: expected text bind, got %T %v", v, params[0], params[0])
		}
	}

	_, params := compileFilter(t, report.Filter{
		Field: "growth_index", Operator: report.OpEquals, Value: "42.5",
	})
	if params[0] != 42.5 {
		t.Fatalf("expected numeric bind, got %T %v", params[0], params[0])
	}
}

func TestFilterRejectsNonIdentifierField(t *testing.T) {
	pb := &paramBuilder{}
	_, err := buildFilterClause(report.Filter{
		Field:    "growth_index = growth_index OR (SELECT pg_sleep(10)) IS NULL --",
		Operator: report.OpIsNotNull,
	}, pb)
	if err == nil {
		t.Fatal("expected error for field that is not a bare identifier")
	}

	_, err = buildFilterClause(report.Filter{
		Field: "site_name", Operator: report.OpEquals, Value: "North",
		DataSource: "sites; DROP TABLE sites",
	}, pb)
	if err == nil {
		t.Fatal("expected error for qualifier that is not a bare identifier")
	}

	_, err = buildFilterClause(report.Filter{
		Field: "start_date", Operator: report.OpIsNotNull,
		TargetTable: "pilot_programs p CROSS JOIN sites",
	}, pb)
	if err == nil {
		t.Fatal("expected error for target table that is not a bare identifier")
	}
}

func TestBuildWhereRejectsUnselectedSource(t *testing.T) {
	cfg := &report.ReportConfig{
		DataSources: []catalog.DataSource{{ID: catalog.SourcePetriObservations}},
		Filters: []report.Filter{{
			Field: "site_name", Operator: report.OpEquals, Value: "North",
			DataSource: catalog.SourceSites,
		}},
	}
	pb := &paramBuilder{}
	if _, err := buildWhere(cfg, pb); err == nil {
		t.Fatal("expected error for filter naming unselected source")
	}
}
