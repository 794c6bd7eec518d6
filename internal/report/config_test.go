package report

import (
	"testing"

	"sporeless-reporting/internal/catalog"
)

func baseConfig() *ReportConfig {
	return &ReportConfig{
		DataSources: []catalog.DataSource{{ID: catalog.SourcePetriObservations, Table: "petri_observations_partitioned"}},
		Measures: []catalog.Measure{{
			Name: "growth_index_avg", Field: "growth_index", Aggregation: catalog.AggAvg,
		}},
	}
}

func TestValidateOperatorVocabulary(t *testing.T) {
	cfg := baseConfig()
	cfg.Filters = []Filter{{Field: "weather", Operator: "regex", Value: ".*"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown operator")
	}

	cfg.Filters = []Filter{{Field: "weather", Operator: OpEquals, Value: "Clear"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCrossTableFilterNeedsPath(t *testing.T) {
	cfg := baseConfig()
	cfg.Filters = []Filter{{
		Field: "program_name", Operator: OpEquals, Value: "Pilot A",
		TargetTable: "pilot_programs",
	}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for cross-table filter without relationship path")
	}

	cfg.Filters[0].RelationshipPath = []JoinStep{{
		FromTable: "petri_observations_partitioned", ToTable: "pilot_programs",
		JoinField: "program_id", ForeignField: "program_id", JoinType: "LEFT",
	}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateGroupLogic(t *testing.T) {
	cfg := baseConfig()
	cfg.FilterGroups = []FilterGroup{{ID: "g1", Logic: "xor"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown group logic")
	}
}

func TestValidateMode(t *testing.T) {
	cfg := baseConfig()
	cfg.Mode = "dry-run"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	cfg.Mode = ModeSample
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRawShape(t *testing.T) {
	cfg := baseConfig()
	if cfg.RawShape() {
		t.Fatal("aggregated config should not be raw shape")
	}
	cfg.Measures[0].Aggregation = catalog.AggNone
	if !cfg.RawShape() {
		t.Fatal("all-none measures should be raw shape")
	}
	cfg.Measures = nil
	if cfg.RawShape() {
		t.Fatal("no measures is not raw shape")
	}
}

func TestResolveFillsCatalogDefinitions(t *testing.T) {
	cfg := &ReportConfig{
		DataSources: []catalog.DataSource{{
			ID:             catalog.SourcePetriObservations,
			SelectedFields: []string{"petri_code", "growth_index"},
		}},
	}
	if err := cfg.Resolve(catalog.Default()); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	ds := cfg.DataSources[0]
	if ds.Table != "petri_observations_partitioned" {
		t.Fatalf("expected physical table filled in, got %q", ds.Table)
	}
	if len(ds.Fields) == 0 {
		t.Fatal("expected field list filled in")
	}
	if len(ds.SelectedFields) != 2 {
		t.Fatalf("selected fields should survive resolution, got %v", ds.SelectedFields)
	}

	cfg.DataSources = []catalog.DataSource{{ID: "mystery"}}
	if err := cfg.Resolve(catalog.Default()); err == nil {
		t.Fatal("expected error for unknown source id")
	}
}

func TestValidateRejectsNonIdentifierReferences(t *testing.T) {
	cfg := baseConfig()
	cfg.Filters = []Filter{{
		Field:    "growth_index = growth_index OR (SELECT pg_sleep(10)) IS NULL --",
		Operator: OpIsNotNull,
	}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for filter field that is not a bare identifier")
	}

	cfg = baseConfig()
	cfg.Dimensions = []catalog.Dimension{{
		Name:   "placement",
		Source: catalog.SourcePetriObservations,
		Field:  "placement; DROP TABLE sites",
	}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for dimension field that is not a bare identifier")
	}

	cfg = baseConfig()
	cfg.Measures[0].Field = "growth_index) FROM sites; --"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for measure field that is not a bare identifier")
	}

	cfg = baseConfig()
	cfg.SegmentBy = []string{"site_id, (SELECT 1)"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for segment field that is not a bare identifier")
	}

	cfg = baseConfig()
	cfg.Filters = []Filter{{
		Field: "start_date", Operator: OpIsNotNull,
		TargetTable: "pilot_programs",
		RelationshipPath: []JoinStep{{
			FromTable: "petri_observations_partitioned", ToTable: "pilot_programs",
			JoinField: "program_id", ForeignField: "program_id", JoinType: "CROSS",
		}},
	}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for join type outside the vocabulary")
	}
}

func TestValidateChecksDeclaredFields(t *testing.T) {
	cfg := &ReportConfig{
		DataSources: []catalog.DataSource{{ID: catalog.SourcePetriObservations}},
		Measures: []catalog.Measure{{
			Name: "growth_index_avg", Field: "growth_index",
			Source: catalog.SourcePetriObservations, Aggregation: catalog.AggAvg,
		}},
		Filters: []Filter{{Field: "made_up_column", Operator: OpIsNotNull}},
	}
	if err := cfg.Resolve(catalog.Default()); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for filter on undeclared field")
	}

	cfg.Filters[0].Field = "growth_index"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateFilterSourceMustBeSelected(t *testing.T) {
	cfg := baseConfig()
	cfg.Filters = []Filter{{
		Field: "site_name", Operator: OpEquals, Value: "North",
		DataSource: catalog.SourceSites,
	}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for filter naming unselected source")
	}

	cfg.DataSources = append(cfg.DataSources, catalog.DataSource{ID: catalog.SourceSites})
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestComputedEntriesResolveToCatalogDefinitions(t *testing.T) {
	cfg := baseConfig()
	cfg.Dimensions = []catalog.Dimension{{
		Name: "created_week", Source: catalog.SourceComputed,
		Expression: "pg_sleep(10)",
	}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for computed dimension with a foreign expression")
	}

	cfg.Dimensions[0].Expression = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Resolve(catalog.Default()); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Dimensions[0].Expression != "DATE_TRUNC('week', created_at)" {
		t.Fatalf("expected catalog expression, got %q", cfg.Dimensions[0].Expression)
	}
	if cfg.Dimensions[0].ID != "date_created_week" {
		t.Fatalf("expected catalog id, got %q", cfg.Dimensions[0].ID)
	}

	cfg.Measures = append(cfg.Measures, catalog.Measure{
		Name: "sleepy", Source: catalog.SourceComputed, Expression: "pg_sleep(10)",
	})
	if err := cfg.Resolve(catalog.Default()); err == nil {
		t.Fatal("expected error for computed measure outside the catalog")
	}
}
