package engine

import (
	"testing"

	"sporeless-reporting/internal/report"
)

func TestDeriverApply(t *testing.T) {
	records := []report.DataRecord{
		{Dimensions: map[string]any{}, Measures: map[string]any{"growth_index": 40.0, "outdoor_humidity": 80.0}, Metadata: map[string]any{}},
		{Dimensions: map[string]any{}, Measures: map[string]any{"growth_index": 10.0, "outdoor_humidity": 50.0}, Metadata: map[string]any{}},
	}
	derived := []report.DerivedMeasure{
		{Name: "growth_per_humidity", Expression: `measures.growth_index / measures.outdoor_humidity`},
	}

	if err := NewDeriver().Apply(records, derived); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if records[0].Measures["growth_per_humidity"] != 0.5 {
		t.Fatalf("record 0 = %v", records[0].Measures["growth_per_humidity"])
	}
	if records[1].Measures["growth_per_humidity"] != 0.2 {
		t.Fatalf("record 1 = %v", records[1].Measures["growth_per_humidity"])
	}
}

func TestDeriverCompileErrorFailsWhole(t *testing.T) {
	records := []report.DataRecord{
		{Measures: map[string]any{"a": 1.0}},
	}
	derived := []report.DerivedMeasure{{Name: "broken", Expression: `measures.a +`}}

	if err := NewDeriver().Apply(records, derived); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestDeriverRuntimeErrorYieldsNull(t *testing.T) {
	records := []report.DataRecord{
		{Dimensions: map[string]any{}, Measures: map[string]any{"a": 1.0}, Metadata: map[string]any{}},
	}
	// Referencing a missing map key fails at run time, not compile time.
	derived := []report.DerivedMeasure{{Name: "ratio", Expression: `measures.a / measures.missing`}}

	if err := NewDeriver().Apply(records, derived); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	v, ok := records[0].Measures["ratio"]
	if !ok {
		t.Fatal("ratio key absent")
	}
	if v != nil {
		t.Fatalf("ratio = %v, want nil", v)
	}
}
