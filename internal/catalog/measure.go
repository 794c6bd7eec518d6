package catalog

import (
	"fmt"
	"strings"
)

// Aggregation functions a measure can carry. "none" selects the raw field
// and switches the builder into raw-record shape.
const (
	AggNone   = "none"
	AggSum    = "sum"
	AggAvg    = "avg"
	AggCount  = "count"
	AggMin    = "min"
	AggMax    = "max"
	AggMedian = "median"
	AggStddev = "stddev"
)

// ValidAggregation reports whether agg is a recognized aggregation.
func ValidAggregation(agg string) bool {
	switch agg {
	case AggNone, AggSum, AggAvg, AggCount, AggMin, AggMax, AggMedian, AggStddev:
		return true
	}
	return false
}

// Measure is an aggregatable value derived from a numeric field or a fixed
// computed expression.
type Measure struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	DataType    string `json:"dataType"`
	Source      string `json:"source"`
	Field       string `json:"field"`
	Aggregation string `json:"aggregation"`
	Expression  string `json:"expression,omitempty"`

	// RequiresJoin names a table that must be joined before the measure's
	// expression is valid.
	RequiresJoin string `json:"requiresJoin,omitempty"`
}

// measureAggregations are the variants expanded per numeric field, in the
// order they are presented.
var measureAggregations = []string{AggSum, AggAvg, AggMin, AggMax, AggCount}

// Measures derives the available measures for a set of selected sources.
// Each numeric or integer field expands to five aggregation variants; the
// fixed computed measures are always appended, and days_in_program_phase is
// added when an observation source is present.
func Measures(sources []DataSource) []Measure {
	var measures []Measure
	hasObservation := false

	for _, s := range sources {
		if s.IsObservation() {
			hasObservation = true
		}
		for _, f := range s.ActiveFields() {
			if !f.IsNumeric() {
				continue
			}
			for _, agg := range measureAggregations {
				measures = append(measures, Measure{
					ID:          fmt.Sprintf("%s.%s.%s", s.ID, f.Name, agg),
					Name:        fmt.Sprintf("%s_%s", f.Name, agg),
					DisplayName: fmt.Sprintf("%s (%s)", f.DisplayName, strings.ToUpper(agg)),
					DataType:    TypeNumeric,
					Source:      s.ID,
					Field:       f.Name,
					Aggregation: agg,
					Expression:  AggregationSQL(agg, f.Name),
				})
			}
		}
	}

	return append(measures, computedMeasures(hasObservation)...)
}

// computedMeasures are the fixed expression-backed measures. The
// observation-only entry joins pilot_programs and is withheld when no
// observation source is selected.
func computedMeasures(includeObservation bool) []Measure {
	ms := []Measure{
		{
			ID:          "total_records",
			Name:        "total_records",
			DisplayName: "Total Records",
			DataType:    TypeNumeric,
			Source:      SourceComputed,
			Field:       "*",
			Aggregation: AggCount,
			Expression:  "COUNT(*)",
		},
		{
			ID:          "avg_growth_rate",
			Name:        "avg_growth_rate",
			DisplayName: "Average Growth Rate",
			DataType:    TypeNumeric,
			Source:      SourceComputed,
			Field:       "growth_index",
			Aggregation: AggAvg,
			Expression:  "AVG(growth_index)",
		},
	}
	if includeObservation {
		ms = append(ms, Measure{
			ID:           "days_in_program_phase",
			Name:         "days_in_program_phase",
			DisplayName:  "Days in Program Phase",
			DataType:     TypeNumeric,
			Source:       SourceComputed,
			Field:        "start_date",
			Aggregation:  AggMax,
			Expression:   "MAX(EXTRACT(day FROM pilot_programs.end_date - pilot_programs.start_date))",
			RequiresJoin: SourcePilotPrograms,
		})
	}
	return ms
}

// ComputedMeasure resolves a computed measure by id or name. Only measures
// from this fixed set may carry an expression; client-supplied expression
// text is never trusted.
func ComputedMeasure(key string) (Measure, bool) {
	for _, m := range computedMeasures(true) {
		if m.ID == key || m.Name == key {
			return m, true
		}
	}
	return Measure{}, false
}

// AggregationSQL renders a SQL aggregate over a column. Median and stddev
// are included so builder-supplied measures share one table.
func AggregationSQL(agg, column string) string {
	switch agg {
	case AggSum:
		return fmt.Sprintf("SUM(%s)", column)
	case AggAvg:
		return fmt.Sprintf("AVG(%s)", column)
	case AggMin:
		return fmt.Sprintf("MIN(%s)", column)
	case AggMax:
		return fmt.Sprintf("MAX(%s)", column)
	case AggCount:
		return fmt.Sprintf("COUNT(%s)", column)
	case AggMedian:
		return fmt.Sprintf("PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY %s)", column)
	case AggStddev:
		return fmt.Sprintf("STDDEV(%s)", column)
	}
	return column
}
