package engine

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"sporeless-reporting/internal/report"
)

// Deriver evaluates derived-measure expressions over normalized records.
// Compiled programs are cached by expression string.
type Deriver struct {
	cache map[string]*vm.Program
}

func NewDeriver() *Deriver {
	return &Deriver{cache: make(map[string]*vm.Program)}
}

func (d *Deriver) compile(expression string) (*vm.Program, error) {
	if prog, ok := d.cache[expression]; ok {
		return prog, nil
	}
	prog, err := expr.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("compile expression: %w", err)
	}
	d.cache[expression] = prog
	return prog, nil
}

// Apply evaluates each derived measure against every record, writing the
// result into the record's measures map. The expression environment exposes
// the record's dimensions, measures, and metadata maps. Evaluation errors
// on a single record yield null for that record; compile errors fail the
// whole derivation.
func (d *Deriver) Apply(records []report.DataRecord, derived []report.DerivedMeasure) error {
	for _, dm := range derived {
		prog, err := d.compile(dm.Expression)
		if err != nil {
			return fmt.Errorf("derived measure %q: %w", dm.Name, err)
		}
		for i := range records {
			env := map[string]any{
				"dimensions": records[i].Dimensions,
				"measures":   records[i].Measures,
				"metadata":   records[i].Metadata,
			}
			out, err := expr.Run(prog, env)
			if err != nil {
				records[i].Measures[dm.Name] = nil
				continue
			}
			if f, ok := toFloat(out); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
				records[i].Measures[dm.Name] = f
			} else {
				records[i].Measures[dm.Name] = nil
			}
		}
	}
	return nil
}
