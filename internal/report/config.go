package report

import (
	"fmt"
	"regexp"

	"sporeless-reporting/internal/catalog"
)

// identifier matches bare SQL identifiers. Everything spliced into query
// text (field, table, and alias names) must match it; values travel as bind
// parameters.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether s is safe to splice into SQL as an
// identifier.
func ValidIdentifier(s string) bool {
	return identifier.MatchString(s)
}

// Chart types understood by the execution service and the sample generator.
const (
	ChartBar                  = "bar"
	ChartLine                 = "line"
	ChartPie                  = "pie"
	ChartTable                = "table"
	ChartHeatmap              = "heatmap"
	ChartBoxPlot              = "box_plot"
	ChartScatter              = "scatter"
	ChartHistogram            = "histogram"
	ChartTreemap              = "treemap"
	ChartSpatialEffectiveness = "spatial_effectiveness"
)

// Execution modes. Empty means "use the configured default".
const (
	ModeLive   = "live"
	ModeSample = "sample"
)

// DerivedMeasure is a per-record computed measure evaluated after
// normalization. The expression reads the record's dimensions, measures,
// and metadata maps.
type DerivedMeasure struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Expression  string `json:"expression"`
}

// ReportConfig is a complete report request: which sources to read, how to
// group, what to aggregate, and how to filter.
type ReportConfig struct {
	Name            string               `json:"name,omitempty"`
	DataSources     []catalog.DataSource `json:"dataSources"`
	Dimensions      []catalog.Dimension  `json:"dimensions"`
	Measures        []catalog.Measure    `json:"measures"`
	Filters         []Filter             `json:"filters,omitempty"`
	FilterGroups    []FilterGroup        `json:"filterGroups,omitempty"`
	SegmentBy       []string             `json:"segmentBy,omitempty"`
	ChartType       string               `json:"chartType,omitempty"`
	DerivedMeasures []DerivedMeasure     `json:"derivedMeasures,omitempty"`

	// Mode overrides the service-wide execution mode for this request.
	Mode string `json:"mode,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// PrimarySource returns the first data source, which owns the FROM clause.
func (c *ReportConfig) PrimarySource() (catalog.DataSource, bool) {
	if len(c.DataSources) == 0 {
		return catalog.DataSource{}, false
	}
	return c.DataSources[0], true
}

// RawShape reports whether every measure has aggregation "none", which
// switches the builder to the raw-record query shape.
func (c *ReportConfig) RawShape() bool {
	if len(c.Measures) == 0 {
		return false
	}
	for _, m := range c.Measures {
		if m.Aggregation != catalog.AggNone {
			return false
		}
	}
	return true
}

// Resolve fills in catalog definitions for data sources posted with only an
// id, preserving any selected-field restriction from the request.
func (c *ReportConfig) Resolve(cat *catalog.Catalog) error {
	for i := range c.DataSources {
		ds := &c.DataSources[i]
		if len(ds.Fields) > 0 {
			continue
		}
		full, ok := cat.Source(ds.ID)
		if !ok {
			return fmt.Errorf("unknown data source %q", ds.ID)
		}
		selected := ds.SelectedFields
		*ds = full
		if len(selected) > 0 {
			ds.SelectedFields = selected
		}
	}

	// Computed dimensions and measures are replaced wholesale by their
	// catalog definitions, keyed by id or name. Expression text posted by
	// the client never reaches the builder.
	for i, d := range c.Dimensions {
		if d.Source != catalog.SourceComputed {
			continue
		}
		def, ok := computedDimensionDef(d)
		if !ok {
			return fmt.Errorf("unknown computed dimension %q", d.Name)
		}
		c.Dimensions[i] = def
	}
	for i, m := range c.Measures {
		if m.Source != catalog.SourceComputed {
			continue
		}
		def, ok := computedMeasureDef(m)
		if !ok {
			return fmt.Errorf("unknown computed measure %q", m.Name)
		}
		c.Measures[i] = def
	}
	return nil
}

func computedDimensionDef(d catalog.Dimension) (catalog.Dimension, bool) {
	if def, ok := catalog.ComputedDimension(d.ID); ok {
		return def, true
	}
	return catalog.ComputedDimension(d.Name)
}

func computedMeasureDef(m catalog.Measure) (catalog.Measure, bool) {
	if def, ok := catalog.ComputedMeasure(m.ID); ok {
		return def, true
	}
	return catalog.ComputedMeasure(m.Name)
}

// Validate checks the config's vocabulary, the cross-table invariant (any
// filter targeting a table outside the primary source must carry a
// relationship path), and every identifier the builder will splice into
// query text. Field references are checked against their owning selected
// source's declared fields; field lists are only known after Resolve, so a
// bare-id source still gets the charset check.
func (c *ReportConfig) Validate() error {
	primary, ok := c.PrimarySource()
	if !ok {
		return fmt.Errorf("report requires at least one data source")
	}
	if c.Mode != "" && c.Mode != ModeLive && c.Mode != ModeSample {
		return fmt.Errorf("unknown execution mode %q", c.Mode)
	}

	selected := make(map[string]*catalog.DataSource, len(c.DataSources))
	for i := range c.DataSources {
		selected[c.DataSources[i].ID] = &c.DataSources[i]
	}
	declared := func(sourceID, field string) error {
		if !ValidIdentifier(field) {
			return fmt.Errorf("invalid field name %q", field)
		}
		id := sourceID
		if id == "" {
			id = primary.ID
		}
		src, ok := selected[id]
		if !ok {
			return fmt.Errorf("data source %q is not selected", id)
		}
		if len(src.Fields) > 0 && !src.HasField(field) {
			return fmt.Errorf("data source %q has no field %q", id, field)
		}
		return nil
	}

	for _, d := range c.Dimensions {
		if !ValidIdentifier(d.Name) {
			return fmt.Errorf("invalid dimension name %q", d.Name)
		}
		if d.Source == catalog.SourceComputed {
			def, ok := computedDimensionDef(d)
			if !ok {
				return fmt.Errorf("unknown computed dimension %q", d.Name)
			}
			if d.Expression != "" && d.Expression != def.Expression {
				return fmt.Errorf("computed dimension %q carries a foreign expression", d.Name)
			}
			continue
		}
		if d.RelatedSource != "" {
			// Cross-table dimensions read physical columns of the
			// related table, so the declared-field check does not
			// apply; the builder rejects unknown related sources.
			if !ValidIdentifier(d.RelatedSource) || !ValidIdentifier(d.Field) {
				return fmt.Errorf("dimension %q: invalid cross-table reference", d.Name)
			}
			continue
		}
		if err := declared(d.Source, d.Field); err != nil {
			return fmt.Errorf("dimension %q: %w", d.Name, err)
		}
	}

	for _, m := range c.Measures {
		if m.Aggregation != "" && !catalog.ValidAggregation(m.Aggregation) {
			return fmt.Errorf("measure %q: unknown aggregation %q", m.Name, m.Aggregation)
		}
		if !ValidIdentifier(m.Name) {
			return fmt.Errorf("invalid measure name %q", m.Name)
		}
		if m.Source == catalog.SourceComputed {
			def, ok := computedMeasureDef(m)
			if !ok {
				return fmt.Errorf("unknown computed measure %q", m.Name)
			}
			if m.Expression != "" && m.Expression != def.Expression {
				return fmt.Errorf("computed measure %q carries a foreign expression", m.Name)
			}
			continue
		}
		if m.Field == "*" {
			if m.Aggregation != catalog.AggCount {
				return fmt.Errorf("measure %q: wildcard field requires count", m.Name)
			}
			continue
		}
		if err := declared(m.Source, m.Field); err != nil {
			return fmt.Errorf("measure %q: %w", m.Name, err)
		}
	}

	for _, s := range c.SegmentBy {
		if !ValidIdentifier(s) {
			return fmt.Errorf("invalid segment field %q", s)
		}
	}

	check := func(f Filter) error {
		if !ValidOperator(f.Operator) {
			return fmt.Errorf("filter on %q: unknown operator %q", f.Field, f.Operator)
		}
		if f.TargetTable != "" && f.TargetTable != primary.Table {
			if len(f.RelationshipPath) == 0 {
				return fmt.Errorf("filter on %q targets %q without a relationship path", f.Field, f.TargetTable)
			}
			if !ValidIdentifier(f.TargetTable) || !ValidIdentifier(f.Field) {
				return fmt.Errorf("filter on %q: invalid cross-table reference", f.Field)
			}
			for _, step := range f.RelationshipPath {
				if !ValidIdentifier(step.FromTable) || !ValidIdentifier(step.ToTable) ||
					!ValidIdentifier(step.JoinField) || !ValidIdentifier(step.ForeignField) {
					return fmt.Errorf("filter on %q: invalid relationship path", f.Field)
				}
				switch step.JoinType {
				case "", "INNER", "LEFT":
				default:
					return fmt.Errorf("filter on %q: unknown join type %q", f.Field, step.JoinType)
				}
			}
			return nil
		}
		return declared(f.DataSource, f.Field)
	}
	for _, f := range c.Filters {
		if err := check(f); err != nil {
			return err
		}
	}
	for _, g := range c.FilterGroups {
		if g.Logic != LogicAnd && g.Logic != LogicOr {
			return fmt.Errorf("filter group %q: unknown logic %q", g.ID, g.Logic)
		}
		for _, f := range g.Filters {
			if err := check(f); err != nil {
				return err
			}
		}
	}
	for _, d := range c.DerivedMeasures {
		if d.Name == "" || d.Expression == "" {
			return fmt.Errorf("derived measure requires a name and an expression")
		}
	}
	return nil
}
