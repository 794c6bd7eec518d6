package query

import (
	"fmt"
	"strings"

	"sporeless-reporting/internal/catalog"
	"sporeless-reporting/internal/report"
)

// DefaultRowLimit caps query output when the config does not set one.
const DefaultRowLimit = 500

// submissionDisplay renders the human-readable submission label used in
// COALESCE substitutions.
const submissionDisplay = "submissions.global_submission_id::text || ' (' || TO_CHAR(submissions.created_at, 'MM/DD/YY') || ')'"

// joinSet collects join clauses in insertion order, one per table.
type joinSet struct {
	clauses []string
	tables  map[string]bool
}

func newJoinSet(mainAlias string) *joinSet {
	return &joinSet{tables: map[string]bool{mainAlias: true}}
}

func (j *joinSet) has(table string) bool {
	return j.tables[table]
}

func (j *joinSet) add(table, clause string) {
	if j.tables[table] {
		return
	}
	j.tables[table] = true
	j.clauses = append(j.clauses, clause)
}

// builder compiles one ReportConfig into a parameterized SELECT.
type builder struct {
	cfg     *report.ReportConfig
	primary catalog.DataSource
	joins   *joinSet
	pb      *paramBuilder

	// grouped counts the leading SELECT positions that participate in
	// GROUP BY on the aggregated path.
	grouped int
	selects []string
}

// Build compiles a report configuration into a single parameterized query.
// The config must already be resolved and validated.
func Build(cfg *report.ReportConfig) (Query, error) {
	primary, ok := cfg.PrimarySource()
	if !ok {
		return Query{}, fmt.Errorf("report requires at least one data source")
	}
	if len(cfg.Measures) == 0 {
		return Query{}, fmt.Errorf("report requires at least one measure")
	}

	b := &builder{
		cfg:     cfg,
		primary: primary,
		joins:   newJoinSet(primary.ID),
		pb:      &paramBuilder{},
	}

	if err := b.selectDimensions(); err != nil {
		return Query{}, err
	}
	if err := b.selectSegments(); err != nil {
		return Query{}, err
	}
	b.grouped = len(b.selects)
	if err := b.selectMeasures(); err != nil {
		return Query{}, err
	}
	if cfg.RawShape() {
		b.selectDrilldownColumns()
	}
	b.joinSecondarySources()
	if err := b.joinFilterPaths(); err != nil {
		return Query{}, err
	}

	sql := fmt.Sprintf("SELECT %s FROM %s AS %s",
		strings.Join(b.selects, ", "), primary.Table, primary.ID)
	if len(b.joins.clauses) > 0 {
		sql += " " + strings.Join(b.joins.clauses, " ")
	}

	where, err := buildWhere(cfg, b.pb)
	if err != nil {
		return Query{}, err
	}
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}

	if !cfg.RawShape() && b.grouped > 0 {
		ordinals := make([]string, b.grouped)
		for i := range ordinals {
			ordinals[i] = fmt.Sprintf("%d", i+1)
		}
		sql += " GROUP BY " + strings.Join(ordinals, ", ")
	}

	sql += " ORDER BY 1"

	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultRowLimit
	}
	sql += " LIMIT " + b.pb.Add(limit)
	if cfg.Offset > 0 {
		sql += " OFFSET " + b.pb.Add(cfg.Offset)
	}

	return Query{SQL: sql, Params: b.pb.params}, nil
}

// sourceAlias resolves a dimension or measure's owning source to its query
// alias. Only selected sources may be referenced.
func (b *builder) sourceAlias(sourceID string) (string, error) {
	if sourceID == "" || sourceID == b.primary.ID {
		return b.primary.ID, nil
	}
	for _, ds := range b.cfg.DataSources {
		if ds.ID == sourceID {
			return ds.ID, nil
		}
	}
	return "", fmt.Errorf("reference to unselected data source %q", sourceID)
}

func (b *builder) selectDimensions() error {
	for _, dim := range b.cfg.Dimensions {
		if !report.ValidIdentifier(dim.Name) {
			return fmt.Errorf("invalid dimension name %q", dim.Name)
		}
		if dim.Source == catalog.SourceComputed {
			// Computed dimensions render their catalog expression,
			// never text from the request.
			def, ok := catalog.ComputedDimension(dim.ID)
			if !ok {
				def, ok = catalog.ComputedDimension(dim.Name)
			}
			if !ok {
				return fmt.Errorf("unknown computed dimension %q", dim.Name)
			}
			b.selects = append(b.selects, fmt.Sprintf("%s AS %s", def.Expression, def.Name))
			continue
		}
		if !report.ValidIdentifier(dim.Field) {
			return fmt.Errorf("dimension %q: invalid field %q", dim.Name, dim.Field)
		}

		if dim.RelatedSource != "" {
			// Cross-table dimension reads a column off a related table.
			if err := b.joinRelated(dim.RelatedSource); err != nil {
				return err
			}
			b.selects = append(b.selects, fmt.Sprintf("%s.%s AS %s", dim.RelatedSource, dim.Field, dim.Name))
			continue
		}

		alias, err := b.sourceAlias(dim.Source)
		if err != nil {
			return fmt.Errorf("dimension %q: %w", dim.Name, err)
		}

		// Foreign keys group on a human-readable label with the raw id as
		// a non-null fallback.
		switch dim.Field {
		case "program_id":
			b.joinPrograms()
			b.selects = append(b.selects, fmt.Sprintf(
				"COALESCE(pilot_programs.program_name, %s.program_id::text) AS %s", alias, dim.Name))
		case "site_id":
			b.joinSites()
			b.selects = append(b.selects, fmt.Sprintf(
				"COALESCE(sites.site_code::text, %s.site_id::text) AS %s", alias, dim.Name))
		case "submission_id":
			b.joinSubmissions()
			b.selects = append(b.selects, fmt.Sprintf(
				"COALESCE(%s, %s.submission_id::text) AS %s", submissionDisplay, alias, dim.Name))
		default:
			b.selects = append(b.selects, fmt.Sprintf("%s.%s AS %s", alias, dim.Field, dim.Name))
		}
	}
	return nil
}

// selectSegments emits segment_<field> columns. The site segment groups on
// site_code so sites sharing a code merge into one series, with the site
// name carried separately for display.
func (b *builder) selectSegments() error {
	main := b.primary.ID
	raw := b.cfg.RawShape()
	for _, segment := range b.cfg.SegmentBy {
		if !report.ValidIdentifier(segment) {
			return fmt.Errorf("invalid segment field %q", segment)
		}
		switch segment {
		case "program_id":
			b.joinPrograms()
			if raw {
				b.selects = append(b.selects,
					"pilot_programs.program_name AS segment_program_name",
					"pilot_programs.start_date AS segment_program_start_date",
					"pilot_programs.end_date AS segment_program_end_date",
					fmt.Sprintf("%s.program_id AS segment_program_id", main))
			} else {
				b.selects = append(b.selects, fmt.Sprintf(
					"COALESCE(pilot_programs.program_name, %s.program_id::text) AS segment_program_id", main))
			}
		case "site_id":
			b.joinSites()
			b.selects = append(b.selects,
				fmt.Sprintf("COALESCE(sites.site_code::text, %s.site_id::text) AS segment_site_id", main),
				"COALESCE(sites.name, 'Unknown Site') AS segment_site_name")
		case "submission_id":
			b.joinSubmissions()
			b.selects = append(b.selects, fmt.Sprintf(
				"COALESCE(%s, %s.submission_id::text) AS segment_submission_id", submissionDisplay, main))
		default:
			b.selects = append(b.selects, fmt.Sprintf("%s.%s AS segment_%s", main, segment, segment))
		}
	}
	return nil
}

func (b *builder) selectMeasures() error {
	for _, m := range b.cfg.Measures {
		if !report.ValidIdentifier(m.Name) {
			return fmt.Errorf("invalid measure name %q", m.Name)
		}
		if m.Source == catalog.SourceComputed {
			// Computed measures render their catalog expression, never
			// text from the request.
			def, ok := catalog.ComputedMeasure(m.ID)
			if !ok {
				def, ok = catalog.ComputedMeasure(m.Name)
			}
			if !ok {
				return fmt.Errorf("unknown computed measure %q", m.Name)
			}
			if def.RequiresJoin == catalog.SourcePilotPrograms {
				b.joinPrograms()
			}
			b.selects = append(b.selects, fmt.Sprintf("%s AS %s", def.Expression, def.Name))
			continue
		}
		if m.Field != "*" && !report.ValidIdentifier(m.Field) {
			return fmt.Errorf("measure %q: invalid field %q", m.Name, m.Field)
		}

		alias, err := b.sourceAlias(m.Source)
		if err != nil {
			return fmt.Errorf("measure %q: %w", m.Name, err)
		}
		qualified := alias + "." + m.Field

		switch {
		case m.Field == "*" && m.Aggregation == catalog.AggCount:
			b.selects = append(b.selects, fmt.Sprintf("COUNT(%s.*) AS %s", alias, m.Name))
		case m.Aggregation == "" || m.Aggregation == catalog.AggNone:
			b.selects = append(b.selects, fmt.Sprintf("%s AS %s", qualified, m.Name))
		default:
			b.selects = append(b.selects, fmt.Sprintf("%s AS %s",
				catalog.AggregationSQL(m.Aggregation, qualified), m.Name))
		}
	}
	return nil
}

// selectDrilldownColumns adds identifier columns raw-record consumers need
// to drill into a row, honoring any selected-field restriction.
func (b *builder) selectDrilldownColumns() {
	seen := make(map[string]bool)
	for _, d := range b.cfg.Dimensions {
		seen[d.Field] = true
	}
	for _, m := range b.cfg.Measures {
		seen[m.Field] = true
	}

	// Identifier columns are always selectable for drill-down, even when a
	// selected-field restriction is in place.
	add := func(field string) {
		if seen[field] || !b.primary.HasField(field) {
			return
		}
		seen[field] = true
		b.selects = append(b.selects, fmt.Sprintf("%s.%s", b.primary.ID, field))
	}

	add("submission_id")
	add("site_id")
	add("program_id")
	if b.primary.IsObservation() {
		add("observation_id")
	}

	for _, ds := range b.cfg.DataSources {
		if ds.ID != b.primary.ID || len(ds.SelectedFields) == 0 {
			continue
		}
		for _, field := range ds.SelectedFields {
			add(field)
		}
	}
}

// joinPrograms joins pilot_programs. Partitioned observation tables carry
// program_id directly; everything else routes through submissions and sites.
func (b *builder) joinPrograms() {
	if b.joins.has("pilot_programs") {
		return
	}
	main := b.primary.ID
	if b.primary.IsPartitioned {
		b.joins.add("pilot_programs", fmt.Sprintf(
			"LEFT JOIN pilot_programs ON %s.program_id = pilot_programs.program_id", main))
		return
	}
	b.joinSubmissions()
	b.joinSites()
	b.joins.add("pilot_programs",
		"LEFT JOIN pilot_programs ON sites.program_id = pilot_programs.program_id")
}

func (b *builder) joinSites() {
	if b.joins.has("sites") {
		return
	}
	main := b.primary.ID
	if b.primary.IsPartitioned {
		b.joins.add("sites", fmt.Sprintf("LEFT JOIN sites ON %s.site_id = sites.site_id", main))
		return
	}
	if b.primary.ID == catalog.SourceSubmissions {
		b.joins.add("sites", "LEFT JOIN sites ON submissions.site_id = sites.site_id")
		return
	}
	b.joinSubmissions()
	b.joins.add("sites", "LEFT JOIN sites ON submissions.site_id = sites.site_id")
}

func (b *builder) joinSubmissions() {
	if b.primary.ID == catalog.SourceSubmissions || b.joins.has("submissions") {
		return
	}
	b.joins.add("submissions", fmt.Sprintf(
		"LEFT JOIN submissions ON %s.submission_id = submissions.submission_id", b.primary.ID))
}

// joinRelated joins one of the known related tables for a cross-table
// dimension.
func (b *builder) joinRelated(sourceID string) error {
	switch sourceID {
	case catalog.SourcePilotPrograms:
		b.joinPrograms()
	case catalog.SourceSites:
		b.joinSites()
	case catalog.SourceSubmissions:
		b.joinSubmissions()
	default:
		return fmt.Errorf("no join path to related source %q", sourceID)
	}
	return nil
}

// joinSecondarySources joins every selected source past the first, using
// the fixed schema topology.
func (b *builder) joinSecondarySources() {
	main := b.primary
	for _, src := range b.cfg.DataSources[1:] {
		if b.joins.has(src.ID) {
			continue
		}
		switch {
		case src.ID == catalog.SourceSubmissions:
			b.joinSubmissions()
		case src.ID == catalog.SourceSites:
			b.joinSites()
		case src.ID == catalog.SourcePilotPrograms:
			b.joinPrograms()
		default:
			// Observation tables and anything else share the submission key.
			b.joins.add(src.ID, fmt.Sprintf(
				"LEFT JOIN %s AS %s ON %s.submission_id = %s.submission_id",
				src.Table, src.ID, main.ID, src.ID))
		}
	}
}

// joinFilterPaths adds joins required by cross-table filters, deduplicated
// against joins already in place. Every spliced path component must be a
// bare identifier and the join type comes from a fixed vocabulary.
func (b *builder) joinFilterPaths() error {
	addPath := func(path []report.JoinStep) error {
		for _, step := range path {
			joinType := step.JoinType
			switch joinType {
			case "":
				joinType = "INNER"
			case "INNER", "LEFT":
			default:
				return fmt.Errorf("unknown join type %q", step.JoinType)
			}
			if !report.ValidIdentifier(step.FromTable) || !report.ValidIdentifier(step.ToTable) ||
				!report.ValidIdentifier(step.JoinField) || !report.ValidIdentifier(step.ForeignField) {
				return fmt.Errorf("invalid relationship path to %q", step.ToTable)
			}
			from := step.FromTable
			if from == b.primary.Table {
				from = b.primary.ID
			}
			b.joins.add(step.ToTable, fmt.Sprintf("%s JOIN %s ON %s.%s = %s.%s",
				joinType, step.ToTable, from, step.JoinField, step.ToTable, step.ForeignField))
		}
		return nil
	}
	for _, f := range b.cfg.Filters {
		if f.IsCrossTable() {
			if err := addPath(f.RelationshipPath); err != nil {
				return err
			}
		}
	}
	for _, g := range b.cfg.FilterGroups {
		for _, f := range g.Filters {
			if f.IsCrossTable() {
				if err := addPath(f.RelationshipPath); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
