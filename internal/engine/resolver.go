package engine

import (
	"context"
	"log"

	"sporeless-reporting/internal/catalog"
	"sporeless-reporting/internal/report"
	"sporeless-reporting/internal/store"
)

// Introspector reports the live columns of a table. *store.Store satisfies
// this; tests substitute their own.
type Introspector interface {
	GetTableColumns(ctx context.Context, table string) ([]store.ColumnInfo, error)
}

// Resolver produces the filterable fields for a source selection. It
// prefers live schema introspection and degrades to the static catalog when
// the introspection function is missing or failing.
type Resolver struct {
	intro Introspector
}

func NewResolver(intro Introspector) *Resolver {
	return &Resolver{intro: intro}
}

// FilterFields resolves the filter fields for the given sources. It never
// fails: any introspection error falls back to static definitions with no
// relationship paths attached.
func (r *Resolver) FilterFields(ctx context.Context, sources []catalog.DataSource) []report.FilterField {
	fields, err := r.dynamicFields(ctx, sources)
	if err != nil {
		if store.IsMissingFunction(err) {
			log.Printf("WARN: get_table_columns function missing, using static catalog (run migrations/20250710_add_get_table_columns_function.sql): %v", err)
		} else {
			log.Printf("WARN: schema introspection failed, using static catalog: %v", err)
		}
		return staticFields(sources)
	}

	if len(sources) > 0 {
		fields = append(fields, relatedFields(sources[0])...)
	}
	return fields
}

func (r *Resolver) dynamicFields(ctx context.Context, sources []catalog.DataSource) ([]report.FilterField, error) {
	var fields []report.FilterField
	for _, s := range sources {
		cols, err := r.intro.GetTableColumns(ctx, s.Table)
		if err != nil {
			return nil, err
		}
		for _, col := range cols {
			f := report.FilterField{
				ID:          s.ID + "." + col.Name,
				Name:        col.Name,
				DisplayName: catalog.FormatDisplayName(col.Name) + " (" + s.Name + ")",
				DataType:    catalog.MapPostgresType(col.Type),
				Source:      s.ID,
				Field:       col.Name,
			}
			if def := s.GetField(col.Name); def != nil {
				f.EnumValues = def.EnumValues
				if def.Type == catalog.TypeEnum {
					f.DataType = catalog.TypeEnum
				}
			}
			fields = append(fields, f)
		}
	}
	return fields, nil
}

// staticFields derives filter fields straight from catalog definitions.
func staticFields(sources []catalog.DataSource) []report.FilterField {
	var fields []report.FilterField
	for _, s := range sources {
		for _, f := range s.Fields {
			fields = append(fields, report.FilterField{
				ID:          s.ID + "." + f.Name,
				Name:        f.Name,
				DisplayName: f.DisplayName + " (" + s.Name + ")",
				DataType:    f.Type,
				Source:      s.ID,
				Field:       f.Name,
				EnumValues:  f.EnumValues,
			})
		}
	}
	return fields
}

type relatedField struct {
	name        string
	displayName string
	dataType    string
}

// relatedFields appends known cross-table fields for the main source with
// hand-built relationship paths. The schema is fixed and small, so the join
// topology is declared rather than derived.
func relatedFields(main catalog.DataSource) []report.FilterField {
	var fields []report.FilterField

	add := func(targetTable, label string, path []report.JoinStep, defs []relatedField) {
		for _, d := range defs {
			fields = append(fields, report.FilterField{
				ID:               targetTable + "." + d.name,
				Name:             d.name,
				DisplayName:      d.displayName + " (Related: " + label + ")",
				DataType:         d.dataType,
				Source:           main.ID,
				Field:            d.name,
				TargetTable:      targetTable,
				RelationshipPath: path,
			})
		}
	}

	switch {
	case main.IsObservation():
		add("pilot_programs", "Programs", programPath(main), []relatedField{
			{"start_date", "Program Start Date", catalog.TypeDate},
			{"end_date", "Program End Date", catalog.TypeDate},
			{"name", "Program Name", catalog.TypeText},
			{"phase_type", "Program Phase Type", catalog.TypeText},
		})
		add("sites", "Sites", sitePath(main), []relatedField{
			{"name", "Site Name", catalog.TypeText},
			{"gasifier_deployment_date", "Site Gasifier Deployment Date", catalog.TypeDate},
		})
		add("submissions", "Submissions", []report.JoinStep{
			{FromTable: main.Table, ToTable: "submissions", JoinField: "submission_id", ForeignField: "submission_id", JoinType: "INNER"},
		}, []relatedField{
			{"created_at", "Submission Date", catalog.TypeTimestamp},
			{"outdoor_temperature", "Submission Temperature", catalog.TypeNumeric},
			{"outdoor_humidity", "Submission Humidity", catalog.TypeNumeric},
			{"weather", "Submission Weather", catalog.TypeText},
		})
	case main.ID == catalog.SourceSubmissions:
		add("pilot_programs", "Programs", []report.JoinStep{
			{FromTable: "submissions", ToTable: "sites", JoinField: "site_id", ForeignField: "site_id", JoinType: "INNER"},
			{FromTable: "sites", ToTable: "pilot_programs", JoinField: "program_id", ForeignField: "program_id", JoinType: "INNER"},
		}, []relatedField{
			{"start_date", "Program Start Date", catalog.TypeDate},
			{"end_date", "Program End Date", catalog.TypeDate},
			{"name", "Program Name", catalog.TypeText},
		})
		add("sites", "Sites", []report.JoinStep{
			{FromTable: "submissions", ToTable: "sites", JoinField: "site_id", ForeignField: "site_id", JoinType: "INNER"},
		}, []relatedField{
			{"name", "Site Name", catalog.TypeText},
		})
	}

	return fields
}

// programPath joins the main observation table to pilot_programs:
// partitioned tables carry program_id directly, others route through
// submissions and sites.
func programPath(main catalog.DataSource) []report.JoinStep {
	if main.IsPartitioned {
		return []report.JoinStep{
			{FromTable: main.Table, ToTable: "pilot_programs", JoinField: "program_id", ForeignField: "program_id", JoinType: "INNER"},
		}
	}
	return []report.JoinStep{
		{FromTable: main.Table, ToTable: "submissions", JoinField: "submission_id", ForeignField: "submission_id", JoinType: "INNER"},
		{FromTable: "submissions", ToTable: "sites", JoinField: "site_id", ForeignField: "site_id", JoinType: "INNER"},
		{FromTable: "sites", ToTable: "pilot_programs", JoinField: "program_id", ForeignField: "program_id", JoinType: "INNER"},
	}
}

func sitePath(main catalog.DataSource) []report.JoinStep {
	if main.IsPartitioned {
		return []report.JoinStep{
			{FromTable: main.Table, ToTable: "sites", JoinField: "site_id", ForeignField: "site_id", JoinType: "INNER"},
		}
	}
	return []report.JoinStep{
		{FromTable: main.Table, ToTable: "submissions", JoinField: "submission_id", ForeignField: "submission_id", JoinType: "INNER"},
		{FromTable: "submissions", ToTable: "sites", JoinField: "site_id", ForeignField: "site_id", JoinType: "INNER"},
	}
}
