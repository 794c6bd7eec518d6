package catalog

// Dimension is a groupable attribute derived from a data source field or a
// fixed computed expression.
type Dimension struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	DataType    string   `json:"dataType"`
	Source      string   `json:"source"`
	Field       string   `json:"field"`
	Granularity string   `json:"granularity,omitempty"`
	Expression  string   `json:"expression,omitempty"`
	EnumValues  []string `json:"enumValues,omitempty"`

	// RelatedSource names the source a cross-table dimension reads from
	// when it differs from the owning source.
	RelatedSource string `json:"relatedSource,omitempty"`
}

// dimensionDenylist names free-text fields that are categorical by type but
// useless as grouping keys.
var dimensionDenylist = map[string]bool{
	"notes":       true,
	"description": true,
	"comments":    true,
}

// Dimensions derives the groupable dimensions for a set of selected sources.
// Categorical fields only, minus the denylist; cross-table dimensions are
// synthesized when an observation source is selected alongside its related
// sources; the two computed DATE_TRUNC dimensions are always appended.
func Dimensions(sources []DataSource) []Dimension {
	var dims []Dimension
	selected := make(map[string]bool, len(sources))
	for _, s := range sources {
		selected[s.ID] = true
	}

	for _, s := range sources {
		for _, f := range s.ActiveFields() {
			if !f.IsCategorical() || dimensionDenylist[f.Name] {
				continue
			}
			granularity := ""
			if f.Type == TypeTimestamp {
				granularity = "day"
			}
			dims = append(dims, Dimension{
				ID:          s.ID + "." + f.Name,
				Name:        f.Name,
				DisplayName: f.DisplayName,
				DataType:    f.Type,
				Source:      s.ID,
				Field:       f.Name,
				Granularity: granularity,
				EnumValues:  f.EnumValues,
			})
		}
	}

	// Cross-table dimensions: observation reports usually group by site or
	// program attributes without wanting those sources' own categorical
	// noise. Attributed to the observation source so the builder knows
	// which table owns the join.
	var obs *DataSource
	for i := range sources {
		if sources[i].IsObservation() {
			obs = &sources[i]
			break
		}
	}
	if obs != nil {
		if selected[SourceSites] {
			dims = append(dims, Dimension{
				ID:            "sites.name",
				Name:          "site_name",
				DisplayName:   "Site Name",
				DataType:      TypeText,
				Source:        obs.ID,
				Field:         "name",
				RelatedSource: SourceSites,
			})
		}
		if selected[SourcePilotPrograms] {
			dims = append(dims, Dimension{
				ID:            "pilot_programs.name",
				Name:          "program_name",
				DisplayName:   "Program Name",
				DataType:      TypeText,
				Source:        obs.ID,
				Field:         "name",
				RelatedSource: SourcePilotPrograms,
			})
		}
		if selected[SourceSubmissions] {
			dims = append(dims,
				Dimension{
					ID:            "submissions.created_at",
					Name:          "submission_date",
					DisplayName:   "Submission Date",
					DataType:      TypeTimestamp,
					Source:        obs.ID,
					Field:         "created_at",
					Granularity:   "day",
					RelatedSource: SourceSubmissions,
				},
				Dimension{
					ID:            "submissions.weather",
					Name:          "weather",
					DisplayName:   "Weather",
					DataType:      TypeText,
					Source:        obs.ID,
					Field:         "weather",
					RelatedSource: SourceSubmissions,
				},
			)
		}
	}

	dims = append(dims, computedDimensions()...)
	return dims
}

// ComputedDimension resolves a computed dimension by id or name. Only
// dimensions from this fixed set may carry an expression; client-supplied
// expression text is never trusted.
func ComputedDimension(key string) (Dimension, bool) {
	for _, d := range computedDimensions() {
		if d.ID == key || d.Name == key {
			return d, true
		}
	}
	return Dimension{}, false
}

// computedDimensions are always available regardless of source selection.
func computedDimensions() []Dimension {
	return []Dimension{
		{
			ID:          "date_created_week",
			Name:        "created_week",
			DisplayName: "Week Created",
			DataType:    TypeDate,
			Source:      SourceComputed,
			Field:       "created_at",
			Granularity: "week",
			Expression:  "DATE_TRUNC('week', created_at)",
		},
		{
			ID:          "date_created_month",
			Name:        "created_month",
			DisplayName: "Month Created",
			DataType:    TypeDate,
			Source:      SourceComputed,
			Field:       "created_at",
			Granularity: "month",
			Expression:  "DATE_TRUNC('month', created_at)",
		},
	}
}
