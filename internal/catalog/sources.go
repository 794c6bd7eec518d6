package catalog

// Stable data source IDs.
const (
	SourcePetriObservations    = "petri_observations"
	SourceGasifierObservations = "gasifier_observations"
	SourceSubmissions          = "submissions"
	SourceSites                = "sites"
	SourcePilotPrograms        = "pilot_programs"
	SourceComputed             = "computed"
)

// builtinSources is the static description of the reporting schema. The
// observation sources always read the partitioned physical tables, which
// embed program_id/site_id/submission_id directly.
func builtinSources() []DataSource {
	return []DataSource{
		{
			ID:            SourcePetriObservations,
			Name:          "Petri Observations",
			Description:   "Petri dish growth observations and measurements",
			Schema:        "public",
			Table:         "petri_observations_partitioned",
			Joinable:      true,
			IsPartitioned: true,
			PartitionKeys: []string{"program_id", "site_id", "submission_id"},
			Fields: []Field{
				{Name: "observation_id", Type: TypeUUID, DisplayName: "Observation ID"},
				{Name: "submission_id", Type: TypeUUID, DisplayName: "Submission ID"},
				{Name: "program_id", Type: TypeUUID, DisplayName: "Program ID"},
				{Name: "site_id", Type: TypeUUID, DisplayName: "Site ID"},
				{Name: "petri_code", Type: TypeText, DisplayName: "Petri Code"},
				{Name: "fungicide_used", Type: TypeEnum, DisplayName: "Fungicide Used",
					EnumValues: []string{"Yes", "No"}},
				{Name: "petri_growth_stage", Type: TypeEnum, DisplayName: "Growth Stage",
					EnumValues: []string{"None", "Trace", "Very Low", "Low", "Moderate", "Moderately High", "High", "Very High", "Hazardous", "TNTC Overrun"}},
				{Name: "growth_index", Type: TypeNumeric, DisplayName: "Growth Index"},
				{Name: "growth_progression", Type: TypeNumeric, DisplayName: "Growth Progression"},
				{Name: "growth_aggression", Type: TypeNumeric, DisplayName: "Growth Aggression"},
				{Name: "growth_velocity", Type: TypeNumeric, DisplayName: "Growth Velocity"},
				{Name: "placement", Type: TypeEnum, DisplayName: "Placement",
					EnumValues: []string{"P1", "P2", "P3", "P4", "P5", "S1", "R1"}},
				{Name: "outdoor_temperature", Type: TypeNumeric, DisplayName: "Outdoor Temperature"},
				{Name: "outdoor_humidity", Type: TypeNumeric, DisplayName: "Outdoor Humidity"},
				{Name: "todays_day_of_phase", Type: TypeInteger, DisplayName: "Day of Phase"},
				{Name: "x_position", Type: TypeNumeric, DisplayName: "X Position"},
				{Name: "y_position", Type: TypeNumeric, DisplayName: "Y Position"},
				{Name: "trend_petri_velocity", Type: TypeEnum, DisplayName: "Petri Velocity Trend",
					EnumValues: []string{"Improving", "Stable", "Declining", "Unknown"}},
				{Name: "experimental_role", Type: TypeEnum, DisplayName: "Experimental Role",
					EnumValues: []string{"CONTROL", "EXPERIMENTAL", "IGNORE_COMBINED", "INDIVIDUAL_SAMPLE", "INSUFFICIENT_DATA"}},
				{Name: "image_url", Type: TypeText, DisplayName: "Image URL"},
				{Name: "created_at", Type: TypeTimestamp, DisplayName: "Created Date"},
				{Name: "updated_at", Type: TypeTimestamp, DisplayName: "Updated Date"},
			},
		},
		{
			ID:            SourceGasifierObservations,
			Name:          "Gasifier Observations",
			Description:   "Gasifier placement and effectiveness data",
			Schema:        "public",
			Table:         "gasifier_observations_partitioned",
			Joinable:      true,
			IsPartitioned: true,
			PartitionKeys: []string{"program_id", "site_id", "submission_id"},
			Fields: []Field{
				{Name: "observation_id", Type: TypeUUID, DisplayName: "Observation ID"},
				{Name: "submission_id", Type: TypeUUID, DisplayName: "Submission ID"},
				{Name: "program_id", Type: TypeUUID, DisplayName: "Program ID"},
				{Name: "site_id", Type: TypeUUID, DisplayName: "Site ID"},
				{Name: "gasifier_code", Type: TypeText, DisplayName: "Gasifier Code"},
				{Name: "chemical_type", Type: TypeEnum, DisplayName: "Chemical Type",
					EnumValues: []string{"CLO2", "Chemical A", "Chemical B", "Chemical C", "Chemical D"}},
				{Name: "anomaly", Type: TypeBoolean, DisplayName: "Anomaly Detected"},
				{Name: "measure", Type: TypeNumeric, DisplayName: "Gasifier Reading"},
				{Name: "linear_reading", Type: TypeNumeric, DisplayName: "Linear Reading"},
				{Name: "linear_reduction_per_day", Type: TypeNumeric, DisplayName: "Momentum of Flow"},
				{Name: "flow_rate", Type: TypeNumeric, DisplayName: "Flow Rate"},
				{Name: "footage_from_origin_x", Type: TypeNumeric, DisplayName: "X Coordinate"},
				{Name: "footage_from_origin_y", Type: TypeNumeric, DisplayName: "Y Coordinate"},
				{Name: "placement_height", Type: TypeEnum, DisplayName: "Placement Height",
					EnumValues: []string{"Floor", "Low", "Medium", "High", "Ceiling"}},
				{Name: "directional_placement", Type: TypeEnum, DisplayName: "Directional Placement",
					EnumValues: []string{"North", "South", "East", "West", "Northeast", "Northwest", "Southeast", "Southwest", "Center"}},
				{Name: "placement_strategy", Type: TypeEnum, DisplayName: "Placement Strategy",
					EnumValues: []string{"Strategic", "Random", "Grid", "Perimeter"}},
				{Name: "outdoor_temperature", Type: TypeNumeric, DisplayName: "Outdoor Temperature"},
				{Name: "outdoor_humidity", Type: TypeNumeric, DisplayName: "Outdoor Humidity"},
				{Name: "trend_gasifier_velocity", Type: TypeEnum, DisplayName: "Gasifier Velocity Trend",
					EnumValues: []string{"Improving", "Stable", "Declining", "Unknown"}},
				{Name: "forecasted_expiration", Type: TypeTimestamp, DisplayName: "Forecasted Expiration"},
				{Name: "image_url", Type: TypeText, DisplayName: "Image URL"},
				{Name: "notes", Type: TypeText, DisplayName: "Notes"},
				{Name: "created_at", Type: TypeTimestamp, DisplayName: "Created Date"},
				{Name: "last_updated_by_user_id", Type: TypeUUID, DisplayName: "Last Updated By"},
			},
		},
		{
			ID:          SourceSubmissions,
			Name:        "Environmental Submissions",
			Description: "Environmental conditions and submission data",
			Schema:      "public",
			Table:       "submissions",
			Joinable:    true,
			Fields: []Field{
				{Name: "submission_id", Type: TypeUUID, DisplayName: "Submission ID"},
				{Name: "site_id", Type: TypeUUID, DisplayName: "Site ID"},
				{Name: "program_id", Type: TypeUUID, DisplayName: "Program ID"},
				{Name: "temperature", Type: TypeNumeric, DisplayName: "Temperature (°F)"},
				{Name: "humidity", Type: TypeNumeric, DisplayName: "Humidity (%)"},
				{Name: "indoor_temperature", Type: TypeNumeric, DisplayName: "Indoor Temperature (°F)"},
				{Name: "indoor_humidity", Type: TypeNumeric, DisplayName: "Indoor Humidity (%)"},
				{Name: "airflow", Type: TypeText, DisplayName: "Airflow"},
				{Name: "weather", Type: TypeText, DisplayName: "Weather"},
				{Name: "created_at", Type: TypeTimestamp, DisplayName: "Created Date"},
			},
		},
		{
			ID:          SourceSites,
			Name:        "Sites",
			Description: "Research site information",
			Schema:      "public",
			Table:       "sites",
			Joinable:    true,
			Fields: []Field{
				{Name: "site_id", Type: TypeUUID, DisplayName: "Site ID"},
				{Name: "program_id", Type: TypeUUID, DisplayName: "Program ID"},
				{Name: "site_name", Type: TypeText, DisplayName: "Site Name"},
				{Name: "latitude", Type: TypeNumeric, DisplayName: "Latitude"},
				{Name: "longitude", Type: TypeNumeric, DisplayName: "Longitude"},
				{Name: "created_at", Type: TypeTimestamp, DisplayName: "Created Date"},
			},
		},
		{
			ID:          SourcePilotPrograms,
			Name:        "Pilot Programs",
			Description: "Research program information",
			Schema:      "public",
			Table:       "pilot_programs",
			Joinable:    true,
			Fields: []Field{
				{Name: "program_id", Type: TypeUUID, DisplayName: "Program ID"},
				{Name: "company_id", Type: TypeUUID, DisplayName: "Company ID"},
				{Name: "program_name", Type: TypeText, DisplayName: "Program Name"},
				{Name: "status", Type: TypeText, DisplayName: "Status"},
				{Name: "start_date", Type: TypeDate, DisplayName: "Start Date"},
				{Name: "end_date", Type: TypeDate, DisplayName: "End Date"},
				{Name: "created_at", Type: TypeTimestamp, DisplayName: "Created Date"},
			},
		},
	}
}
