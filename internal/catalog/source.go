package catalog

// DataSource describes one queryable table. ID is the stable logical name
// used as a join/alias key; Table is the physical table, which differs for
// observation sources that always read the partitioned variant.
type DataSource struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Schema        string   `json:"schema"`
	Table         string   `json:"table"`
	Joinable      bool     `json:"joinable"`
	IsPartitioned bool     `json:"isPartitioned,omitempty"`
	PartitionKeys []string `json:"partitionKeys,omitempty"`
	Fields        []Field  `json:"fields"`

	// SelectedFields restricts derivation and raw-record selection to a
	// subset of Fields when the report builder narrows a source. Empty
	// means all fields.
	SelectedFields []string `json:"selectedFields,omitempty"`
}

// GetField returns a pointer to the field with the given name, or nil.
func (s *DataSource) GetField(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// HasField returns true if the source declares a field with the given name.
func (s *DataSource) HasField(name string) bool {
	return s.GetField(name) != nil
}

// ActiveFields returns SelectedFields when set, otherwise all fields.
func (s *DataSource) ActiveFields() []Field {
	if len(s.SelectedFields) == 0 {
		return s.Fields
	}
	allowed := make(map[string]bool, len(s.SelectedFields))
	for _, name := range s.SelectedFields {
		allowed[name] = true
	}
	var fields []Field
	for _, f := range s.Fields {
		if allowed[f.Name] {
			fields = append(fields, f)
		}
	}
	return fields
}

// IsObservation returns true for the petri and gasifier observation sources.
func (s *DataSource) IsObservation() bool {
	return s.ID == SourcePetriObservations || s.ID == SourceGasifierObservations
}
