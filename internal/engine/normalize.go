package engine

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"sporeless-reporting/internal/catalog"
	"sporeless-reporting/internal/report"
)

// RowKind tells the normalizer which query shape produced a row set. The
// executor sets it from the shape it built; rows are never sniffed.
type RowKind int

const (
	RowAggregated RowKind = iota
	RowRaw
)

// NormalizeRows maps raw result rows into chart-ready records. Dimension
// and measure values are resolved through alias/field cascades, temporal
// dimensions format as YYYY-MM-DD, and missing measures become explicit
// nulls.
func NormalizeRows(rows []map[string]any, cfg *report.ReportConfig, kind RowKind) []report.DataRecord {
	records := make([]report.DataRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, normalizeRow(row, cfg, kind))
	}
	return records
}

func normalizeRow(row map[string]any, cfg *report.ReportConfig, kind RowKind) report.DataRecord {
	rec := report.DataRecord{
		Dimensions: make(map[string]any),
		Measures:   make(map[string]any),
		Metadata:   make(map[string]any),
	}

	for _, dim := range cfg.Dimensions {
		rec.Dimensions[dim.Field] = dimensionValue(row, dim)
	}

	if v, ok := row["site_code"]; ok && v != nil {
		rec.Metadata["site_code"] = v
	}
	if v, ok := row["global_submission_id"]; ok && v != nil {
		rec.Metadata["global_submission_id"] = v
	}

	for _, segment := range cfg.SegmentBy {
		normalizeSegment(row, segment, rec.Metadata)
	}

	for _, m := range cfg.Measures {
		key := m.Field
		if key == "" || key == "*" {
			key = m.Name
		}
		rec.Measures[key] = measureValue(row, m, kind)
	}

	if kind == RowRaw {
		rawMetadata(row, rec.Metadata)
	}
	return rec
}

// dimensionValue resolves a dimension through the alias cascade: aliased
// name first, then raw field, then the human-readable label columns for
// foreign keys.
func dimensionValue(row map[string]any, dim catalog.Dimension) any {
	value := firstPresent(row, dim.Name, dim.Field, dim.ID)

	switch dim.Field {
	case "program_id":
		if v := firstPresent(row, "program_name", "program_name_raw"); v != nil {
			value = v
		}
	case "site_id":
		if v := firstPresent(row, "site_name", "site_name_raw"); v != nil {
			value = v
		}
	case "submission_id":
		if v := firstPresent(row, "submission_display"); v != nil {
			value = v
		}
	}

	if dim.DataType == catalog.TypeDate || dim.DataType == catalog.TypeTimestamp {
		value = formatDate(value)
	}
	return value
}

// normalizeSegment stores segment values in metadata, never in dimensions,
// so segments cannot overwrite configured grouping keys.
func normalizeSegment(row map[string]any, segment string, metadata map[string]any) {
	key := "segment_" + segment
	switch segment {
	case "program_id":
		metadata["segment_program_name"] = firstPresent(row, "segment_program_name", "program_name")
		metadata["segment_program_start_date"] = row["segment_program_start_date"]
		metadata["segment_program_end_date"] = row["segment_program_end_date"]
		metadata["segment_program_id"] = firstPresent(row, "segment_program_id", "program_id")
	case "site_id":
		// Grouping key is the site code; the display name rides separately.
		code := firstPresent(row, "segment_site_id", "site_code", "site_id")
		name := firstPresent(row, "segment_site_name", "site_name")
		if name == nil {
			name = "Unknown Site"
		}
		metadata[key] = stringify(code)
		metadata["segment_site_name"] = name
	case "submission_id":
		if v := firstPresent(row, "segment_submission_id"); v != nil {
			metadata[key] = v
		} else {
			metadata[key] = stringify(row["submission_id"])
		}
	default:
		if v := firstPresent(row, key, segment); v != nil {
			metadata[key] = stringify(v)
		}
	}
}

// measureValue resolves a measure through its lookup cascade and coerces it
// to float64 or nil. NaN never escapes.
func measureValue(row map[string]any, m catalog.Measure, kind RowKind) any {
	var value any
	if kind == RowRaw {
		value = firstPresent(row, m.Field, m.Name)
	} else {
		value = firstPresent(row, m.Field, m.Name, m.ID)
		if value == nil && m.Aggregation != "" {
			value = firstPresent(row, m.Aggregation+"_"+m.Field)
		}
	}

	if value == nil {
		return nil
	}
	f, ok := toFloat(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// rawMetadata carries drill-down identifiers and display labels for raw
// record rows.
func rawMetadata(row map[string]any, metadata map[string]any) {
	ids := []string{
		"observation_id", "submission_id", "site_id", "program_id",
		"petri_code", "gasifier_code", "created_at",
		"placement", "fungicide_used", "petri_growth_stage", "image_url",
		"x_position", "y_position", "growth_index", "todays_day_of_phase",
		"submission_display", "global_submission_id", "site_code",
	}
	for _, field := range ids {
		if v, ok := row[field]; ok && v != nil {
			metadata[field] = v
		}
	}
	if v := firstPresent(row, "program_name", "program_name_raw"); v != nil {
		metadata["program_name"] = v
	}
	if v := firstPresent(row, "site_name", "site_name_raw"); v != nil {
		metadata["site_name"] = v
	}
}

// firstPresent returns the first non-nil value among the named keys.
func firstPresent(row map[string]any, keys ...string) any {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if v, ok := row[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringify(v any) any {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// formatDate renders temporal values as YYYY-MM-DD. Unparseable values
// pass through untouched.
func formatDate(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val.Format("2006-01-02")
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t.Format("2006-01-02")
			}
		}
		return val
	default:
		return v
	}
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	case []byte:
		f, err := strconv.ParseFloat(string(val), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		f, err := strconv.ParseFloat(fmt.Sprintf("%v", v), 64)
		return f, err == nil
	}
}
