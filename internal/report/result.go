package report

// Result sources. Every response is tagged so callers can tell real query
// output from synthetic data.
const (
	SourceLive   = "live"
	SourceSample = "sample"
)

// DataRecord is one normalized result row. Measure values are float64 or
// nil; a row lacking a requested measure yields an explicit null, never NaN.
type DataRecord struct {
	Dimensions map[string]any `json:"dimensions"`
	Measures   map[string]any `json:"measures"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// AggregatedData is the envelope returned by report execution.
type AggregatedData struct {
	Records       []DataRecord   `json:"records"`
	TotalCount    int            `json:"totalCount"`
	FilteredCount int            `json:"filteredCount"`
	ExecutionTime int64          `json:"executionTime"` // milliseconds
	CacheHit      bool           `json:"cacheHit"`
	Source        string         `json:"source"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}
