package engine

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"sporeless-reporting/internal/catalog"
	"sporeless-reporting/internal/config"
	"sporeless-reporting/internal/instrument"
	"sporeless-reporting/internal/query"
	"sporeless-reporting/internal/report"
	"sporeless-reporting/internal/sample"
	"sporeless-reporting/internal/store"
)

// Querier is the database surface the executor needs. *store.Store
// satisfies it; tests substitute fakes.
type Querier interface {
	QueryRows(ctx context.Context, sql string, args ...any) ([]map[string]any, error)
	ExecuteReportRPC(ctx context.Context, reportConfig any, limit, offset int) (*store.ReportRPCResult, error)
}

// Executor runs report configurations. Live mode builds and executes one
// parameterized query (or the aggregation RPC, per strategy); sample mode
// generates synthetic data. A failed live query is an error to the caller,
// never silently replaced with sample output.
type Executor struct {
	db      Querier
	catalog *catalog.Catalog
	deriver *Deriver
	history *instrument.History
	cfg     config.ReportingConfig

	// rpcUnavailable latches once the aggregation function is found
	// missing, so later requests skip straight to direct SQL.
	rpcUnavailable atomic.Bool
}

func NewExecutor(db Querier, cat *catalog.Catalog, history *instrument.History, cfg config.ReportingConfig) *Executor {
	return &Executor{
		db:      db,
		catalog: cat,
		deriver: NewDeriver(),
		history: history,
		cfg:     cfg,
	}
}

// Execute runs a report and returns the normalized envelope.
func (e *Executor) Execute(ctx context.Context, rc *report.ReportConfig) (*report.AggregatedData, error) {
	start := time.Now()

	if err := rc.Resolve(e.catalog); err != nil {
		return nil, InvalidConfigError(err)
	}
	if err := rc.Validate(); err != nil {
		return nil, InvalidConfigError(err)
	}

	mode := rc.Mode
	if mode == "" {
		mode = e.cfg.Mode
	}

	var (
		result *report.AggregatedData
		err    error
	)
	if mode == report.ModeSample {
		result = e.executeSample(rc)
	} else {
		result, err = e.executeLive(ctx, rc)
	}

	elapsed := time.Since(start).Milliseconds()
	exec := instrument.Execution{
		ID:          uuid.NewString(),
		ChartType:   rc.ChartType,
		Mode:        mode,
		Strategy:    e.cfg.Strategy,
		DurationMs:  elapsed,
		StartedAt:   start.UTC(),
		ReportName:  rc.Name,
		SourceCount: len(rc.DataSources),
	}
	if err != nil {
		exec.Status = "error"
		exec.Error = err.Error()
		e.history.Record(exec)
		return nil, err
	}

	result.ExecutionTime = elapsed
	exec.Status = "ok"
	exec.RowCount = len(result.Records)
	e.history.Record(exec)
	return result, nil
}

func (e *Executor) executeSample(rc *report.ReportConfig) *report.AggregatedData {
	gen := sample.New(time.Now().UnixNano())
	records := gen.Generate(rc)
	if err := e.deriver.Apply(records, rc.DerivedMeasures); err != nil {
		log.Printf("WARN: derived measures on sample data: %v", err)
	}
	return e.envelope(rc, records, report.SourceSample)
}

func (e *Executor) executeLive(ctx context.Context, rc *report.ReportConfig) (*report.AggregatedData, error) {
	rows, kind, err := e.fetchRows(ctx, rc)
	if err != nil {
		var appErr *AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, QueryFailedError(err)
	}

	records := NormalizeRows(rows, rc, kind)
	if err := e.deriver.Apply(records, rc.DerivedMeasures); err != nil {
		return nil, DeriveFailedError(err)
	}
	return e.envelope(rc, records, report.SourceLive), nil
}

// fetchRows picks the execution strategy. The RPC strategy calls the
// backend aggregation function and falls back to direct SQL when the
// function is not installed; the direct strategy always builds locally.
func (e *Executor) fetchRows(ctx context.Context, rc *report.ReportConfig) ([]map[string]any, RowKind, error) {
	kind := RowAggregated
	if rc.RawShape() {
		kind = RowRaw
	}

	if e.cfg.Strategy == config.StrategyRPC && !e.rpcUnavailable.Load() {
		limit := rc.Limit
		if limit <= 0 {
			limit = e.cfg.RPCRowLimit
		}
		res, err := e.db.ExecuteReportRPC(ctx, rc, limit, rc.Offset)
		if err == nil {
			if !res.Success {
				return nil, kind, &AppError{Code: "QUERY_FAILED", Status: 502, Message: res.Message}
			}
			return res.Data, kind, nil
		}
		if !store.IsMissingFunction(err) {
			return nil, kind, err
		}
		e.rpcUnavailable.Store(true)
		log.Printf("WARN: execute_custom_report_query function missing, falling back to direct queries: %v", err)
	}

	if rc.Limit <= 0 {
		rc.Limit = e.cfg.RowLimit
	}
	q, err := query.Build(rc)
	if err != nil {
		return nil, kind, err
	}
	rows, err := e.db.QueryRows(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, kind, err
	}
	return rows, kind, nil
}

func (e *Executor) envelope(rc *report.ReportConfig, records []report.DataRecord, source string) *report.AggregatedData {
	return &report.AggregatedData{
		Records:       records,
		TotalCount:    len(records),
		FilteredCount: len(records),
		Source:        source,
		Metadata: map[string]any{
			"lastUpdated": time.Now().UTC().Format(time.RFC3339),
			"dimensions":  rc.Dimensions,
			"measures":    rc.Measures,
			"filters":     rc.Filters,
		},
	}
}
