package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ColumnInfo is one row of the get_table_columns database function.
type ColumnInfo struct {
	Name string `json:"column_name"`
	Type string `json:"data_type"`
}

// ReportRPCResult is the envelope returned by execute_custom_report_query.
type ReportRPCResult struct {
	Success bool             `json:"success"`
	Data    []map[string]any `json:"data"`
	Message string           `json:"message"`
}

// GetTableColumns introspects a table's columns via the get_table_columns
// database function.
func (s *Store) GetTableColumns(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := s.QueryRows(ctx, "SELECT column_name, data_type FROM get_table_columns($1)", table)
	if err != nil {
		return nil, fmt.Errorf("get_table_columns(%s): %w", table, err)
	}

	columns := make([]ColumnInfo, 0, len(rows))
	for _, row := range rows {
		col := ColumnInfo{}
		if v, ok := row["column_name"].(string); ok {
			col.Name = v
		}
		if v, ok := row["data_type"].(string); ok {
			col.Type = v
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// ExecuteReportRPC calls the execute_custom_report_query database function
// with a JSON report configuration.
func (s *Store) ExecuteReportRPC(ctx context.Context, reportConfig any, limit, offset int) (*ReportRPCResult, error) {
	cfgJSON, err := json.Marshal(reportConfig)
	if err != nil {
		return nil, fmt.Errorf("marshal report configuration: %w", err)
	}

	var raw []byte
	err = s.Pool.QueryRow(ctx,
		"SELECT execute_custom_report_query($1::jsonb, $2, $3)",
		string(cfgJSON), limit, offset,
	).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("execute_custom_report_query: %w", err)
	}

	var result ReportRPCResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode execute_custom_report_query result: %w", err)
	}
	return &result, nil
}

// IsMissingFunction reports whether err indicates the database function (or
// its table) does not exist, which means the backing migration has not been
// applied. PostgREST surfaces this as a 404, pgx as SQLSTATE 42883.
func IsMissingFunction(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "42883" || pgErr.Code == "42P01" {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "404") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "does not exist")
}
