package engine

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"sporeless-reporting/internal/catalog"
	"sporeless-reporting/internal/config"
	"sporeless-reporting/internal/instrument"
	"sporeless-reporting/internal/report"
)

func newTestAPI(db Querier) *fiber.App {
	cat := catalog.Default()
	history := instrument.NewHistory(10)
	ex := NewExecutor(db, cat, history, config.ReportingConfig{
		Mode: report.ModeLive, Strategy: config.StrategyDirect, RowLimit: 500,
	})
	h := NewHandler(ex, NewResolver(&fakeIntrospector{err: errors.New("not found")}), cat)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *AppError
			if errors.As(err, &appErr) {
				return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
			}
			return fiber.DefaultErrorHandler(c, err)
		},
	})
	RegisterRoutes(app, h)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	return resp, raw
}

func TestListSources(t *testing.T) {
	app := newTestAPI(&fakeQuerier{})

	resp, raw := doJSON(t, app, "GET", "/api/reports/sources", "")
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	var body struct {
		Data []catalog.DataSource `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 5 {
		t.Fatalf("sources = %d, want 5", len(body.Data))
	}
}

func TestDimensionsEndpoint(t *testing.T) {
	app := newTestAPI(&fakeQuerier{})

	resp, raw := doJSON(t, app, "POST", "/api/reports/dimensions",
		`{"dataSources":[{"id":"petri_observations"}]}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	var body struct {
		Data []catalog.Dimension `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, d := range body.Data {
		if d.ID == "petri_observations.placement" {
			found = true
		}
	}
	if !found {
		t.Fatalf("placement dimension missing: %s", raw)
	}
}

func TestDimensionsUnknownSource(t *testing.T) {
	app := newTestAPI(&fakeQuerier{})

	resp, raw := doJSON(t, app, "POST", "/api/reports/dimensions",
		`{"dataSources":[{"id":"nope"}]}`)
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(raw, &errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errResp.Error.Code != "UNKNOWN_SOURCE" {
		t.Fatalf("code = %s", errResp.Error.Code)
	}
}

func TestQueryEndpoint(t *testing.T) {
	db := &fakeQuerier{rows: []map[string]any{
		{"placement": "P1", "growth_index": 55.0},
	}}
	app := newTestAPI(db)

	resp, raw := doJSON(t, app, "POST", "/api/reports/query", `{
		"dataSources": [{"id": "petri_observations"}],
		"dimensions": [{"id": "petri_observations.placement", "name": "placement", "field": "placement", "source": "petri_observations", "dataType": "enum"}],
		"measures": [{"id": "petri_observations.growth_index.avg", "name": "growth_index_avg", "field": "growth_index", "source": "petri_observations", "aggregation": "avg"}],
		"chartType": "bar"
	}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	var result report.AggregatedData
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Source != report.SourceLive || result.TotalCount != 1 {
		t.Fatalf("envelope = %+v", result)
	}
}

func TestQueryInvalidBody(t *testing.T) {
	app := newTestAPI(&fakeQuerier{})

	resp, _ := doJSON(t, app, "POST", "/api/reports/query", `{not json`)
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestPreviewForcesSampleMode(t *testing.T) {
	db := &fakeQuerier{queryErr: errors.New("must not be called")}
	app := newTestAPI(db)

	resp, raw := doJSON(t, app, "POST", "/api/reports/preview", `{
		"dataSources": [{"id": "petri_observations"}],
		"dimensions": [{"id": "petri_observations.placement", "name": "placement", "field": "placement", "source": "petri_observations", "dataType": "enum"}],
		"measures": [{"id": "petri_observations.growth_index.avg", "name": "growth_index_avg", "field": "growth_index", "source": "petri_observations", "aggregation": "avg"}],
		"chartType": "bar",
		"mode": "live"
	}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	var result report.AggregatedData
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Source != report.SourceSample {
		t.Fatalf("source = %s, want sample", result.Source)
	}
}

func TestExecutionsEndpoint(t *testing.T) {
	db := &fakeQuerier{rows: []map[string]any{{"placement": "P1", "growth_index": 1.0}}}
	app := newTestAPI(db)

	doJSON(t, app, "POST", "/api/reports/query", `{
		"dataSources": [{"id": "petri_observations"}],
		"dimensions": [{"id": "petri_observations.placement", "name": "placement", "field": "placement", "source": "petri_observations", "dataType": "enum"}],
		"measures": [{"id": "petri_observations.growth_index.avg", "name": "growth_index_avg", "field": "growth_index", "source": "petri_observations", "aggregation": "avg"}],
		"chartType": "bar"
	}`)

	resp, raw := doJSON(t, app, "GET", "/api/reports/executions", "")
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d: %s", resp.StatusCode, raw)
	}
	var body struct {
		Data []instrument.Execution `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].Status != "ok" {
		t.Fatalf("executions = %+v", body.Data)
	}
}
