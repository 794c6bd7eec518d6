package engine

import (
	"github.com/gofiber/fiber/v2"

	"sporeless-reporting/internal/catalog"
	"sporeless-reporting/internal/report"
)

type Handler struct {
	executor *Executor
	resolver *Resolver
	catalog  *catalog.Catalog
}

func NewHandler(ex *Executor, res *Resolver, cat *catalog.Catalog) *Handler {
	return &Handler{executor: ex, resolver: res, catalog: cat}
}

// sourcesRequest carries the data sources a catalog endpoint should
// derive from. Sources may arrive as bare IDs (fields filled from the
// builtin catalog) or as full definitions with a selectedFields subset.
type sourcesRequest struct {
	DataSources []catalog.DataSource `json:"dataSources"`
}

// ListSources handles GET /api/reports/sources
func (h *Handler) ListSources(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.catalog.Sources()})
}

// Dimensions handles POST /api/reports/dimensions
func (h *Handler) Dimensions(c *fiber.Ctx) error {
	sources, err := h.parseSources(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": catalog.Dimensions(sources)})
}

// Measures handles POST /api/reports/measures
func (h *Handler) Measures(c *fiber.Ctx) error {
	sources, err := h.parseSources(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": catalog.Measures(sources)})
}

// FilterFields handles POST /api/reports/filter-fields
func (h *Handler) FilterFields(c *fiber.Ctx) error {
	sources, err := h.parseSources(c)
	if err != nil {
		return err
	}
	fields := h.resolver.FilterFields(c.Context(), sources)
	return c.JSON(fiber.Map{"data": fields})
}

// Query handles POST /api/reports/query
func (h *Handler) Query(c *fiber.Ctx) error {
	var rc report.ReportConfig
	if err := c.BodyParser(&rc); err != nil {
		return respondError(c, NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body"))
	}

	result, err := h.executor.Execute(c.Context(), &rc)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Preview handles POST /api/reports/preview. It runs the same pipeline
// as Query but forces sample mode, so a report can be sketched before
// any live data exists.
func (h *Handler) Preview(c *fiber.Ctx) error {
	var rc report.ReportConfig
	if err := c.BodyParser(&rc); err != nil {
		return respondError(c, NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body"))
	}
	rc.Mode = report.ModeSample

	result, err := h.executor.Execute(c.Context(), &rc)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Executions handles GET /api/reports/executions
func (h *Handler) Executions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	return c.JSON(fiber.Map{"data": h.executor.history.Recent(limit)})
}

// parseSources reads the request body and resolves ID-only sources
// against the catalog, preserving any selectedFields restriction.
func (h *Handler) parseSources(c *fiber.Ctx) ([]catalog.DataSource, error) {
	var body sourcesRequest
	if err := c.BodyParser(&body); err != nil {
		return nil, NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body")
	}

	sources := make([]catalog.DataSource, 0, len(body.DataSources))
	for _, ds := range body.DataSources {
		if len(ds.Fields) > 0 {
			sources = append(sources, ds)
			continue
		}
		full, ok := h.catalog.Source(ds.ID)
		if !ok {
			return nil, UnknownSourceError(ds.ID)
		}
		full.SelectedFields = ds.SelectedFields
		sources = append(sources, full)
	}
	return sources, nil
}

func respondError(c *fiber.Ctx, appErr *AppError) error {
	return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
}
