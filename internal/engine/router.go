package engine

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, h *Handler, middleware ...fiber.Handler) {
	api := app.Group("/api/reports")
	for _, mw := range middleware {
		api.Use(mw)
	}

	api.Get("/sources", h.ListSources)
	api.Post("/dimensions", h.Dimensions)
	api.Post("/measures", h.Measures)
	api.Post("/filter-fields", h.FilterFields)
	api.Post("/query", h.Query)
	api.Post("/preview", h.Preview)
	api.Get("/executions", h.Executions)
}
