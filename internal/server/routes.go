package server

import (
	"github.com/clausewise/backend/internal/server/middleware"
	"github.com/clausewise/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Workspace routes
	apiRoutes.POST("/workspaces/:id/sync", routes.SyncWorkspaceHandler, middleware.RequirePermission("graph.sync"))
	apiRoutes.GET("/workspaces/:id", routes.GetWorkspaceHandler)
	apiRoutes.GET("/workspaces/:id/audit", routes.GetWorkspaceAuditHandler, middleware.RequireAnyPermission("audit.view", "governance.view"))
	apiRoutes.GET("/workspaces/:id/governance", routes.GetGovernanceHandler, middleware.RequirePermission("governance.view"))
	apiRoutes.PATCH("/workspaces/:id/governance", routes.PatchGovernanceHandler, middleware.RequirePermission("governance.update"))

	// Graph routes
	apiRoutes.GET("/graph/:workspaceId", routes.GetGraphHandler, middleware.RequirePermission("graph.view"))
	apiRoutes.POST("/graph/:workspaceId/recompute", routes.RecomputeGraphHandler, middleware.RequirePermission("graph.view"))

	// Drift routes
	apiRoutes.GET("/drifts", routes.ListDriftsHandler, middleware.RequirePermission("drift.view"))
	apiRoutes.GET("/drifts/high-drift-count", routes.HighDriftCountHandler, middleware.RequirePermission("drift.view"))
	apiRoutes.GET("/drifts/publish-blocked", routes.PublishBlockedHandler, middleware.RequirePermission("drift.view"))
	apiRoutes.POST("/drifts/:id/override", routes.OverrideDriftHandler, middleware.RequirePermission("drift.override"))
	apiRoutes.POST("/drifts/:id/revert", routes.RevertDriftHandler, middleware.RequirePermission("drift.revert"))
	apiRoutes.POST("/drifts/:id/approve", routes.ApproveDriftHandler, middleware.RequirePermission("drift.approve"))

	// Golden record routes
	apiRoutes.GET("/golden-records/:workspaceId", routes.GetGoldenRecordHandler, middleware.RequirePermission("golden.view"))
	apiRoutes.POST("/golden-records/:workspaceId/export", routes.ExportGoldenRecordHandler, middleware.RequirePermission("golden.export"))
	apiRoutes.POST("/golden-records/:workspaceId/publish", routes.PublishGoldenRecordHandler, middleware.RequirePermission("golden.publish"))

	// Document routes
	apiRoutes.PATCH("/variables/:id", routes.EditVariableHandler, middleware.RequirePermission("doc.edit"))
	apiRoutes.PATCH("/clauses/:id", routes.EditClauseHandler, middleware.RequirePermission("doc.edit"))
}
