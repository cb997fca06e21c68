package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/finwage/payroll_backend/internal/core/ports/services"
	"github.com/finwage/payroll_backend/internal/middleware"
	"github.com/finwage/payroll_backend/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Caller identity comes from the trusted X-User-ID header set by the
	// upstream proxy; there is no session handling in this service.
	v1 := r.Group("/api/v1", middleware.IdentityMiddleware())

	registerAssignmentRoutes(v1, services.Payment)
	registerPaymentRoutes(v1, services.Payment)
	registerReportRoutes(v1, services.Report)
}
