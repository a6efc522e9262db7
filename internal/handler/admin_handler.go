package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	bookingDomain "github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/pkg/auth"
	"github.com/hostelhub/service-booking/pkg/middleware"
	"github.com/hostelhub/service-booking/pkg/response"
)

// StatsUseCases is the reporting API behind the stats endpoints.
type StatsUseCases interface {
	GetBookingStats(ctx context.Context, hostelID, landlordID uuid.UUID) (*bookingDomain.Stats, error)
	GetLandlordStats(ctx context.Context, landlordID uuid.UUID) (*bookingDomain.Stats, error)
	GetPlatformStats(ctx context.Context) (*bookingDomain.Stats, error)
}

// StatsHandler serves booking statistics to landlords and admins.
type StatsHandler struct {
	service StatsUseCases
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(service StatsUseCases) *StatsHandler {
	return &StatsHandler{service: service}
}

// RegisterRoutes registers landlord and admin stats routes.
func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, limiter *middleware.RateLimiter) {
	authMW := middleware.AuthMiddleware(jwtManager)
	rateLimit := middleware.RateLimitMiddleware(limiter)

	landlord := r.Group("/api/v1/landlord")
	landlord.Use(authMW, rateLimit, middleware.RequireRole(auth.RoleLandlord))
	{
		landlord.GET("/stats", h.LandlordStats)
		landlord.GET("/hostels/:id/stats", h.HostelStats)
	}

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, rateLimit, middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/stats/bookings", h.PlatformStats)
	}
}

// HostelStats handles GET /api/v1/landlord/hostels/:id/stats.
func (h *StatsHandler) HostelStats(c *gin.Context) {
	hostelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hostel ID")
		return
	}

	landlordID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	stats, err := h.service.GetBookingStats(c.Request.Context(), hostelID, landlordID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// LandlordStats handles GET /api/v1/landlord/stats.
func (h *StatsHandler) LandlordStats(c *gin.Context) {
	landlordID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	stats, err := h.service.GetLandlordStats(c.Request.Context(), landlordID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// PlatformStats handles GET /api/v1/admin/stats/bookings.
func (h *StatsHandler) PlatformStats(c *gin.Context) {
	stats, err := h.service.GetPlatformStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
