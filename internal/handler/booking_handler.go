package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/internal/application"
	"github.com/hostelhub/service-booking/internal/domain/account"
	"github.com/hostelhub/service-booking/pkg/auth"
	"github.com/hostelhub/service-booking/pkg/domain"
	"github.com/hostelhub/service-booking/pkg/middleware"
	"github.com/hostelhub/service-booking/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BookingUseCases is the booking application API the handlers drive.
type BookingUseCases interface {
	CreateBooking(ctx context.Context, caller account.Caller, req application.CreateBookingRequest) (*application.BookingDTO, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, status string, page, perPage int) (*domain.PaginatedResult[application.BookingDTO], error)
	GetBookingByID(ctx context.Context, bookingID, userID uuid.UUID) (*application.BookingDTO, error)
	CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) (*application.BookingDTO, error)
	GetHostelBookings(ctx context.Context, hostelID, landlordID uuid.UUID, status string, page, perPage int) (*domain.PaginatedResult[application.LandlordBookingDTO], error)
	GetLandlordBookings(ctx context.Context, landlordID uuid.UUID, status string, page, perPage int) (*domain.PaginatedResult[application.LandlordBookingDTO], error)
	UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status string, landlordID uuid.UUID) (*application.BookingDTO, error)
	GetAvailableRooms(ctx context.Context, hostelID uuid.UUID, checkIn, checkOut string) (*application.AvailableRoomsDTO, error)
	CheckAvailability(ctx context.Context, hostelID uuid.UUID, checkIn, checkOut string, guests int) (*application.AvailabilityDTO, error)
	ExportLandlordBookings(ctx context.Context, landlordID uuid.UUID, status string) ([]byte, error)
}

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service BookingUseCases
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service BookingUseCases) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
// Authenticated groups are throttled per user, the public group per client IP.
// A nil limiter disables throttling.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, limiter *middleware.RateLimiter) {
	authMW := middleware.AuthMiddleware(jwtManager)
	rateLimit := middleware.RateLimitMiddleware(limiter)
	landlordOnly := middleware.RequireRole(auth.RoleLandlord)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW, rateLimit)
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id/cancel", h.CancelBooking)
		bookings.PUT("/:id/status", landlordOnly, h.UpdateBookingStatus)
	}

	landlord := r.Group("/api/v1/landlord")
	landlord.Use(authMW, rateLimit, landlordOnly)
	{
		landlord.GET("/bookings", h.ListLandlordBookings)
		landlord.GET("/bookings/export", h.ExportLandlordBookings)
		landlord.GET("/hostels/:id/bookings", h.ListHostelBookings)
	}

	hostels := r.Group("/api/v1/hostels")
	hostels.Use(rateLimit)
	{
		hostels.GET("/:id/availability", h.CheckAvailability)
		hostels.GET("/:id/available-rooms", h.GetAvailableRooms)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var body struct {
		HostelID uuid.UUID `json:"hostel_id" binding:"required"`
		CheckIn  string    `json:"check_in" binding:"required"`
		CheckOut string    `json:"check_out" binding:"required"`
		Guests   *int      `json:"guests"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	req := application.CreateBookingRequest{
		HostelID: body.HostelID,
		CheckIn:  body.CheckIn,
		CheckOut: body.CheckOut,
		Guests:   1,
	}
	if body.Guests != nil {
		req.Guests = *body.Guests
	}

	result, err := h.service.CreateBooking(c.Request.Context(), caller, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Lists the caller's own bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	page, perPage := parsePagination(c)
	result, err := h.service.GetUserBookings(c.Request.Context(), userID, c.Query("status"), page, perPage)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, *result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetBookingByID(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelBooking handles PUT /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateBookingStatus handles PUT /api/v1/bookings/:id/status (landlord).
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	landlordID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateBookingStatus(c.Request.Context(), bookingID, req.Status, landlordID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListLandlordBookings handles GET /api/v1/landlord/bookings.
func (h *BookingHandler) ListLandlordBookings(c *gin.Context) {
	landlordID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	page, perPage := parsePagination(c)
	result, err := h.service.GetLandlordBookings(c.Request.Context(), landlordID, c.Query("status"), page, perPage)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, *result)
}

// ListHostelBookings handles GET /api/v1/landlord/hostels/:id/bookings.
func (h *BookingHandler) ListHostelBookings(c *gin.Context) {
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

	page, perPage := parsePagination(c)
	result, err := h.service.GetHostelBookings(c.Request.Context(), hostelID, landlordID, c.Query("status"), page, perPage)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, *result)
}

// ExportLandlordBookings handles GET /api/v1/landlord/bookings/export.
func (h *BookingHandler) ExportLandlordBookings(c *gin.Context) {
	landlordID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	data, err := h.service.ExportLandlordBookings(c.Request.Context(), landlordID, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("bookings-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// CheckAvailability handles GET /api/v1/hostels/:id/availability.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	hostelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hostel ID")
		return
	}

	guests, err := strconv.Atoi(c.DefaultQuery("guests", "1"))
	if err != nil {
		response.BadRequest(c, "guests must be a number")
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), hostelID,
		c.Query("check_in"), c.Query("check_out"), guests)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetAvailableRooms handles GET /api/v1/hostels/:id/available-rooms.
func (h *BookingHandler) GetAvailableRooms(c *gin.Context) {
	hostelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hostel ID")
		return
	}

	result, err := h.service.GetAvailableRooms(c.Request.Context(), hostelID,
		c.Query("check_in"), c.Query("check_out"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func callerFrom(c *gin.Context) (account.Caller, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return account.Caller{}, false
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		return account.Caller{}, false
	}
	return account.Caller{UserID: userID, Role: account.Role(role)}, true
}

// parsePagination extracts page and per_page query parameters with defaults.
// limit is accepted as an alias of per_page.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", c.DefaultQuery("limit", "20")))
	return domain.NormalizePage(page, perPage)
}
