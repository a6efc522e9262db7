package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/internal/domain/account"
	"github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/internal/domain/hostel"
)

const unknownCustomer = "Unknown"

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	HostelID uuid.UUID `json:"hostel_id" binding:"required"`
	CheckIn  string    `json:"check_in" binding:"required"`
	CheckOut string    `json:"check_out" binding:"required"`
	Guests   int       `json:"guests"`
}

// UpdateStatusRequest is the body of a landlord status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// HostelSnapshotDTO is the denormalized hostel shown next to a booking.
type HostelSnapshotDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	PriceCents int64     `json:"price_cents"`
	Currency   string    `json:"currency"`
}

// GuestSnapshotDTO is the denormalized guest shown next to a booking.
type GuestSnapshotDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID          `json:"id"`
	BookingNumber   string             `json:"booking_number"`
	UserID          uuid.UUID          `json:"user_id"`
	HostelID        uuid.UUID          `json:"hostel_id"`
	CheckIn         string             `json:"check_in"`
	CheckOut        string             `json:"check_out"`
	Nights          int                `json:"nights"`
	Guests          int                `json:"guests"`
	TotalPriceCents int64              `json:"total_price_cents"`
	Currency        string             `json:"currency"`
	Status          string             `json:"status"`
	Version         int64              `json:"version"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	Hostel          *HostelSnapshotDTO `json:"hostel,omitempty"`
	User            *GuestSnapshotDTO  `json:"user,omitempty"`
}

// LandlordBookingDTO adds the display fields a landlord dashboard needs.
type LandlordBookingDTO struct {
	BookingDTO
	HostelName    string `json:"hostel_name"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

// AvailableRoomsDTO is the free capacity of a hostel.
type AvailableRoomsDTO struct {
	HostelID       uuid.UUID `json:"hostel_id"`
	Capacity       int       `json:"capacity"`
	AvailableRooms int       `json:"available_rooms"`
	CheckIn        string    `json:"check_in,omitempty"`
	CheckOut       string    `json:"check_out,omitempty"`
}

// AvailabilityDTO is the answer to an availability check.
type AvailabilityDTO struct {
	HostelID  uuid.UUID `json:"hostel_id"`
	CheckIn   string    `json:"check_in"`
	CheckOut  string    `json:"check_out"`
	Guests    int       `json:"guests"`
	Available bool      `json:"available"`
	Remaining int       `json:"remaining"`
}

func toBookingDTO(bk *booking.Booking, h *hostel.Hostel, g *account.Guest) BookingDTO {
	dto := BookingDTO{
		ID:              bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		UserID:          bk.UserID(),
		HostelID:        bk.HostelID(),
		CheckIn:         bk.Stay().CheckIn.Format(booking.DateLayout),
		CheckOut:        bk.Stay().CheckOut.Format(booking.DateLayout),
		Nights:          bk.Stay().Nights(),
		Guests:          bk.Guests(),
		TotalPriceCents: bk.TotalPriceCents(),
		Currency:        bk.Currency(),
		Status:          string(bk.Status()),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
	if h != nil {
		dto.Hostel = &HostelSnapshotDTO{
			ID:         h.ID,
			Name:       h.Name,
			Location:   h.Location,
			PriceCents: h.PriceCents,
			Currency:   h.CurrencyOrDefault(),
		}
	}
	if g != nil {
		dto.User = &GuestSnapshotDTO{ID: g.ID, Name: g.Name, Email: g.Email}
	}
	return dto
}

func toLandlordBookingDTO(bk *booking.Booking, h *hostel.Hostel, g *account.Guest) LandlordBookingDTO {
	dto := LandlordBookingDTO{
		BookingDTO:   toBookingDTO(bk, h, g),
		CustomerName: unknownCustomer,
	}
	if h != nil {
		dto.HostelName = h.Name
	}
	if g != nil {
		if g.Name != "" {
			dto.CustomerName = g.Name
		}
		dto.CustomerEmail = g.Email
	}
	return dto
}
