package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tableease/internal/model"
	"tableease/internal/repository"
	"tableease/internal/service/booking"
	"tableease/pkg/rbac"
)

type BookingHandler struct {
	svc            *booking.Service
	bookingRepo    *repository.BookingRepository
	restaurantRepo *repository.RestaurantRepository
}

func NewBookingHandler(svc *booking.Service, bookingRepo *repository.BookingRepository, restaurantRepo *repository.RestaurantRepository) *BookingHandler {
	return &BookingHandler{
		svc:            svc,
		bookingRepo:    bookingRepo,
		restaurantRepo: restaurantRepo,
	}
}

type createBookingRequest struct {
	RestaurantID int       `json:"restaurant_id" binding:"required"`
	PartySize    int       `json:"party_size" binding:"required,min=1"`
	BookedFor    time.Time `json:"booked_for" binding:"required"`
}

// Create handles POST /api/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	b, err := h.svc.Create(c.Request.Context(), c.GetInt("user_id"), req.RestaurantID, req.PartySize, req.BookedFor)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrRestaurantNotFound):
			respondError(c, http.StatusNotFound, "restaurant not found")
		case errors.Is(err, booking.ErrPartyTooLarge):
			respondError(c, http.StatusUnprocessableEntity, "party size exceeds restaurant capacity")
		default:
			respondError(c, http.StatusInternalServerError, "failed to create booking")
		}
		return
	}
	respondCreated(c, b)
}

// ListMine handles GET /api/bookings
func (h *BookingHandler) ListMine(c *gin.Context) {
	items, err := h.bookingRepo.ListByUser(c.Request.Context(), c.GetInt("user_id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to fetch bookings")
		return
	}
	if items == nil {
		items = []model.Booking{}
	}
	respondOK(c, items)
}

// ListByRestaurant handles GET /api/restaurants/:id/bookings
func (h *BookingHandler) ListByRestaurant(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	if role := c.GetString("role"); role == rbac.RoleRestaurantOwner {
		rest, err := h.restaurantRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, http.StatusNotFound, "restaurant not found")
			return
		}
		if rest.OwnerID != c.GetInt("user_id") {
			respondError(c, http.StatusForbidden, "insufficient permissions")
			return
		}
	}

	items, err := h.bookingRepo.ListByRestaurant(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to fetch bookings")
		return
	}
	if items == nil {
		items = []model.Booking{}
	}
	respondOK(c, items)
}

// Cancel handles PUT /api/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid booking id")
		return
	}

	b, err := h.bookingRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusNotFound, "booking not found")
		return
	}
	if b.UserID != c.GetInt("user_id") {
		respondError(c, http.StatusForbidden, "insufficient permissions")
		return
	}
	if b.Status == model.BookingStatusCancelled {
		respondOK(c, b)
		return
	}

	if err := h.bookingRepo.UpdateStatus(c.Request.Context(), id, model.BookingStatusCancelled); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to cancel booking")
		return
	}
	b.Status = model.BookingStatusCancelled
	respondOK(c, b)
}
