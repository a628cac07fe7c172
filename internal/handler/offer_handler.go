package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tableease/internal/model"
	"tableease/internal/repository"
	"tableease/pkg/rbac"
)

type OfferHandler struct {
	offerRepo      *repository.OfferRepository
	restaurantRepo *repository.RestaurantRepository
}

func NewOfferHandler(offerRepo *repository.OfferRepository, restaurantRepo *repository.RestaurantRepository) *OfferHandler {
	return &OfferHandler{
		offerRepo:      offerRepo,
		restaurantRepo: restaurantRepo,
	}
}

// List handles GET /api/offers?placement=featured|banner|homepage
func (h *OfferHandler) List(c *gin.Context) {
	items, err := h.offerRepo.ListActive(c.Request.Context(), c.Query("placement"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to fetch offers")
		return
	}
	if items == nil {
		items = []model.Offer{}
	}
	respondOK(c, items)
}

// ListByRestaurant handles GET /api/restaurants/:id/offers
func (h *OfferHandler) ListByRestaurant(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	items, err := h.offerRepo.ListByRestaurant(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to fetch offers")
		return
	}
	if items == nil {
		items = []model.Offer{}
	}
	respondOK(c, items)
}

type offerRequest struct {
	RestaurantID int       `json:"restaurant_id" binding:"required"`
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	DiscountPct  int       `json:"discount_pct" binding:"min=0,max=100"`
	Featured     bool      `json:"featured"`
	Banner       bool      `json:"banner"`
	Homepage     bool      `json:"homepage"`
	StartsAt     time.Time `json:"starts_at" binding:"required"`
	EndsAt       time.Time `json:"ends_at" binding:"required"`
}

// Create handles POST /api/offers
func (h *OfferHandler) Create(c *gin.Context) {
	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	if !h.canManageRestaurant(c, req.RestaurantID) {
		return
	}

	o := &model.Offer{
		RestaurantID: req.RestaurantID,
		Title:        req.Title,
		Description:  req.Description,
		DiscountPct:  req.DiscountPct,
		Featured:     req.Featured,
		Banner:       req.Banner,
		Homepage:     req.Homepage,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
	}
	if err := h.offerRepo.Create(c.Request.Context(), o); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create offer")
		return
	}
	respondCreated(c, o)
}

// Update handles PUT /api/offers/:id
func (h *OfferHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid offer id")
		return
	}

	existing, err := h.offerRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusNotFound, "offer not found")
		return
	}

	if !h.canManageRestaurant(c, existing.RestaurantID) {
		return
	}

	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	existing.Title = req.Title
	existing.Description = req.Description
	existing.DiscountPct = req.DiscountPct
	existing.Featured = req.Featured
	existing.Banner = req.Banner
	existing.Homepage = req.Homepage
	existing.StartsAt = req.StartsAt
	existing.EndsAt = req.EndsAt

	if err := h.offerRepo.Update(c.Request.Context(), existing); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update offer")
		return
	}
	respondOK(c, existing)
}

// Delete handles DELETE /api/offers/:id
func (h *OfferHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid offer id")
		return
	}

	existing, err := h.offerRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusNotFound, "offer not found")
		return
	}

	if !h.canManageRestaurant(c, existing.RestaurantID) {
		return
	}

	if err := h.offerRepo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to delete offer")
		return
	}
	respondOK(c, gin.H{"id": id})
}

// canManageRestaurant checks offer mutations against restaurant
// ownership. Admin roles can manage any restaurant's offers.
func (h *OfferHandler) canManageRestaurant(c *gin.Context, restaurantID int) bool {
	role := c.GetString("role")
	if role != rbac.RoleRestaurantOwner {
		return true
	}

	rest, err := h.restaurantRepo.GetByID(c.Request.Context(), restaurantID)
	if err != nil {
		respondError(c, http.StatusNotFound, "restaurant not found")
		return false
	}
	if rest.OwnerID != c.GetInt("user_id") {
		respondError(c, http.StatusForbidden, "insufficient permissions")
		return false
	}
	return true
}
