package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tableease/internal/model"
	"tableease/internal/repository"
	"tableease/pkg/rbac"
)

type RestaurantHandler struct {
	repo *repository.RestaurantRepository
}

func NewRestaurantHandler(repo *repository.RestaurantRepository) *RestaurantHandler {
	return &RestaurantHandler{repo: repo}
}

// List handles GET /api/restaurants
func (h *RestaurantHandler) List(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context(), c.Query("city"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to fetch restaurants")
		return
	}
	if items == nil {
		items = []model.Restaurant{}
	}
	respondOK(c, items)
}

// Get handles GET /api/restaurants/:id
func (h *RestaurantHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	rest, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusNotFound, "restaurant not found")
		return
	}
	respondOK(c, rest)
}

type restaurantRequest struct {
	Name      string `json:"name" binding:"required"`
	Cuisine   string `json:"cuisine"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Capacity  int    `json:"capacity" binding:"required,min=1"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	Active    bool   `json:"active"`
}

// Create handles POST /api/restaurants
func (h *RestaurantHandler) Create(c *gin.Context) {
	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	rest := &model.Restaurant{
		OwnerID:   c.GetInt("user_id"),
		Name:      req.Name,
		Cuisine:   req.Cuisine,
		Address:   req.Address,
		City:      req.City,
		Capacity:  req.Capacity,
		OpenTime:  req.OpenTime,
		CloseTime: req.CloseTime,
		Active:    req.Active,
	}
	if err := h.repo.Create(c.Request.Context(), rest); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create restaurant")
		return
	}
	respondCreated(c, rest)
}

// Update handles PUT /api/restaurants/:id
func (h *RestaurantHandler) Update(c *gin.Context) {
	rest, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	rest.Name = req.Name
	rest.Cuisine = req.Cuisine
	rest.Address = req.Address
	rest.City = req.City
	rest.Capacity = req.Capacity
	rest.OpenTime = req.OpenTime
	rest.CloseTime = req.CloseTime
	rest.Active = req.Active

	if err := h.repo.Update(c.Request.Context(), rest); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update restaurant")
		return
	}
	respondOK(c, rest)
}

// Delete handles DELETE /api/restaurants/:id
func (h *RestaurantHandler) Delete(c *gin.Context) {
	rest, ok := h.loadOwned(c)
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), rest.ID); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to delete restaurant")
		return
	}
	respondOK(c, gin.H{"id": rest.ID})
}

// loadOwned fetches the restaurant and enforces that restaurant owners
// only touch their own records. Platform and super admins may touch any.
func (h *RestaurantHandler) loadOwned(c *gin.Context) (*model.Restaurant, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid restaurant id")
		return nil, false
	}

	rest, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusNotFound, "restaurant not found")
		return nil, false
	}

	role := c.GetString("role")
	if role == rbac.RoleRestaurantOwner && rest.OwnerID != c.GetInt("user_id") {
		respondError(c, http.StatusForbidden, "insufficient permissions")
		return nil, false
	}

	return rest, true
}
