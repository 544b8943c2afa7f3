package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"quickbite/internal/apperr"
	"quickbite/internal/auth"
	"quickbite/models"
	"quickbite/repository"

	"github.com/gin-gonic/gin"
)

func (s *Server) restaurantProfile(c *gin.Context) {
	rest, err := s.restaurants.GetOrCreate(c.Request.Context(), auth.UID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, rest)
}

type updateRestaurantProfileRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Address     *string  `json:"address"`
	Phone       *string  `json:"phone"`
	CuisineType *string  `json:"cuisine_type"`
	IsOpen      *bool    `json:"is_open"`
	MinOrder    *float64 `json:"min_order"`
}

func (s *Server) updateRestaurantProfile(c *gin.Context) {
	var req updateRestaurantProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.MinOrder != nil && *req.MinOrder < 0 {
		respondBadRequest(c, "min_order must not be negative")
		return
	}
	rest, err := s.restaurants.Update(c.Request.Context(), auth.UID(c), repository.UpdateRestaurantParams{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
		CuisineType: req.CuisineType,
		IsOpen:      req.IsOpen,
		MinOrder:    req.MinOrder,
	}, time.Now())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, rest)
}

func (s *Server) restaurantOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	var status *models.OrderStatus
	if v := c.Query("status"); v != "" {
		st := models.OrderStatus(v)
		if !st.IsValid() {
			respondBadRequest(c, "unknown status filter")
			return
		}
		status = &st
	}
	orders, err := s.orders.ListByRestaurant(c.Request.Context(), auth.UID(c), status, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

type restaurantStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) restaurantUpdateStatus(c *gin.Context) {
	var req restaurantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}
	order, err := s.engine.RestaurantUpdateStatus(c.Request.Context(), auth.UID(c), c.Param("id"),
		models.OrderStatus(req.Status))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}

func (s *Server) restaurantCancel(c *gin.Context) {
	var req cancelRequest
	_ = c.ShouldBindJSON(&req)
	order, err := s.engine.RestaurantCancel(c.Request.Context(), auth.UID(c), c.Param("id"), req.Reason)
	if err != nil {
		respondErr(c, err)
		return
	}
	s.metrics.OrdersCancelled.Inc()
	respondOK(c, http.StatusOK, order)
}

func (s *Server) ownMenu(c *gin.Context) {
	uid := auth.UID(c)
	rest, err := s.restaurants.GetOrCreate(c.Request.Context(), uid)
	if err != nil {
		respondErr(c, err)
		return
	}
	menu, err := s.menu.Menu(c.Request.Context(), uid)
	if err != nil {
		respondErr(c, err)
		return
	}
	menu.Restaurant = rest.Summary()
	respondOK(c, http.StatusOK, menu)
}

type createCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

func (s *Server) createCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}
	cat, err := s.menu.CreateCategory(c.Request.Context(), auth.UID(c), repository.CreateCategoryParams{
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}, time.Now())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusCreated, cat)
}

func (s *Server) deleteCategory(c *gin.Context) {
	id := c.Param("id")
	ok, err := s.menu.DeleteCategory(c.Request.Context(), auth.UID(c), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	if !ok {
		respondErr(c, apperr.NotFoundf("category %s not found", id))
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": true})
}

type createItemRequest struct {
	CategoryID  string  `json:"category_id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required"`
	ImageURL    string  `json:"image_url"`
}

func (s *Server) createItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "category_id, name and price are required")
		return
	}
	if req.Price <= 0 {
		respondBadRequest(c, "price must be positive")
		return
	}
	item, err := s.menu.CreateItem(c.Request.Context(), auth.UID(c), repository.CreateItemParams{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	}, time.Now())
	if err != nil {
		respondErr(c, err)
		return
	}
	if item == nil {
		respondErr(c, apperr.NotFoundf("category %s not found", req.CategoryID))
		return
	}
	respondOK(c, http.StatusCreated, item)
}

type updateItemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	ImageURL    *string  `json:"image_url"`
	IsAvailable *bool    `json:"is_available"`
}

func (s *Server) updateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Price != nil && *req.Price <= 0 {
		respondBadRequest(c, "price must be positive")
		return
	}
	id := c.Param("id")
	ok, err := s.menu.UpdateItem(c.Request.Context(), auth.UID(c), id, repository.UpdateItemParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		IsAvailable: req.IsAvailable,
	}, time.Now())
	if err != nil {
		respondErr(c, err)
		return
	}
	if !ok {
		respondErr(c, apperr.NotFoundf("menu item %s not found", id))
		return
	}
	item, err := s.menu.GetItem(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, item)
}

func (s *Server) deleteItem(c *gin.Context) {
	id := c.Param("id")
	ok, err := s.menu.DeleteItem(c.Request.Context(), auth.UID(c), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	if !ok {
		respondErr(c, apperr.NotFoundf("menu item %s not found", id))
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) restaurantStats(c *gin.Context) {
	stats, err := s.engine.RestaurantStats(c.Request.Context(), auth.UID(c), c.Query("period"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}
