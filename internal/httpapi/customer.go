package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"quickbite/internal/apperr"
	"quickbite/internal/auth"
	"quickbite/internal/lifecycle"
	"quickbite/models"

	"github.com/gin-gonic/gin"
)

func (s *Server) listRestaurants(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	restaurants, err := s.restaurants.ListOpen(c.Request.Context(), c.Query("cuisine"), c.Query("search"), limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"restaurants": restaurants, "count": len(restaurants)})
}

func (s *Server) restaurantMenu(c *gin.Context) {
	id := c.Param("id")
	rest, err := s.restaurants.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	if rest == nil {
		respondErr(c, apperr.NotFoundf("restaurant %s not found", id))
		return
	}
	menu, err := s.menu.Menu(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	menu.Restaurant = rest.Summary()
	respondOK(c, http.StatusOK, menu)
}

func (s *Server) getCart(c *gin.Context) {
	cart, err := s.carts.Get(c.Request.Context(), auth.UID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, cart)
}

type putCartRequest struct {
	RestaurantID string `json:"restaurant_id" binding:"required"`
	Items        []struct {
		ItemID   string `json:"item_id" binding:"required"`
		Quantity int    `json:"quantity" binding:"required"`
	} `json:"items" binding:"required"`
}

// putCart replaces the cart. Item names and prices are snapshotted from the
// live catalog here, so the cart already carries the figures checkout will
// record.
func (s *Server) putCart(c *gin.Context) {
	var req putCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "restaurant_id and items are required")
		return
	}
	ctx := c.Request.Context()
	cart := &models.Cart{
		CustomerID:   auth.UID(c),
		RestaurantID: req.RestaurantID,
		Items:        make([]models.CartItem, 0, len(req.Items)),
	}
	for _, ri := range req.Items {
		if ri.Quantity <= 0 {
			respondBadRequest(c, "quantity must be positive")
			return
		}
		item, err := s.menu.GetItem(ctx, ri.ItemID)
		if err != nil {
			respondErr(c, err)
			return
		}
		if item == nil || item.RestaurantID != req.RestaurantID {
			respondErr(c, apperr.NotFoundf("menu item %s not found", ri.ItemID))
			return
		}
		if !item.IsAvailable {
			respondErr(c, apperr.Preconditionf("menu item %s is unavailable", item.Name))
			return
		}
		cart.Items = append(cart.Items, models.CartItem{
			ItemID:   item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: ri.Quantity,
		})
	}
	if err := s.carts.Replace(ctx, cart, time.Now()); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, cart)
}

type checkoutRequest struct {
	DeliveryAddress     string   `json:"delivery_address" binding:"required"`
	SpecialInstructions string   `json:"special_instructions"`
	PaymentMethod       string   `json:"payment_method"`
	TipAmount           float64  `json:"tip_amount"`
	Tax                 float64  `json:"tax"`
	Subtotal            *float64 `json:"subtotal"`
	DeliveryFee         *float64 `json:"delivery_fee"`
	Total               float64  `json:"total"`
}

func (s *Server) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "delivery_address is required")
		return
	}
	order, link, err := s.engine.Checkout(c.Request.Context(), auth.UID(c), lifecycle.CheckoutParams{
		DeliveryAddress:     req.DeliveryAddress,
		SpecialInstructions: req.SpecialInstructions,
		PaymentMethod:       req.PaymentMethod,
		TipAmount:           req.TipAmount,
		Tax:                 req.Tax,
		Subtotal:            req.Subtotal,
		DeliveryFee:         req.DeliveryFee,
		Total:               req.Total,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	s.metrics.OrdersCreated.Inc()
	respondOK(c, http.StatusCreated, gin.H{"order": order, "payment_link": link})
}

func (s *Server) customerOrders(c *gin.Context) {
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
	orders, err := s.orders.ListByCustomer(c.Request.Context(), auth.UID(c), status, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

func (s *Server) customerOrder(c *gin.Context) {
	id := c.Param("id")
	order, err := s.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	if order == nil || order.CustomerID != auth.UID(c) {
		respondErr(c, apperr.NotFoundf("order %s not found", id))
		return
	}
	respondOK(c, http.StatusOK, order)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) customerCancel(c *gin.Context) {
	var req cancelRequest
	_ = c.ShouldBindJSON(&req)
	order, err := s.engine.CustomerCancel(c.Request.Context(), auth.UID(c), c.Param("id"), req.Reason)
	if err != nil {
		respondErr(c, err)
		return
	}
	s.metrics.OrdersCancelled.Inc()
	respondOK(c, http.StatusOK, order)
}

func (s *Server) userProfile(c *gin.Context) {
	user, err := s.users.GetOrCreate(c.Request.Context(), auth.UID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}

type updateUserProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

func (s *Server) updateUserProfile(c *gin.Context) {
	var req updateUserProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	user, err := s.users.Update(c.Request.Context(), auth.UID(c), req.Name, req.Email, req.Phone, time.Now())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}
