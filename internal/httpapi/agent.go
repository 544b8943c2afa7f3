package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"quickbite/internal/apperr"
	"quickbite/internal/auth"
	"quickbite/models"

	"github.com/gin-gonic/gin"
)

func (s *Server) availableOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	orders, err := s.engine.AvailableOrders(c.Request.Context(), limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

type acceptOrderRequest struct {
	EstimatedPickupMinutes int `json:"estimated_pickup_minutes"`
}

func (s *Server) acceptOrder(c *gin.Context) {
	var req acceptOrderRequest
	// Body is optional; the pickup estimate falls back to the default.
	_ = c.ShouldBindJSON(&req)

	order, err := s.engine.AcceptOrder(c.Request.Context(), auth.UID(c), c.Param("id"), req.EstimatedPickupMinutes)
	if err != nil {
		// Only genuine contention counts as a lost claim; validation and
		// storage errors are not races.
		if apperr.KindOf(err) == apperr.PreconditionFailed {
			s.metrics.ClaimAttempts.WithLabelValues("lost").Inc()
		}
		respondErr(c, err)
		return
	}
	s.metrics.ClaimAttempts.WithLabelValues("won").Inc()
	respondOK(c, http.StatusOK, order)
}

func (s *Server) activeOrders(c *gin.Context) {
	orders, err := s.engine.ActiveOrders(c.Request.Context(), auth.UID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

type updateDeliveryStatusRequest struct {
	Status   string           `json:"status" binding:"required"`
	Location *models.Location `json:"location"`
}

func (s *Server) updateDeliveryStatus(c *gin.Context) {
	var req updateDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}
	order, err := s.engine.UpdateDeliveryStatus(c.Request.Context(), auth.UID(c), c.Param("id"),
		models.OrderStatus(req.Status), req.Location)
	if err != nil {
		respondErr(c, err)
		return
	}
	if order.Status == models.OrderStatusDelivered {
		s.metrics.OrdersDelivered.Inc()
	}
	respondOK(c, http.StatusOK, order)
}

func (s *Server) reportLocation(c *gin.Context) {
	var loc models.Location
	if err := c.ShouldBindJSON(&loc); err != nil {
		respondBadRequest(c, "lat and lng are required")
		return
	}
	if err := s.engine.ReportLocation(c.Request.Context(), auth.UID(c), c.Param("id"), loc); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"updated": true})
}

func (s *Server) deliveryHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := models.ParseTime(v)
		if err != nil {
			respondBadRequest(c, "from must be RFC3339")
			return
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := models.ParseTime(v)
		if err != nil {
			respondBadRequest(c, "to must be RFC3339")
			return
		}
		to = &t
	}
	orders, err := s.engine.DeliveryHistory(c.Request.Context(), auth.UID(c), from, to, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

func (s *Server) earnings(c *gin.Context) {
	stats, err := s.engine.Earnings(c.Request.Context(), auth.UID(c), c.Query("period"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

func (s *Server) agentProfile(c *gin.Context) {
	agent, err := s.agents.GetOrDefault(c.Request.Context(), auth.UID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, agent)
}

type updateAgentProfileRequest struct {
	VehicleType  *string `json:"vehicle_type"`
	LicensePlate *string `json:"license_plate"`
}

func (s *Server) updateAgentProfile(c *gin.Context) {
	var req updateAgentProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	uid := auth.UID(c)
	if err := s.agents.UpdateProfile(c.Request.Context(), uid, req.VehicleType, req.LicensePlate, time.Now()); err != nil {
		respondErr(c, err)
		return
	}
	agent, err := s.agents.GetOrDefault(c.Request.Context(), uid)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, agent)
}

type updateAgentStatusRequest struct {
	Status   string           `json:"status" binding:"required"`
	Location *models.Location `json:"location"`
}

func (s *Server) updateAgentStatus(c *gin.Context) {
	var req updateAgentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}
	status := models.AgentStatus(req.Status)
	if !status.IsValid() {
		respondBadRequest(c, "status must be available, busy or offline")
		return
	}
	uid := auth.UID(c)
	if err := s.agents.UpsertStatus(c.Request.Context(), uid, status, req.Location, time.Now()); err != nil {
		respondErr(c, err)
		return
	}
	agent, err := s.agents.GetOrDefault(c.Request.Context(), uid)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, agent)
}
