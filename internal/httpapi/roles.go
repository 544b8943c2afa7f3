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

func (s *Server) myRole(c *gin.Context) {
	role, err := s.roles.GetActiveRole(c.Request.Context(), auth.UID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"role": role, "has_role": role != ""})
}

type selectRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// selectRole lets a first-time user pick their own role. Role changes after
// that go through an admin; admin itself can never be self-selected.
func (s *Server) selectRole(c *gin.Context) {
	var req selectRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "role is required")
		return
	}
	role := models.Role(req.Role)
	if !role.IsValid() || role == models.RoleAdmin {
		respondBadRequest(c, "role must be customer, agent or restaurant")
		return
	}
	ctx := c.Request.Context()
	uid := auth.UID(c)
	current, err := s.roles.GetActiveRole(ctx, uid)
	if err != nil {
		respondErr(c, err)
		return
	}
	if current != "" {
		respondErr(c, apperr.Preconditionf("role already assigned; contact an administrator to change it"))
		return
	}
	if err := s.roles.Assign(ctx, uid, role, nil, time.Now()); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"role": role, "has_role": true})
}

func (s *Server) adminListUsers(c *gin.Context) {
	role := models.Role(c.Query("role"))
	if !role.IsValid() {
		respondBadRequest(c, "role query parameter is required")
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	assignments, err := s.roles.ListByRole(c.Request.Context(), role, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"users": assignments, "count": len(assignments)})
}

type assignRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (s *Server) adminAssignRole(c *gin.Context) {
	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "role is required")
		return
	}
	role := models.Role(req.Role)
	if !role.IsValid() {
		respondBadRequest(c, "unknown role")
		return
	}
	admin := auth.UID(c)
	uid := c.Param("uid")
	if err := s.roles.Assign(c.Request.Context(), uid, role, &admin, time.Now()); err != nil {
		respondErr(c, err)
		return
	}
	assignment, err := s.roles.Get(c.Request.Context(), uid)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, assignment)
}

func (s *Server) adminDeactivateRole(c *gin.Context) {
	if err := s.roles.Deactivate(c.Request.Context(), c.Param("uid"), time.Now()); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deactivated": true})
}

func (s *Server) adminStats(c *gin.Context) {
	counts, err := s.roles.CountByRole(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"users_by_role": counts})
}

func (s *Server) adminOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	orders, err := s.orders.ListAll(c.Request.Context(), limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

func (s *Server) confirmPayment(c *gin.Context) {
	if err := s.engine.ConfirmPayment(c.Request.Context(), c.Param("link_id")); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"paid": true})
}
