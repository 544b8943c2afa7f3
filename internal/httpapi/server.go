// Package httpapi is the JSON-over-HTTP surface. Routes are grouped by role
// under /api, each group behind the bearer check and a role gate.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"quickbite/internal/auth"
	"quickbite/internal/lifecycle"
	"quickbite/models"
	"quickbite/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires the engine and repositories to the router.
type Server struct {
	engine      *lifecycle.Engine
	agents      repository.AgentRepositoryI
	roles       repository.RoleRepositoryI
	users       repository.UserRepositoryI
	restaurants repository.RestaurantRepositoryI
	menu        repository.MenuRepositoryI
	carts       repository.CartRepositoryI
	orders      repository.OrderRepositoryI
	verifier    auth.TokenVerifier
	metrics     *Metrics
	registry    *prometheus.Registry
}

// Deps collects everything a Server needs.
type Deps struct {
	Engine      *lifecycle.Engine
	Agents      repository.AgentRepositoryI
	Roles       repository.RoleRepositoryI
	Users       repository.UserRepositoryI
	Restaurants repository.RestaurantRepositoryI
	Menu        repository.MenuRepositoryI
	Carts       repository.CartRepositoryI
	Orders      repository.OrderRepositoryI
	Verifier    auth.TokenVerifier
}

// NewServer builds a Server with a fresh metrics registry.
func NewServer(d Deps) *Server {
	registry := prometheus.NewRegistry()
	return &Server{
		engine:      d.Engine,
		agents:      d.Agents,
		roles:       d.Roles,
		users:       d.Users,
		restaurants: d.Restaurants,
		menu:        d.Menu,
		carts:       d.Carts,
		orders:      d.Orders,
		verifier:    d.Verifier,
		metrics:     NewMetrics(registry),
		registry:    registry,
	}
}

// Router assembles the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")

	// The payment provider callback carries no bearer token.
	api.POST("/payments/:link_id/confirm", s.confirmPayment)

	authed := api.Group("")
	authed.Use(auth.Bearer(s.verifier))

	roles := authed.Group("/roles")
	{
		roles.GET("/me", s.myRole)
		roles.POST("/me", s.selectRole)
	}

	agent := authed.Group("/agent")
	agent.Use(auth.RequireRoles(s.roles, models.RoleAgent))
	{
		agent.GET("/available-orders", s.availableOrders)
		agent.POST("/orders/:id/accept", s.acceptOrder)
		agent.GET("/active-orders", s.activeOrders)
		agent.PUT("/orders/:id/status", s.updateDeliveryStatus)
		agent.POST("/orders/:id/location", s.reportLocation)
		agent.GET("/delivery-history", s.deliveryHistory)
		agent.GET("/earnings", s.earnings)
		agent.GET("/profile", s.agentProfile)
		agent.PUT("/profile", s.updateAgentProfile)
		agent.PUT("/status", s.updateAgentStatus)
	}

	customer := authed.Group("/customer")
	customer.Use(auth.RequireRoles(s.roles, models.RoleCustomer))
	{
		customer.GET("/restaurants", s.listRestaurants)
		customer.GET("/restaurants/:id/menu", s.restaurantMenu)
		customer.GET("/cart", s.getCart)
		customer.PUT("/cart", s.putCart)
		customer.POST("/checkout", s.checkout)
		customer.GET("/orders", s.customerOrders)
		customer.GET("/orders/:id", s.customerOrder)
		customer.POST("/orders/:id/cancel", s.customerCancel)
		customer.GET("/profile", s.userProfile)
		customer.PUT("/profile", s.updateUserProfile)
	}

	restaurant := authed.Group("/restaurant")
	restaurant.Use(auth.RequireRoles(s.roles, models.RoleRestaurant))
	{
		restaurant.GET("/profile", s.restaurantProfile)
		restaurant.PUT("/profile", s.updateRestaurantProfile)
		restaurant.GET("/orders", s.restaurantOrders)
		restaurant.PUT("/orders/:id/status", s.restaurantUpdateStatus)
		restaurant.POST("/orders/:id/cancel", s.restaurantCancel)
		restaurant.GET("/menu", s.ownMenu)
		restaurant.POST("/menu/categories", s.createCategory)
		restaurant.DELETE("/menu/categories/:id", s.deleteCategory)
		restaurant.POST("/menu/items", s.createItem)
		restaurant.PUT("/menu/items/:id", s.updateItem)
		restaurant.DELETE("/menu/items/:id", s.deleteItem)
		restaurant.GET("/stats", s.restaurantStats)
	}

	admin := authed.Group("/admin")
	admin.Use(auth.RequireRoles(s.roles, models.RoleAdmin))
	{
		admin.GET("/users", s.adminListUsers)
		admin.PUT("/users/:uid/role", s.adminAssignRole)
		admin.DELETE("/users/:uid/role", s.adminDeactivateRole)
		admin.GET("/stats", s.adminStats)
		admin.GET("/orders", s.adminOrders)
	}

	return r
}

// Start serves the router on addr and returns a shutdown func that drains
// in-flight requests.
func (s *Server) Start(addr string) (*http.Server, func(context.Context) error, error) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return nil, nil, err
	case <-time.After(100 * time.Millisecond):
	}
	return srv, srv.Shutdown, nil
}
