package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quickbite/internal/auth"
	"quickbite/internal/config"
	"quickbite/internal/db"
	"quickbite/internal/httpapi"
	"quickbite/internal/lifecycle"
	"quickbite/internal/payment"
	"quickbite/repository"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	// Open DB
	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}()

	orders := repository.NewOrderRepository(d)
	agents := repository.NewAgentRepository(d)
	roles := repository.NewRoleRepository(d)
	users := repository.NewUserRepository(d)
	restaurants := repository.NewRestaurantRepository(d)
	menu := repository.NewMenuRepository(d)
	carts := repository.NewCartRepository(d)

	engine := lifecycle.New(orders, agents, restaurants, users, carts, menu,
		payment.NewOfflineGateway(""), cfg.Delivery.BaseFee)

	server := httpapi.NewServer(httpapi.Deps{
		Engine:      engine,
		Agents:      agents,
		Roles:       roles,
		Users:       users,
		Restaurants: restaurants,
		Menu:        menu,
		Carts:       carts,
		Orders:      orders,
		Verifier:    auth.NewHS256Verifier(cfg.Auth.JWTSecret),
	})

	_, shutdown, err := server.Start(cfg.HTTP.Address)
	if err != nil {
		log.Fatalf("start http: %v", err)
	}
	log.Printf("HTTP server listening on %s", cfg.HTTP.Address)

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
