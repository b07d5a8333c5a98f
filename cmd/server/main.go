package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/valleteclab/portaldcp-sub004/internal/config"
	"github.com/valleteclab/portaldcp-sub004/internal/database"
	"github.com/valleteclab/portaldcp-sub004/internal/engine"
	"github.com/valleteclab/portaldcp-sub004/internal/handlers"
	"github.com/valleteclab/portaldcp-sub004/internal/middleware"
	"github.com/valleteclab/portaldcp-sub004/internal/services"
	"github.com/valleteclab/portaldcp-sub004/internal/ws"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	hub := ws.NewHub()

	tenderService := services.NewTenderService(db)
	auditService := services.NewAuditService(db)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.RoomTokenTTL())

	store := engine.NewStore(tenderService, auditService, hub, engine.Options{
		QuietPeriod:    cfg.QuietPeriod(),
		RandomCloseMin: cfg.RandomCloseMin(),
		RandomCloseMax: cfg.RandomCloseMax(),
	})

	authHandler := handlers.NewAuthHandler(tokenService)
	tenderHandler := handlers.NewTenderHandler(tenderService)
	sessionHandler := handlers.NewSessionHandler(store, auditService)
	roomHandler := handlers.NewRoomHandler(store, cfg.ClientBufferSize)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/ws/rooms/:tenderId", middleware.RoomAuth(tokenService), roomHandler.HandleRoomWebSocket)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/room-token", authHandler.IssueRoomToken)
		}

		tenders := api.Group("/tenders")
		{
			tenders.GET("", tenderHandler.ListTenders)
			tenders.GET("/:id", tenderHandler.GetTender)
		}

		sessions := api.Group("/sessions")
		sessions.Use(middleware.RoomAuth(tokenService))
		{
			sessions.GET("/:tenderId", sessionHandler.GetSession)
			sessions.GET("/:tenderId/bids", sessionHandler.GetBidHistory)
			sessions.GET("/:tenderId/events", sessionHandler.GetEvents)
			sessions.DELETE("/:tenderId", sessionHandler.RemoveSession)
		}
	}

	log.Printf("server listening on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
