package main

import (
	"html/template"
	"log"
	"time"

	"tripmate/internal/config"
	"tripmate/internal/database"
	"tripmate/internal/email"
	"tripmate/internal/handlers"
	"tripmate/internal/logger"
	"tripmate/internal/middleware"
	"tripmate/internal/token"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.Initialize(logger.ParseLevel(cfg.LogLevel), cfg.IsDevelopment())

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if err := database.CleanupExpiredInvites(db); err != nil {
		logger.Warn("Failed to cleanup expired invites", "error", err)
	}

	emailService := email.NewService(cfg)
	if emailService.IsEnabled() {
		log.Println("Email service enabled with Mailgun")
	} else {
		log.Println("Email service disabled - Mailgun not configured")
	}

	tokens := token.NewManager(cfg.SecretKey, cfg.TokenTTL)

	r := gin.Default()

	funcMap := template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format("Mon, Jan 2 at 15:04")
		},
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
	}

	r.SetFuncMap(funcMap)
	r.LoadHTMLGlob("templates/*.html")
	r.Static("/static", "./static")

	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg))

	handlers.SetupRoutes(r, db, cfg, tokens, emailService)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(r.Run(":" + cfg.Port))
}
