// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/camalert/backend/config"
	"github.com/camalert/backend/database"
	"github.com/camalert/backend/geocode"
	"github.com/camalert/backend/handlers"
	"github.com/camalert/backend/notify"
	"github.com/camalert/backend/services"
)

func main() {
	log.Println("Starting Davenport Camera Watch Backend...")

	// .env overlays secrets onto the YAML config; absence is fine in
	// environments that set real environment variables.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment.")
	}

	configPath := "config/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = "backend/config/config.yaml"
		if _, errFallback := os.Stat(configPath); os.IsNotExist(errFallback) {
			log.Fatalf("Config file not found at default paths. Error: %v", errFallback)
		}
	}

	if err := config.LoadConfig(configPath); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	log.Printf("Configuration loaded. Server port: %s, DB name: %s",
		config.AppConfig.Server.Port, config.AppConfig.Database.DBName)
	log.Printf("Schedule source URL: %s", config.AppConfig.Source.URL)

	if err := database.InitDB(config.AppConfig.Database); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer database.CloseDB()

	geocoder := geocode.New(config.AppConfig.Geocoding)

	dispatcher := notify.NewDispatcher(
		notify.DBStore{},
		notify.NewSMTPSender(config.AppConfig.Notifications.SMTP),
		notify.NewFCMSender(config.AppConfig.Notifications.FCM),
		config.AppConfig.Notifications.Cooldown,
		config.AppConfig.Notifications.SendInterval,
	)
	if err := dispatcher.Initialize(); err != nil {
		log.Fatalf("Error initializing notification state: %v", err)
	}

	refreshService := services.NewRefreshService(geocoder, dispatcher)

	// Periodic cycle trigger; the service's own mutex serializes it
	// against manual triggers.
	scheduler := cron.New()
	_, err := scheduler.AddFunc(config.AppConfig.Scheduler.RefreshSpec, func() {
		if _, err := refreshService.RunCycle(context.Background(), false); err != nil {
			if errors.Is(err, services.ErrCycleInProgress) {
				log.Println("Scheduler: Skipping scheduled cycle, one is already running.")
				return
			}
			log.Printf("ERROR Scheduler: Scheduled refresh cycle failed: %v\n", err)
		}
	})
	if err != nil {
		log.Fatalf("Error scheduling refresh cycle (%q): %v", config.AppConfig.Scheduler.RefreshSpec, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	adminHandler := handlers.NewAdminHandler(refreshService)
	cameraHandler := handlers.NewCameraHandler(geocoder)

	// --- Setup HTTP routes ---
	http.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.DB.Ping(); err != nil {
			http.Error(w, `{"status": "error", "message": "database connection error"}`, http.StatusInternalServerError)
			log.Printf("Health check failed: DB ping error: %v", err)
			return
		}
		fmt.Fprintln(w, `{"status": "ok", "message": "camera watch backend is healthy"}`)
	})

	http.HandleFunc("/api/locations", cameraHandler.CurrentLocationsHandler)
	http.HandleFunc("/api/deployments", cameraHandler.DeploymentsHandler)
	http.HandleFunc("/api/deployments/export", handlers.ExportDeploymentsHandler)
	http.HandleFunc("/api/stationary", cameraHandler.StationaryCamerasHandler)
	http.HandleFunc("/api/stationary/status", cameraHandler.StationaryStatusHandler)

	// Admin triggers for the scrape-reconcile-notify cycle
	http.HandleFunc("/api/admin/refresh", adminHandler.RunCycleHandler(true))
	http.HandleFunc("/api/admin/check", adminHandler.RunCycleHandler(false))
	http.HandleFunc("/api/admin/integrity", adminHandler.IntegrityReportHandler)
	http.HandleFunc("/api/admin/integrity/cleanup", adminHandler.IntegrityCleanupHandler)

	serverAddr := ":" + config.AppConfig.Server.Port
	log.Printf("Server starting on http://localhost%s\n", serverAddr)
	if err := http.ListenAndServe(serverAddr, nil); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
