package main

import (
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ndr-radio/internal/catalog"
	"ndr-radio/internal/config"
	database "ndr-radio/internal/db"
	"ndr-radio/internal/ingest"
	"ndr-radio/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Radio Ingestion Worker...")

	// 1. Setup Configuration
	cfg := config.Load()

	// 2. Initialize Infrastructure
	store := storage.New(cfg)
	db := database.New(cfg)

	// 3. Run Database Migrations
	db.AutoMigrate()

	// 4. Setup Metrics
	ingest.RegisterMetrics()
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/metrics", cfg.Ingest.MetricsPort)
		log.Fatal(http.ListenAndServe(cfg.Ingest.MetricsPort, nil))
	}()

	// Ensure the drop directory exists before the first sweep
	os.MkdirAll(cfg.Ingest.SourceDir, 0755)

	// 5. Start Worker
	worker := ingest.New(cfg, store, catalog.New(db.DB))
	worker.Run()
}
