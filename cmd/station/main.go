package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ndr-radio/internal/api"
	"ndr-radio/internal/broadcast"
	"ndr-radio/internal/catalog"
	"ndr-radio/internal/clock"
	"ndr-radio/internal/config"
	database "ndr-radio/internal/db"
	"ndr-radio/internal/news"
	"ndr-radio/internal/player"
	"ndr-radio/internal/realtime"
	"ndr-radio/internal/station"
	"ndr-radio/internal/storage"
	"ndr-radio/internal/tts"
)

func main() {
	// 1. Parse Flags
	// Flags override config.yaml / env values
	role := flag.String("role", "", "Override station role (admin, listener)")
	noBroadcast := flag.Bool("no-broadcast", false, "Disable the scheduled news bulletins")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// 2. Load Config
	cfg := config.Load()
	if *role != "" {
		cfg.Station.Role = *role
	}
	if *noBroadcast {
		cfg.Broadcast.Enabled = false
	}

	log.Printf("🚀 Starting %s (%s mode)...", cfg.Station.Name, cfg.Station.Role)

	// 3. Init Infrastructure
	db := database.New(cfg)
	db.AutoMigrate()
	database.SeedAdmin(db.DB, cfg.Auth.AdminUser, cfg.Auth.AdminPassword)

	store := storage.New(cfg)
	cat := catalog.New(db.DB)
	clk := clock.RealClock{}

	// 4. Metrics
	realtime.RegisterMetrics()
	player.RegisterMetrics()
	station.RegisterMetrics()
	broadcast.RegisterMetrics()
	news.RegisterMetrics()

	// 5. Sync channel + player
	channel, err := realtime.New(cfg, db.DB)
	if err != nil {
		log.Fatalf("❌ Failed to open sync channel: %v", err)
	}
	defer channel.Close()

	engine := player.NewEngine(clk, cfg.Broadcast.SampleRate)
	gate := player.NewGate(engine)

	ctrl := station.NewController(station.Role(cfg.Station.Role), cat, channel, engine, clk)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Broadcast stack (admin only)
	var scheduler *broadcast.Scheduler
	newsStore := news.NewStore(db.DB, clk)
	logStore := broadcast.NewLogStore(db.DB, clk)

	if cfg.Station.Role == string(station.RoleAdmin) && cfg.Broadcast.Enabled {
		grid, err := broadcast.LoadGrid(cfg.Broadcast.GridPath)
		if err != nil {
			log.Fatalf("❌ Invalid broadcast grid: %v", err)
		}

		synth := tts.NewCachingSynthesizer(
			tts.NewGeminiSynthesizer(cfg.AI.APIKey, cfg.AI.TTSModel, cfg.AI.Voice),
			cfg.Station.TempDir,
		)
		provider := news.NewGeminiProvider(cfg.AI.APIKey, cfg.AI.NewsModel, newsStore)

		scheduler = broadcast.NewScheduler(grid, clk,
			cfg.Station.Name, cfg.Station.Newscaster, cfg.Station.Location,
			provider, synth, gate, logStore)
		go scheduler.Run(ctx)

		ctrl.SetJingle(func(jctx context.Context) {
			if err := scheduler.PlayJingle(jctx, 1); err != nil {
				log.Printf("⚠️ Transition jingle skipped: %v", err)
			}
		})
	}

	if err := ctrl.Start(ctx); err != nil {
		log.Fatalf("❌ Failed to start station controller: %v", err)
	}
	defer ctrl.Stop()

	// The headless process has no play-gesture to wait for; open the
	// gate immediately so bulletins go straight to the output.
	if err := gate.Ready(ctx); err != nil {
		log.Printf("⚠️ Failed to open audio gate: %v", err)
	}

	// 7. HTTP API
	server := api.New(cfg, api.Deps{
		DB:         db,
		Storage:    store,
		Catalog:    cat,
		Controller: ctrl,
		Scheduler:  scheduler,
		NewsStore:  newsStore,
		LogStore:   logStore,
	})

	log.Printf("📡 API listening on %s", cfg.Station.APIAddr)
	if err := server.Start(); err != nil {
		log.Fatalf("❌ API server stopped: %v", err)
	}
}
