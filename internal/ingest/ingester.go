package ingest

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"ndr-radio/internal/catalog"
	"ndr-radio/internal/config"
	"ndr-radio/internal/models"
	"ndr-radio/internal/storage"
	"ndr-radio/internal/utils"
)

var (
	jobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radio_ingest_jobs_total",
			Help: "Total ingest jobs",
		},
		[]string{"status"},
	)
	duration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "radio_ingest_duration_seconds",
			Help:    "Processing time",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(jobs, duration)
}

var supportedExts = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
	".wav":  true,
}

// Worker sweeps a drop directory and moves each audio file into the
// station library: object storage plus a catalog row.
type Worker struct {
	cfg     *config.Config
	storage *storage.Client
	catalog *catalog.Catalog
}

func New(cfg *config.Config, store *storage.Client, cat *catalog.Catalog) *Worker {
	return &Worker{cfg: cfg, storage: store, catalog: cat}
}

func (w *Worker) Run() {
	ticker := time.NewTicker(time.Duration(w.cfg.Ingest.PollingInterval) * time.Second)
	defer ticker.Stop()

	log.Printf("Watcher started on '%s'...", w.cfg.Ingest.SourceDir)
	w.Reconcile()
	w.processQueue()

	for range ticker.C {
		w.processQueue()
	}
}

// Reconcile backfills catalog rows for objects already sitting in the
// media bucket, so a wiped database can be rebuilt from storage.
func (w *Worker) Reconcile() {
	keys, err := w.storage.ListAudioFiles("media/")
	if err != nil {
		log.Printf("⚠️ Storage reconcile skipped: %v", err)
		return
	}

	existing, err := w.catalog.All()
	if err != nil {
		log.Printf("⚠️ Storage reconcile skipped: %v", err)
		return
	}
	known := make(map[string]bool, len(existing))
	for _, item := range existing {
		known[item.Key] = true
	}

	added := 0
	for _, key := range keys {
		if known[key] || !supportedExts[strings.ToLower(filepath.Ext(key))] {
			continue
		}
		item := models.MediaItem{
			ID:   uuid.NewString(),
			Name: utils.CleanFilename(filepath.Base(key)),
			Key:  key,
			URL:  w.storage.PublicURL(key),
			Type: models.MediaAudio,
		}
		if err := w.catalog.Upsert(&item); err != nil {
			log.Printf("⚠️ Failed to backfill %s: %v", key, err)
			continue
		}
		added++
	}
	if added > 0 {
		log.Printf("🔄 Backfilled %d tracks from storage", added)
	}
}

func (w *Worker) processQueue() {
	entries, err := os.ReadDir(w.cfg.Ingest.SourceDir)
	if err != nil {
		log.Printf("Error listing drop dir: %v", err)
		return
	}

	var pending []string
	for _, entry := range entries {
		if entry.IsDir() || !supportedExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		pending = append(pending, entry.Name())
	}

	if len(pending) > 0 {
		log.Printf("Found %d items in ingest queue.", len(pending))
	}

	for _, name := range pending {
		log.Printf("Processing: %s", name)
		if err := w.processFile(name); err != nil {
			log.Printf("❌ FAILED %s: %v", name, err)
			jobs.WithLabelValues("failure").Inc()
		} else {
			log.Printf("✅ INGESTED %s", name)
			jobs.WithLabelValues("success").Inc()
		}
	}
}

func (w *Worker) processFile(name string) error {
	timer := prometheus.NewTimer(duration)
	defer timer.ObserveDuration()

	srcPath := filepath.Join(w.cfg.Ingest.SourceDir, name)
	ext := strings.ToLower(filepath.Ext(name))

	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}

	// 1. Read local tags; the filename is the fallback title.
	displayName := utils.CleanFilename(name)
	if meta, err := tag.ReadFrom(f); err == nil && meta.Title() != "" {
		displayName = meta.Title()
		if artist := meta.Artist(); artist != "" {
			displayName = artist + " - " + meta.Title()
		}
	}

	// 2. Upload from the start of the file.
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return err
	}
	key := "media/" + utils.Sanitize(displayName, uuid.NewString()) + ext
	log.Printf("   -> Uploading to: %s", key)
	if err := w.storage.UploadMediaFile(key, f, contentTypeFor(ext)); err != nil {
		f.Close()
		return err
	}
	f.Close()

	// 3. Catalog row.
	item := models.MediaItem{
		ID:   uuid.NewString(),
		Name: displayName,
		Key:  key,
		URL:  w.storage.PublicURL(key),
		Type: models.MediaAudio,
	}
	if err := w.catalog.Upsert(&item); err != nil {
		return err
	}

	// 4. Clear the drop dir so the file is not ingested twice.
	return os.Remove(srcPath)
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	case ".wav":
		return "audio/wav"
	default:
		return "audio/mpeg"
	}
}
