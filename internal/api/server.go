package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ndr-radio/internal/api/handlers"
	"ndr-radio/internal/api/middleware"
	"ndr-radio/internal/broadcast"
	"ndr-radio/internal/catalog"
	"ndr-radio/internal/config"
	database "ndr-radio/internal/db"
	"ndr-radio/internal/news"
	"ndr-radio/internal/station"
	"ndr-radio/internal/storage"
)

// Server wires the HTTP surface of one station instance.
type Server struct {
	cfg    *config.Config
	router *gin.Engine

	auth   *handlers.AuthHandler
	stn    *handlers.StationHandler
	tracks *handlers.TrackHandler
	feed   *handlers.FeedHandler
}

// Deps collects everything the routes need. Scheduler may be nil on
// listener instances; its routes then answer 503.
type Deps struct {
	DB         *database.Client
	Storage    *storage.Client
	Catalog    *catalog.Catalog
	Controller *station.Controller
	Scheduler  *broadcast.Scheduler
	NewsStore  *news.Store
	LogStore   *broadcast.LogStore
}

func New(cfg *config.Config, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)

	middleware.JwtSecret = []byte(cfg.Auth.JWTSecret)

	router := gin.New()
	router.Use(middleware.SilentLogger(), gin.Recovery())

	s := &Server{
		cfg:    cfg,
		router: router,
		auth:   handlers.NewAuthHandler(deps.DB.DB),
		stn:    handlers.NewStationHandler(deps.Controller, deps.Scheduler),
		tracks: handlers.NewTrackHandler(deps.Catalog, deps.Storage),
		feed:   handlers.NewFeedHandler(deps.NewsStore, deps.LogStore),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}

	// "Authorization" must be allowed so the frontend can send the JWT
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "ndr-radio"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		// ==========================================
		// PUBLIC ROUTES (No Token Required)
		// ==========================================
		v1.POST("/auth/login", s.auth.Login)
		v1.GET("/state", s.stn.GetState)
		v1.GET("/tracks", s.tracks.List)
		v1.GET("/tracks/:id/stream", s.tracks.Stream)
		v1.GET("/news", s.feed.News)
		v1.GET("/logs", s.feed.Logs)

		// ==========================================
		// PROTECTED ROUTES (JWT Token Required)
		// ==========================================
		protected := v1.Group("/")
		protected.Use(middleware.RequireAuth())
		{
			// Only admins drive the station; everyone else just listens.
			admin := protected.Group("/")
			admin.Use(middleware.RequireRole("admin"))
			{
				admin.POST("/auth/register", s.auth.Register)

				admin.POST("/admin/toggle", s.stn.Toggle)
				admin.POST("/admin/push/:id", s.stn.Push)
				admin.POST("/admin/skip", s.stn.Skip)
				admin.POST("/admin/seek", s.stn.Seek)

				admin.POST("/admin/bulletin", s.stn.Bulletin)
				admin.POST("/admin/jingle/:n", s.stn.Jingle)
				admin.POST("/admin/announce", s.stn.Announce)

				admin.POST("/tracks", s.tracks.Upload)
				admin.DELETE("/tracks/:id", s.tracks.Delete)
			}
		}
	}
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the server on the configured address.
func (s *Server) Start() error {
	return s.router.Run(s.cfg.Station.APIAddr)
}
