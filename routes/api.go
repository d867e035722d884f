package routes

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/burntkayatoast/web-dev-project/config"
	"github.com/burntkayatoast/web-dev-project/db"
	"github.com/burntkayatoast/web-dev-project/tmdb"
)

// MetadataService is the slice of the TMDB client the handlers use.
type MetadataService interface {
	TrendingMovies(ctx context.Context) ([]json.RawMessage, error)
	TrendingTV(ctx context.Context) ([]json.RawMessage, error)
	DiscoverMovies(ctx context.Context, pages int) ([]json.RawMessage, error)
	DiscoverTV(ctx context.Context, pages int) ([]json.RawMessage, error)
	SearchMovies(ctx context.Context, query string) ([]json.RawMessage, error)
	SearchTV(ctx context.Context, query string) ([]json.RawMessage, error)
	MovieDetails(ctx context.Context, id int) (*tmdb.MovieDetail, error)
	TVDetails(ctx context.Context, id int) (*tmdb.TVDetail, error)
}

type API struct {
	DB     db.Service
	Config config.Service
	TMDB   MetadataService
}

func NewAPI(dbService db.Service, cfg config.Service, metadata MetadataService) *API {
	return &API{DB: dbService, Config: cfg, TMDB: metadata}
}

var limiter = rate.NewLimiter(5, 10)

func rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Next()
	}
}

func (a *API) setupCORS() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = a.Config.GetAllowedOrigins()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"X-CSRF-Token",
		"Authorization",
	}
	cfg.ExposeHeaders = []string{"Content-Length"}
	cfg.AllowCredentials = true
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

func setupLogger() {
	if gin.Mode() != gin.ReleaseMode {
		return
	}
	f, err := os.Create("gin.log")
	if err != nil {
		log.Fatal("Could not create log file", err)
	}
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
}

// Router builds the full route table. Split out from Run so tests can mount
// it on httptest without a listening server.
func (a *API) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(cors.New(a.setupCORS()))
	router.Use(rateLimitMiddleware())

	router.LoadHTMLGlob("web/templates/*.html")
	router.Static("/static", "./web/static")

	a.registerPageRoutes(router)
	a.registerAPIRoutes(router)
	return router
}

func (a *API) registerPageRoutes(router *gin.Engine) {
	router.GET("/", a.pageHome)
	router.GET("/movies", a.pageMovies)
	router.GET("/tv_shows", a.pageTVShows)
	router.GET("/popular", a.pagePopular)
	router.GET("/trending", a.pageTrending)
	router.GET("/movies/:id", a.pageMovieDetail)
	router.GET("/tv_shows/:id", a.pageTVDetail)

	router.GET("/register", a.pageRegister)
	router.POST("/register", a.handleRegister)
	router.GET("/login", a.pageLogin)
	router.POST("/login", a.handleLogin)
	router.GET("/logout", a.handleLogout)

	// Pages behind a login; anonymous visitors get bounced to /login.
	gated := router.Group("/")
	gated.Use(a.requirePageAuth())
	{
		gated.GET("/profile", a.pageProfile)
		gated.GET("/edit-profile", a.pageEditProfile)
		gated.POST("/edit-profile", a.handleUpdateProfile)
		gated.POST("/delete-account", a.handleDeleteAccount)
		gated.GET("/watchlist", a.pageWatchlist)
		gated.GET("/reviews", a.pageReviews)
		gated.GET("/add-review", a.pageAddReview)
		gated.POST("/delete-review", a.handleReviewDelete)
	}
}

func (a *API) registerAPIRoutes(router *gin.Engine) {
	api := router.Group("/api")

	// Read-only metadata proxy, open to anonymous visitors.
	api.GET("/popular", a.handleTrendingMovies)
	api.GET("/popular/all", a.handleDiscoverMoviesDefault)
	api.GET("/p_tv_show", a.handleTrendingTV)
	api.GET("/p_tv_show/all", a.handleDiscoverTVDefault)
	api.GET("/movies", a.handleDiscoverMovies)
	api.GET("/tv_shows", a.handleDiscoverTV)
	api.GET("/search", a.handleSearch)
	api.GET("/movies/:id", a.handleMovieDetails)
	api.GET("/tv_shows/:id", a.handleTVDetails)

	api.POST("/login", a.handleAPILogin)

	// Everything touching per-user state requires a session; API routes
	// answer 401 instead of redirecting.
	protected := api.Group("/")
	protected.Use(a.requireAPIAuth())
	{
		protected.GET("/watchlist", a.handleWatchlistList)
		protected.GET("/watchlist/check/:id/:type", a.handleWatchlistCheck)
		protected.POST("/watchlist", a.handleWatchlistAdd)
		protected.POST("/watchlist/toggle", a.handleWatchlistToggle)
		protected.DELETE("/watchlist/:id/:type", a.handleWatchlistRemove)

		protected.GET("/reviews", a.handleReviewsList)
		protected.GET("/reviews/check/:id/:type", a.handleReviewCheck)
		protected.POST("/reviews", a.handleReviewSubmit)
	}
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, then drains
// in-flight requests for up to five seconds.
func (a *API) Run() {
	setupLogger()
	router := a.Router()

	srv := &http.Server{
		Addr:         a.Config.GetBindAddr() + ":" + a.Config.GetServerPort(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to initialize server: %v\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
