package routes

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	m "github.com/burntkayatoast/web-dev-project/models"
	"github.com/burntkayatoast/web-dev-project/tmdb"
)

func respondList(c *gin.Context, results []json.RawMessage, err error) {
	if err != nil {
		log.Printf("Error fetching from TMDB: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if results == nil {
		results = []json.RawMessage{}
	}
	c.JSON(http.StatusOK, results)
}

func (a *API) handleTrendingMovies(c *gin.Context) {
	results, err := a.TMDB.TrendingMovies(c.Request.Context())
	respondList(c, results, err)
}

func (a *API) handleTrendingTV(c *gin.Context) {
	results, err := a.TMDB.TrendingTV(c.Request.Context())
	respondList(c, results, err)
}

func (a *API) handleDiscoverMoviesDefault(c *gin.Context) {
	results, err := a.TMDB.DiscoverMovies(c.Request.Context(), tmdb.DefaultDiscoverPages)
	respondList(c, results, err)
}

func (a *API) handleDiscoverTVDefault(c *gin.Context) {
	results, err := a.TMDB.DiscoverTV(c.Request.Context(), tmdb.DefaultDiscoverPages)
	respondList(c, results, err)
}

// pagesParam reads the optional ?pages= count; the tmdb client clamps it.
func pagesParam(c *gin.Context) int {
	pages, err := strconv.Atoi(c.Query("pages"))
	if err != nil {
		return tmdb.DefaultDiscoverPages
	}
	return pages
}

func (a *API) handleDiscoverMovies(c *gin.Context) {
	results, err := a.TMDB.DiscoverMovies(c.Request.Context(), pagesParam(c))
	respondList(c, results, err)
}

func (a *API) handleDiscoverTV(c *gin.Context) {
	results, err := a.TMDB.DiscoverTV(c.Request.Context(), pagesParam(c))
	respondList(c, results, err)
}

func (a *API) handleSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}

	switch c.DefaultQuery("type", m.MediaTypeMovie) {
	case m.MediaTypeMovie:
		results, err := a.TMDB.SearchMovies(c.Request.Context(), query)
		respondList(c, results, err)
	case m.MediaTypeTV:
		results, err := a.TMDB.SearchTV(c.Request.Context(), query)
		respondList(c, results, err)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid media type"})
	}
}

func (a *API) handleMovieDetails(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	detail, err := a.TMDB.MovieDetails(c.Request.Context(), id)
	if err != nil {
		log.Printf("Error fetching movie details: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (a *API) handleTVDetails(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	detail, err := a.TMDB.TVDetails(c.Request.Context(), id)
	if err != nil {
		log.Printf("Error fetching tv details: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, detail)
}
