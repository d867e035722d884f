package routes

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	m "github.com/burntkayatoast/web-dev-project/models"
)

// titleParams pulls the /:id/:type pair shared by the check and remove
// endpoints, rejecting anything that isn't a TMDB id plus movie|tv.
func titleParams(c *gin.Context) (int, string, bool) {
	tmdbID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, "", false
	}
	mediaType := c.Param("type")
	if !m.ValidMediaType(mediaType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid media type"})
		return 0, "", false
	}
	return tmdbID, mediaType, true
}

func (a *API) handleWatchlistList(c *gin.Context) {
	watchlist, err := a.DB.GetUserWatchlist(c.GetInt("user_id"))
	if err != nil {
		log.Printf("Error getting watchlist: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, watchlist)
}

func (a *API) handleWatchlistCheck(c *gin.Context) {
	tmdbID, mediaType, ok := titleParams(c)
	if !ok {
		return
	}
	inWatchlist, err := a.DB.IsInWatchlist(c.GetInt("user_id"), tmdbID, mediaType)
	if err != nil {
		log.Printf("Error checking watchlist: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inWatchlist": inWatchlist})
}

func (a *API) handleWatchlistAdd(c *gin.Context) {
	var movie m.MovieInput
	if err := c.ShouldBindJSON(&movie); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid movie data"})
		return
	}
	if !m.ValidMediaType(movie.MediaType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid media type"})
		return
	}

	if err := a.DB.AddToWatchlist(c.GetInt("user_id"), movie); err != nil {
		log.Printf("Error adding to watchlist: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *API) handleWatchlistRemove(c *gin.Context) {
	tmdbID, mediaType, ok := titleParams(c)
	if !ok {
		return
	}
	if err := a.DB.RemoveFromWatchlist(c.GetInt("user_id"), tmdbID, mediaType); err != nil {
		log.Printf("Error removing from watchlist: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleWatchlistToggle is the atomic add-or-remove used by the watchlist
// button, replacing the old check-then-act round trip pair.
func (a *API) handleWatchlistToggle(c *gin.Context) {
	var movie m.MovieInput
	if err := c.ShouldBindJSON(&movie); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid movie data"})
		return
	}
	if !m.ValidMediaType(movie.MediaType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid media type"})
		return
	}

	added, err := a.DB.ToggleWatchlist(c.GetInt("user_id"), movie)
	if err != nil {
		log.Printf("Error toggling watchlist: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}
