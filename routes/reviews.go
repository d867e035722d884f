package routes

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/burntkayatoast/web-dev-project/db"
	m "github.com/burntkayatoast/web-dev-project/models"
)

func (a *API) handleReviewsList(c *gin.Context) {
	reviews, err := a.DB.GetUserReviews(c.GetInt("user_id"))
	if err != nil {
		log.Printf("Error getting reviews: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (a *API) handleReviewSubmit(c *gin.Context) {
	var review m.ReviewInput
	if err := c.ShouldBindJSON(&review); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review data"})
		return
	}
	if !m.ValidMediaType(review.MediaType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid media type"})
		return
	}
	if review.Rating < 1 || review.Rating > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 10"})
		return
	}

	saved, err := a.DB.UpsertReview(c.GetInt("user_id"), review)
	if err != nil {
		log.Printf("Error saving review: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (a *API) handleReviewCheck(c *gin.Context) {
	tmdbID, mediaType, ok := titleParams(c)
	if !ok {
		return
	}
	review, err := a.DB.GetReviewForTitle(c.GetInt("user_id"), tmdbID, mediaType)
	if errors.Is(err, db.ErrReviewNotFound) {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}
	if err != nil {
		log.Printf("Error checking review: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": true, "review": review})
}

// handleReviewDelete backs the plain form post on the reviews page, so it
// redirects instead of answering JSON.
func (a *API) handleReviewDelete(c *gin.Context) {
	reviewID, err := strconv.Atoi(c.PostForm("review_id"))
	if err != nil {
		c.Redirect(http.StatusFound, "/reviews")
		return
	}

	err = a.DB.DeleteReview(reviewID, c.GetInt("user_id"))
	if err != nil && !errors.Is(err, db.ErrReviewNotFound) {
		log.Printf("Error deleting review: %v", err)
	}
	c.Redirect(http.StatusFound, "/reviews")
}
