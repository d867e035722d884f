package routes

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	m "github.com/burntkayatoast/web-dev-project/models"
)

// pageData builds the common template bindings. The user summary is
// included when a session exists so the navbar can switch state; anonymous
// visitors still get the page.
func (a *API) pageData(c *gin.Context, extra gin.H) gin.H {
	data := gin.H{}
	if user, err := a.userFromRequest(c); err == nil {
		data["User"] = user
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func (a *API) pageHome(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", a.pageData(c, nil))
}

func (a *API) pageMovies(c *gin.Context) {
	c.HTML(http.StatusOK, "movies.html", a.pageData(c, nil))
}

func (a *API) pageTVShows(c *gin.Context) {
	c.HTML(http.StatusOK, "tv_shows.html", a.pageData(c, nil))
}

func (a *API) pagePopular(c *gin.Context) {
	c.HTML(http.StatusOK, "popular.html", a.pageData(c, nil))
}

func (a *API) pageTrending(c *gin.Context) {
	c.HTML(http.StatusOK, "trending.html", a.pageData(c, nil))
}

func (a *API) pageMovieDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusNotFound, "not_found.html", a.pageData(c, nil))
		return
	}
	detail, err := a.TMDB.MovieDetails(c.Request.Context(), id)
	if err != nil {
		log.Printf("Error fetching movie details: %v", err)
		c.HTML(http.StatusInternalServerError, "error.html", a.pageData(c, nil))
		return
	}
	c.HTML(http.StatusOK, "movie_detail.html", a.pageData(c, gin.H{
		"Detail":    detail,
		"Director":  detail.Director(),
		"MediaType": m.MediaTypeMovie,
	}))
}

func (a *API) pageTVDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusNotFound, "not_found.html", a.pageData(c, nil))
		return
	}
	detail, err := a.TMDB.TVDetails(c.Request.Context(), id)
	if err != nil {
		log.Printf("Error fetching tv details: %v", err)
		c.HTML(http.StatusInternalServerError, "error.html", a.pageData(c, nil))
		return
	}
	c.HTML(http.StatusOK, "tv_detail.html", a.pageData(c, gin.H{
		"Detail":    detail,
		"Creators":  detail.Creators(),
		"MediaType": m.MediaTypeTV,
	}))
}

func (a *API) pageRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", a.pageData(c, nil))
}

func (a *API) pageLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", a.pageData(c, nil))
}

func (a *API) pageProfile(c *gin.Context) {
	user, err := a.DB.GetUserByID(c.GetInt("user_id"))
	if err != nil {
		log.Printf("Error loading profile: %v", err)
		c.HTML(http.StatusInternalServerError, "error.html", a.pageData(c, nil))
		return
	}
	c.HTML(http.StatusOK, "profile.html", gin.H{"User": user})
}

func (a *API) pageEditProfile(c *gin.Context) {
	user, err := a.DB.GetUserByID(c.GetInt("user_id"))
	if err != nil {
		log.Printf("Error loading profile: %v", err)
		c.HTML(http.StatusInternalServerError, "error.html", a.pageData(c, nil))
		return
	}
	c.HTML(http.StatusOK, "edit_profile.html", gin.H{"User": user})
}

func (a *API) pageWatchlist(c *gin.Context) {
	c.HTML(http.StatusOK, "watchlist.html", gin.H{"User": currentUser(c)})
}

func (a *API) pageReviews(c *gin.Context) {
	c.HTML(http.StatusOK, "reviews.html", gin.H{"User": currentUser(c)})
}

// pageAddReview renders the review form for the title named in the query
// string; the client script loads the title details through our own proxy.
func (a *API) pageAddReview(c *gin.Context) {
	tmdbID, err := strconv.Atoi(c.Query("id"))
	mediaType := c.DefaultQuery("type", m.MediaTypeMovie)
	if err != nil || !m.ValidMediaType(mediaType) {
		c.HTML(http.StatusNotFound, "not_found.html", a.pageData(c, nil))
		return
	}
	c.HTML(http.StatusOK, "add_review.html", gin.H{
		"User":      currentUser(c),
		"TmdbID":    tmdbID,
		"MediaType": mediaType,
	})
}
