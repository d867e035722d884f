package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/burntkayatoast/web-dev-project/models"
)

func postJSON(router http.Handler, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func fightClubInput() m.MovieInput {
	return m.MovieInput{
		TmdbID:      550,
		MediaType:   m.MediaTypeMovie,
		Title:       "Fight Club",
		PosterPath:  "/poster.jpg",
		ReleaseDate: "1999-10-15",
		VoteAverage: 8.4,
	}
}

func TestHandleWatchlistCheck(t *testing.T) {
	mockDB := new(MockDBService)
	mockDB.On("IsInWatchlist", 1, 550, "movie").Return(true, nil)

	api := &API{DB: mockDB}
	router := newTestRouter(t)
	router.GET("/api/watchlist/check/:id/:type", asUser(testUser), api.handleWatchlistCheck)

	req := httptest.NewRequest("GET", "/api/watchlist/check/550/movie", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["inWatchlist"])
	mockDB.AssertExpectations(t)
}

func TestHandleWatchlistCheckRejectsBadParams(t *testing.T) {
	api := &API{DB: new(MockDBService)}
	router := newTestRouter(t)
	router.GET("/api/watchlist/check/:id/:type", asUser(testUser), api.handleWatchlistCheck)

	for _, path := range []string{
		"/api/watchlist/check/abc/movie",
		"/api/watchlist/check/550/series",
	} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestHandleWatchlistAdd(t *testing.T) {
	mockDB := new(MockDBService)
	mockDB.On("AddToWatchlist", 1, fightClubInput()).Return(nil)

	api := &API{DB: mockDB}
	router := newTestRouter(t)
	router.POST("/api/watchlist", asUser(testUser), api.handleWatchlistAdd)

	w := postJSON(router, "/api/watchlist", fightClubInput())

	assert.Equal(t, http.StatusOK, w.Code)
	mockDB.AssertExpectations(t)
}

func TestHandleWatchlistAddRejectsBadMediaType(t *testing.T) {
	mockDB := new(MockDBService)
	api := &API{DB: mockDB}
	router := newTestRouter(t)
	router.POST("/api/watchlist", asUser(testUser), api.handleWatchlistAdd)

	input := fightClubInput()
	input.MediaType = "series"
	w := postJSON(router, "/api/watchlist", input)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockDB.AssertNotCalled(t, "AddToWatchlist")
}

func TestHandleWatchlistRemove(t *testing.T) {
	mockDB := new(MockDBService)
	mockDB.On("RemoveFromWatchlist", 1, 550, "movie").Return(nil)

	api := &API{DB: mockDB}
	router := newTestRouter(t)
	router.DELETE("/api/watchlist/:id/:type", asUser(testUser), api.handleWatchlistRemove)

	req := httptest.NewRequest("DELETE", "/api/watchlist/550/movie", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockDB.AssertExpectations(t)
}

func TestHandleWatchlistToggle(t *testing.T) {
	t.Run("reports added", func(t *testing.T) {
		mockDB := new(MockDBService)
		mockDB.On("ToggleWatchlist", 1, fightClubInput()).Return(true, nil)

		api := &API{DB: mockDB}
		router := newTestRouter(t)
		router.POST("/api/watchlist/toggle", asUser(testUser), api.handleWatchlistToggle)

		w := postJSON(router, "/api/watchlist/toggle", fightClubInput())

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]bool
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response["added"])
	})

	t.Run("reports removed", func(t *testing.T) {
		mockDB := new(MockDBService)
		mockDB.On("ToggleWatchlist", 1, fightClubInput()).Return(false, nil)

		api := &API{DB: mockDB}
		router := newTestRouter(t)
		router.POST("/api/watchlist/toggle", asUser(testUser), api.handleWatchlistToggle)

		w := postJSON(router, "/api/watchlist/toggle", fightClubInput())

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]bool
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response["added"])
	})
}

func TestHandleWatchlistList(t *testing.T) {
	mockDB := new(MockDBService)
	mockDB.On("GetUserWatchlist", 1).Return([]m.WatchlistItem{
		{TmdbID: 550, MediaType: "movie", Title: "Fight Club", AddedAt: time.Now()},
	}, nil)

	api := &API{DB: mockDB}
	router := newTestRouter(t)
	router.GET("/api/watchlist", asUser(testUser), api.handleWatchlistList)

	req := httptest.NewRequest("GET", "/api/watchlist", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var items []m.WatchlistItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Fight Club", items[0].Title)
}
