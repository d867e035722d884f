package models

import "time"

// MediaType values accepted across the API. A cached title is identified
// by its TMDB id together with one of these.
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// ValidMediaType reports whether t is one of the two supported kinds.
func ValidMediaType(t string) bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

type User struct {
	ID             int    `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password,omitempty"`
	ProfilePicture string `json:"profile_picture"`
}

// Movie is the locally cached row for any movie or tv title a user has
// referenced. Unique per (tmdb_id, media_type).
type Movie struct {
	ID          int     `json:"id"`
	TmdbID      int     `json:"tmdb_id"`
	MediaType   string  `json:"media_type"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

type WatchlistItem struct {
	TmdbID      int       `json:"tmdb_id"`
	MediaType   string    `json:"media_type"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path"`
	ReleaseDate string    `json:"release_date"`
	VoteAverage float64   `json:"vote_average"`
	AddedAt     time.Time `json:"added_at"`
}

type Review struct {
	ID          int       `json:"id"`
	TmdbID      int       `json:"tmdb_id"`
	MediaType   string    `json:"media_type"`
	Rating      int       `json:"rating"`
	ReviewText  string    `json:"review_text"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path"`
	ReleaseDate string    `json:"release_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// MovieInput is the denormalized payload the frontend sends alongside a
// watchlist add or review submission so the cache row can be created lazily.
type MovieInput struct {
	TmdbID      int     `json:"tmdb_id" binding:"required"`
	MediaType   string  `json:"media_type" binding:"required"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

type ReviewInput struct {
	TmdbID      int     `json:"tmdb_id" binding:"required"`
	MediaType   string  `json:"media_type" binding:"required"`
	Rating      int     `json:"rating"`
	ReviewText  string  `json:"review_text"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

// Movie returns the cache-row fields of a review submission.
func (r ReviewInput) Movie() MovieInput {
	return MovieInput{
		TmdbID:      r.TmdbID,
		MediaType:   r.MediaType,
		Title:       r.Title,
		PosterPath:  r.PosterPath,
		ReleaseDate: r.ReleaseDate,
		VoteAverage: r.VoteAverage,
	}
}
