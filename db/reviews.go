package db

import (
	"database/sql"

	m "github.com/burntkayatoast/web-dev-project/models"
)

// UpsertReview creates the cache row if needed and writes the review.
// Submitting a second review for the same title overwrites the first one,
// matching the watchlist's idempotent-add behavior.
func (s *SQLService) UpsertReview(userID int, review m.ReviewInput) (m.Review, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return m.Review{}, err
	}
	defer tx.Rollback()

	var movieID int
	err = tx.QueryRow(upsertMovieQuery,
		review.TmdbID, review.MediaType, review.Title,
		review.PosterPath, review.ReleaseDate, review.VoteAverage,
	).Scan(&movieID)
	if err != nil {
		return m.Review{}, err
	}

	saved := m.Review{
		TmdbID:      review.TmdbID,
		MediaType:   review.MediaType,
		Rating:      review.Rating,
		ReviewText:  review.ReviewText,
		Title:       review.Title,
		PosterPath:  review.PosterPath,
		ReleaseDate: review.ReleaseDate,
	}
	query := `INSERT INTO user_reviews (user_id, movie_id, media_type, rating, review_text)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, movie_id) DO UPDATE
			SET rating = EXCLUDED.rating, review_text = EXCLUDED.review_text, created_at = now()
		RETURNING id, created_at`
	err = tx.QueryRow(query, userID, movieID, review.MediaType, review.Rating, review.ReviewText).
		Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return m.Review{}, err
	}
	return saved, tx.Commit()
}

func (s *SQLService) GetUserReviews(userID int) ([]m.Review, error) {
	query := `SELECT r.id, m.tmdb_id, r.media_type, r.rating, r.review_text,
			m.title, m.poster_path, m.release_date, r.created_at
		FROM user_reviews r
		JOIN movies m ON r.movie_id = m.id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []m.Review{}
	for rows.Next() {
		var review m.Review
		err := rows.Scan(
			&review.ID, &review.TmdbID, &review.MediaType, &review.Rating,
			&review.ReviewText, &review.Title, &review.PosterPath,
			&review.ReleaseDate, &review.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *SQLService) GetReviewForTitle(userID, tmdbID int, mediaType string) (m.Review, error) {
	var review m.Review
	query := `SELECT r.id, m.tmdb_id, r.media_type, r.rating, r.review_text,
			m.title, m.poster_path, m.release_date, r.created_at
		FROM user_reviews r
		JOIN movies m ON r.movie_id = m.id
		WHERE r.user_id = $1 AND m.tmdb_id = $2 AND m.media_type = $3`

	err := s.db.QueryRow(query, userID, tmdbID, mediaType).Scan(
		&review.ID, &review.TmdbID, &review.MediaType, &review.Rating,
		&review.ReviewText, &review.Title, &review.PosterPath,
		&review.ReleaseDate, &review.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return m.Review{}, ErrReviewNotFound
	}
	if err != nil {
		return m.Review{}, err
	}
	return review, nil
}

// DeleteReview removes a review only when it belongs to userID; ownership is
// enforced in the delete predicate itself.
func (s *SQLService) DeleteReview(reviewID, userID int) error {
	result, err := s.db.Exec(`DELETE FROM user_reviews WHERE id = $1 AND user_id = $2`,
		reviewID, userID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
