package db

import (
	m "github.com/burntkayatoast/web-dev-project/models"
)

// upsertMovieQuery lazily creates the cache row for a title. Only the title
// is refreshed on conflict; the remaining fields keep their first-seen values.
const upsertMovieQuery = `
	INSERT INTO movies (tmdb_id, media_type, title, poster_path, release_date, vote_average)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (tmdb_id, media_type) DO UPDATE SET title = EXCLUDED.title
	RETURNING id`

func (s *SQLService) IsInWatchlist(userID, tmdbID int, mediaType string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
		SELECT 1 FROM user_movies w
		JOIN movies m ON w.movie_id = m.id
		WHERE w.user_id = $1 AND m.tmdb_id = $2 AND m.media_type = $3)`
	err := s.db.QueryRow(query, userID, tmdbID, mediaType).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// AddToWatchlist creates the cache row and link in one transaction. Adding a
// title that is already on the list is a no-op.
func (s *SQLService) AddToWatchlist(userID int, movie m.MovieInput) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var movieID int
	err = tx.QueryRow(upsertMovieQuery,
		movie.TmdbID, movie.MediaType, movie.Title,
		movie.PosterPath, movie.ReleaseDate, movie.VoteAverage,
	).Scan(&movieID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO user_movies (user_id, movie_id) VALUES ($1, $2)
		ON CONFLICT (user_id, movie_id) DO NOTHING`, userID, movieID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveFromWatchlist deletes the link if present. Removing an entry that
// isn't on the list succeeds without effect.
func (s *SQLService) RemoveFromWatchlist(userID, tmdbID int, mediaType string) error {
	query := `DELETE FROM user_movies USING movies
		WHERE user_movies.movie_id = movies.id
		AND user_movies.user_id = $1 AND movies.tmdb_id = $2 AND movies.media_type = $3`
	_, err := s.db.Exec(query, userID, tmdbID, mediaType)
	return err
}

// ToggleWatchlist flips membership in a single transaction: the delete and
// the conditional insert are keyed on the (user_id, movie_id) constraint, so
// two concurrent toggles can't double-add or error out.
func (s *SQLService) ToggleWatchlist(userID int, movie m.MovieInput) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var movieID int
	err = tx.QueryRow(upsertMovieQuery,
		movie.TmdbID, movie.MediaType, movie.Title,
		movie.PosterPath, movie.ReleaseDate, movie.VoteAverage,
	).Scan(&movieID)
	if err != nil {
		return false, err
	}

	result, err := tx.Exec(`DELETE FROM user_movies WHERE user_id = $1 AND movie_id = $2`,
		userID, movieID)
	if err != nil {
		return false, err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	added := false
	if deleted == 0 {
		_, err = tx.Exec(`INSERT INTO user_movies (user_id, movie_id) VALUES ($1, $2)
			ON CONFLICT (user_id, movie_id) DO NOTHING`, userID, movieID)
		if err != nil {
			return false, err
		}
		added = true
	}
	return added, tx.Commit()
}

func (s *SQLService) GetUserWatchlist(userID int) ([]m.WatchlistItem, error) {
	query := `SELECT m.tmdb_id, m.media_type, m.title, m.poster_path,
			m.release_date, m.vote_average, w.added_at
		FROM user_movies w
		JOIN movies m ON w.movie_id = m.id
		WHERE w.user_id = $1
		ORDER BY w.added_at DESC`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	watchlist := []m.WatchlistItem{}
	for rows.Next() {
		var item m.WatchlistItem
		err := rows.Scan(
			&item.TmdbID, &item.MediaType, &item.Title, &item.PosterPath,
			&item.ReleaseDate, &item.VoteAverage, &item.AddedAt,
		)
		if err != nil {
			return nil, err
		}
		watchlist = append(watchlist, item)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return watchlist, nil
}
