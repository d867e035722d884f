package db

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	m "github.com/burntkayatoast/web-dev-project/models"
)

func newMockService(t *testing.T) (*SQLService, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewServiceWithDB(mockDB), mock
}

func TestInsertNewUser(t *testing.T) {
	t.Run("success hashes the password and returns the new id", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectQuery("INSERT INTO users").
			WithArgs("Jane", "Doe", "janedoe", "jane@example.com", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "profile_picture"}).
				AddRow(7, "/static/images/default-avatar.svg"))

		user, err := service.InsertNewUser(m.User{
			FirstName: "Jane", LastName: "Doe",
			Username: "janedoe", Email: "jane@example.com", Password: "secret",
		})
		require.NoError(t, err)
		assert.Equal(t, 7, user.ID)
		assert.Empty(t, user.Password, "hash must not leak back to the caller")
		assert.Equal(t, "/static/images/default-avatar.svg", user.ProfilePicture)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email maps to ErrEmailTaken", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		_, err := service.InsertNewUser(m.User{
			FirstName: "Jane", LastName: "Doe",
			Username: "janedoe", Email: "jane@example.com", Password: "secret",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("duplicate username maps to ErrUsernameTaken", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

		_, err := service.InsertNewUser(m.User{
			FirstName: "Jane", LastName: "Doe",
			Username: "janedoe", Email: "jane@example.com", Password: "secret",
		})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("oversized field maps to ErrFieldTooLong", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "22001"})

		_, err := service.InsertNewUser(m.User{
			FirstName: "Jane", LastName: "Doe",
			Username: "janedoe", Email: "jane@example.com", Password: "secret",
		})
		assert.ErrorIs(t, err, ErrFieldTooLong)
	})
}

func userRow(t *testing.T, password string) *sqlmock.Rows {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "username", "email", "password", "profile_picture",
	}).AddRow(1, "Jane", "Doe", "janedoe", "jane@example.com", string(hashed), "/static/images/default-avatar.svg")
}

func TestValidateUser(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("janedoe").
			WillReturnRows(userRow(t, "secret"))

		user, err := service.ValidateUser("janedoe", "secret")
		require.NoError(t, err)
		assert.Equal(t, 1, user.ID)
		assert.Empty(t, user.Password)
	})

	t.Run("wrong password", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("janedoe").
			WillReturnRows(userRow(t, "secret"))

		_, err := service.ValidateUser("janedoe", "not-the-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "first_name", "last_name", "username", "email", "password", "profile_picture",
			}))

		_, err := service.ValidateUser("ghost", "whatever")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUpdateUser(t *testing.T) {
	t.Run("updates only the provided fields", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectExec("UPDATE users SET email = \\$1 WHERE id = \\$2").
			WithArgs("new@example.com", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := service.UpdateUser(1, UserUpdate{Email: "new@example.com"})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectExec("UPDATE users SET").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := service.UpdateUser(99, UserUpdate{Email: "new@example.com"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("nothing to update", func(t *testing.T) {
		service, _ := newMockService(t)
		err := service.UpdateUser(1, UserUpdate{})
		assert.Error(t, err)
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("single delete, links cascade", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectExec("DELETE FROM users WHERE id").
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, service.DeleteUser(1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectExec("DELETE FROM users WHERE id").
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, service.DeleteUser(99), ErrUserNotFound)
	})
}

func fightClub() m.MovieInput {
	return m.MovieInput{
		TmdbID:      550,
		MediaType:   m.MediaTypeMovie,
		Title:       "Fight Club",
		PosterPath:  "/poster.jpg",
		ReleaseDate: "1999-10-15",
		VoteAverage: 8.4,
	}
}

func TestAddToWatchlist(t *testing.T) {
	service, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO movies").
		WithArgs(550, "movie", "Fight Club", "/poster.jpg", "1999-10-15", 8.4).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec("INSERT INTO user_movies").
		WithArgs(1, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, service.AddToWatchlist(1, fightClub()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToWatchlistTwiceIsNoOp(t *testing.T) {
	service, mock := newMockService(t)

	// The second insert conflicts on (user_id, movie_id) and affects no
	// rows, which is still a success.
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO movies").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec("INSERT INTO user_movies").
		WithArgs(1, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	assert.NoError(t, service.AddToWatchlist(1, fightClub()))
}

func TestToggleWatchlist(t *testing.T) {
	t.Run("adds when absent", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO movies").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectExec("DELETE FROM user_movies WHERE user_id").
			WithArgs(1, 3).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO user_movies").
			WithArgs(1, 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		added, err := service.ToggleWatchlist(1, fightClub())
		require.NoError(t, err)
		assert.True(t, added)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("removes when present", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO movies").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectExec("DELETE FROM user_movies WHERE user_id").
			WithArgs(1, 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		added, err := service.ToggleWatchlist(1, fightClub())
		require.NoError(t, err)
		assert.False(t, added)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRemoveFromWatchlistAbsentIsNoOp(t *testing.T) {
	service, mock := newMockService(t)

	mock.ExpectExec("DELETE FROM user_movies USING movies").
		WithArgs(1, 550, "movie").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, service.RemoveFromWatchlist(1, 550, "movie"))
}

func TestIsInWatchlist(t *testing.T) {
	service, mock := newMockService(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(1, 550, "movie").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	inWatchlist, err := service.IsInWatchlist(1, 550, "movie")
	require.NoError(t, err)
	assert.True(t, inWatchlist)
}

func TestGetUserWatchlist(t *testing.T) {
	service, mock := newMockService(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM user_movies").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{
			"tmdb_id", "media_type", "title", "poster_path", "release_date", "vote_average", "added_at",
		}).
			AddRow(1399, "tv", "Game of Thrones", "/got.jpg", "2011-04-17", 8.4, now).
			AddRow(550, "movie", "Fight Club", "/poster.jpg", "1999-10-15", 8.4, now.Add(-time.Hour)))

	watchlist, err := service.GetUserWatchlist(1)
	require.NoError(t, err)
	require.Len(t, watchlist, 2)
	assert.Equal(t, "Game of Thrones", watchlist[0].Title)
	assert.Equal(t, "Fight Club", watchlist[1].Title)
}

func TestGetUserWatchlistEmpty(t *testing.T) {
	service, mock := newMockService(t)

	mock.ExpectQuery("SELECT (.+) FROM user_movies").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{
			"tmdb_id", "media_type", "title", "poster_path", "release_date", "vote_average", "added_at",
		}))

	watchlist, err := service.GetUserWatchlist(1)
	require.NoError(t, err)
	assert.NotNil(t, watchlist)
	assert.Empty(t, watchlist)
}

func TestUpsertReview(t *testing.T) {
	service, mock := newMockService(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO movies").
		WithArgs(550, "movie", "Fight Club", "/poster.jpg", "1999-10-15", 8.4).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery("INSERT INTO user_reviews").
		WithArgs(1, 3, "movie", 9, "still holds up").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(12, now))
	mock.ExpectCommit()

	saved, err := service.UpsertReview(1, m.ReviewInput{
		TmdbID: 550, MediaType: m.MediaTypeMovie,
		Rating: 9, ReviewText: "still holds up",
		Title: "Fight Club", PosterPath: "/poster.jpg",
		ReleaseDate: "1999-10-15", VoteAverage: 8.4,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, saved.ID)
	assert.Equal(t, 9, saved.Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReviewForTitleNotFound(t *testing.T) {
	service, mock := newMockService(t)

	mock.ExpectQuery("SELECT (.+) FROM user_reviews").
		WithArgs(1, 550, "movie").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tmdb_id", "media_type", "rating", "review_text",
			"title", "poster_path", "release_date", "created_at",
		}))

	_, err := service.GetReviewForTitle(1, 550, "movie")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestDeleteReview(t *testing.T) {
	t.Run("owner deletes", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectExec("DELETE FROM user_reviews WHERE id").
			WithArgs(12, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, service.DeleteReview(12, 1))
	})

	t.Run("someone else's review is untouched", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectExec("DELETE FROM user_reviews WHERE id").
			WithArgs(12, 2).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, service.DeleteReview(12, 2), ErrReviewNotFound)
	})
}

func TestMapConstraintError(t *testing.T) {
	plain := errors.New("boom")
	assert.Equal(t, plain, mapConstraintError(plain))
	assert.ErrorIs(t, mapConstraintError(&pq.Error{Code: "23505", Constraint: "users_email_key"}), ErrEmailTaken)
	assert.ErrorIs(t, mapConstraintError(&pq.Error{Code: "22001"}), ErrFieldTooLong)
}
