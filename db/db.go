package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "embed"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	m "github.com/burntkayatoast/web-dev-project/models"
)

//go:embed schema.sql
var schema string

// Sentinel errors surfaced to handlers so they can pick the right status
// code and user-facing message.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrFieldTooLong       = errors.New("field value too long")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrReviewNotFound     = errors.New("review not found")
)

// Service is the persistence surface consumed by the route handlers.
type Service interface {
	InsertNewUser(user m.User) (m.User, error)
	ValidateUser(username, password string) (m.User, error)
	GetUserByID(userID int) (m.User, error)
	UpdateUser(userID int, update UserUpdate) error
	DeleteUser(userID int) error

	IsInWatchlist(userID, tmdbID int, mediaType string) (bool, error)
	AddToWatchlist(userID int, movie m.MovieInput) error
	RemoveFromWatchlist(userID, tmdbID int, mediaType string) error
	ToggleWatchlist(userID int, movie m.MovieInput) (bool, error)
	GetUserWatchlist(userID int) ([]m.WatchlistItem, error)

	UpsertReview(userID int, review m.ReviewInput) (m.Review, error)
	GetUserReviews(userID int) ([]m.Review, error)
	GetReviewForTitle(userID, tmdbID int, mediaType string) (m.Review, error)
	DeleteReview(reviewID, userID int) error
}

// SQLService implements Service on top of a shared Postgres pool.
type SQLService struct {
	db *sql.DB
}

// NewService opens the connection pool and verifies connectivity.
func NewService(dsn string) (*SQLService, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach db: %w", err)
	}
	return &SQLService{db: db}, nil
}

// NewServiceWithDB wraps an existing pool. Used by tests.
func NewServiceWithDB(db *sql.DB) *SQLService {
	return &SQLService{db: db}
}

// InitSchema creates the tables if they don't exist yet.
func (s *SQLService) InitSchema() error {
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLService) Close() error {
	return s.db.Close()
}

// mapConstraintError translates Postgres constraint violations into the
// sentinel errors the handlers know how to present.
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505": // unique_violation
		switch pqErr.Constraint {
		case "users_email_key":
			return ErrEmailTaken
		case "users_username_key":
			return ErrUsernameTaken
		}
	case "22001": // string_data_right_truncation
		return ErrFieldTooLong
	}
	return err
}

func (s *SQLService) InsertNewUser(user m.User) (m.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return m.User{}, err
	}

	query := `INSERT INTO users (first_name, last_name, username, email, password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, profile_picture`
	err = s.db.QueryRow(query, user.FirstName, user.LastName, user.Username, user.Email, hashedPassword).
		Scan(&user.ID, &user.ProfilePicture)
	if err != nil {
		return m.User{}, mapConstraintError(err)
	}

	user.Password = ""
	return user, nil
}

// ValidateUser looks up the first user matching username and verifies the
// password. bcrypt's comparison is constant-time.
func (s *SQLService) ValidateUser(username, password string) (m.User, error) {
	var user m.User
	query := `SELECT id, first_name, last_name, username, email, password, profile_picture
		FROM users WHERE username = $1 ORDER BY id LIMIT 1`

	err := s.db.QueryRow(query, username).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Username,
		&user.Email, &user.Password, &user.ProfilePicture,
	)
	if err == sql.ErrNoRows {
		return m.User{}, ErrUserNotFound
	}
	if err != nil {
		return m.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return m.User{}, ErrInvalidCredentials
	}
	user.Password = ""
	return user, nil
}

func (s *SQLService) GetUserByID(userID int) (m.User, error) {
	var user m.User
	query := `SELECT id, first_name, last_name, username, email, profile_picture
		FROM users WHERE id = $1`
	err := s.db.QueryRow(query, userID).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Username,
		&user.Email, &user.ProfilePicture,
	)
	if err == sql.ErrNoRows {
		return m.User{}, ErrUserNotFound
	}
	if err != nil {
		return m.User{}, err
	}
	return user, nil
}

// UserUpdate carries the optional profile-edit fields. Empty strings are
// left untouched.
type UserUpdate struct {
	FirstName      string
	LastName       string
	Username       string
	Email          string
	Password       string
	ProfilePicture string
}

func (s *SQLService) UpdateUser(userID int, update UserUpdate) error {
	updates := []string{}
	args := []interface{}{}

	add := func(column, value string) {
		updates = append(updates, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}
	if update.FirstName != "" {
		add("first_name", update.FirstName)
	}
	if update.LastName != "" {
		add("last_name", update.LastName)
	}
	if update.Username != "" {
		add("username", update.Username)
	}
	if update.Email != "" {
		add("email", update.Email)
	}
	if update.ProfilePicture != "" {
		add("profile_picture", update.ProfilePicture)
	}
	if update.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(update.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		add("password", string(hashedPassword))
	}

	if len(updates) == 0 {
		return errors.New("no fields to update")
	}

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(updates, ", "), len(args)+1)
	args = append(args, userID)

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return mapConstraintError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes the account. Watchlist links and reviews go with it
// through the ON DELETE CASCADE foreign keys.
func (s *SQLService) DeleteUser(userID int) error {
	result, err := s.db.Exec(`DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
