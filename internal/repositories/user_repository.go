package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chat-backend/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
)

// UserRepository abstracts user persistence.
type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash string, avatar, bio *string) (models.User, error)
	GetByID(ctx context.Context, id int) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Search(ctx context.Context, selfID int, query string, limit int) ([]models.Profile, error)
	SetPresence(ctx context.Context, userID int, online bool) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, email, password_hash, avatar, bio, is_online, last_seen, created_at, updated_at`

// Create inserts a new user. New accounts start online since registration
// doubles as the first login.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string, avatar, bio *string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`INSERT INTO users (username, email, password_hash, avatar, bio, is_online)
         VALUES ($1, $2, $3, $4, $5, TRUE)
         RETURNING `+userColumns,
		username, email, passwordHash, avatar, bio)
	if err != nil {
		return models.User{}, mapUserConflict(err)
	}
	return user, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByEmail fetches a user by email, credential included, for login checks.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// Search finds users by username or email substring, excluding the caller.
func (r *UserRepo) Search(ctx context.Context, selfID int, query string, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.SelectContext(ctx, &profiles,
		`SELECT id, username, email, avatar, bio, is_online, last_seen, created_at
         FROM users
         WHERE id <> $1 AND (username ILIKE $2 OR email ILIKE $2)
         ORDER BY username
         LIMIT $3`,
		selfID, "%"+query+"%", limit)
	if profiles == nil {
		profiles = []models.Profile{}
	}
	return profiles, err
}

// SetPresence updates the stored presence flags. last_seen always advances so
// it reads as "last seen alive" rather than "last went offline".
func (r *UserRepo) SetPresence(ctx context.Context, userID int, online bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_online=$2, last_seen=NOW(), updated_at=NOW() WHERE id=$1`,
		userID, online)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

func mapUserConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "users_username_key":
			return ErrUsernameTaken
		case "users_email_key":
			return ErrEmailTaken
		}
	}
	return err
}
