package credentials

import (
	"context"
	"database/sql"
	"errors"

	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/db"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("credentials already exist")
)

// Service owns the local username/password authentication path.
type Service struct {
	db     *db.DB
	hasher *Hasher
}

func NewService(db *db.DB, hasher *Hasher) *Service {
	return &Service{db: db, hasher: hasher}
}

// Register creates (or reuses) the user row for email and attaches a
// password credential. Plaintext never reaches storage or logs.
func (s *Service) Register(
	ctx context.Context,
	email string,
	password string,
) (auth.User, error) {

	var userID uuid.UUID

	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&userID)

	if err == sql.ErrNoRows {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO users (email, email_verified)
			VALUES ($1, false)
			RETURNING id
		`, email).Scan(&userID)
	}

	if err != nil {
		return auth.User{}, err
	}

	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM credentials WHERE user_id = $1
		)
	`, userID).Scan(&exists)

	if err != nil {
		return auth.User{}, err
	}

	if exists {
		return auth.User{}, ErrAlreadyRegistered
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return auth.User{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
	`, userID, hash, HashVersionArgon2id)

	if err != nil {
		return auth.User{}, err
	}

	return s.loadUser(ctx, userID)
}

// Authenticate checks email+password against the credential store and
// returns the user snapshot on success. Whether the user exists or the
// password was wrong is deliberately indistinguishable to the caller.
func (s *Service) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (auth.User, error) {

	var (
		userID uuid.UUID
		cred   Credential
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, c.id, c.password_hash, c.hash_version
		FROM users u
		JOIN credentials c ON c.user_id = u.id
		WHERE LOWER(u.email) = LOWER($1)
	`, email).Scan(&userID, &cred.ID, &cred.PasswordHash, &cred.HashVersion)

	if err != nil {
		return auth.User{}, ErrInvalidCredentials
	}

	matched, err := s.hasher.Verify(ctx, password, cred.PasswordHash)
	if err != nil {
		// Malformed stored hashes are an integrity bug, but the caller
		// still only learns "invalid credentials".
		return auth.User{}, err
	}
	if !matched {
		return auth.User{}, ErrInvalidCredentials
	}

	return s.loadUser(ctx, userID)
}

func (s *Service) loadUser(ctx context.Context, userID uuid.UUID) (auth.User, error) {
	var u auth.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, avatar_url
		FROM users
		WHERE id = $1
	`, userID).Scan(&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL)
	if err != nil {
		return auth.User{}, err
	}
	return u, nil
}
