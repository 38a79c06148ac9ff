package resolver

import (
	"context"
	"database/sql"
	"errors"

	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth"
	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/db"

	"github.com/google/uuid"
)

// DBResolver resolves identities using the database: identity lookup first,
// then email-based linking, then account creation.
type DBResolver struct {
	db *db.DB
}

func NewDBResolver(db *db.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (auth.User, error) {

	if identity == nil {
		return auth.User{}, errors.New("identity is nil")
	}

	// 1. Try identity lookup (provider + provider_user_id)
	var userID uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM identities
		WHERE provider = $1
		  AND provider_user_id = $2
	`,
		identity.Provider,
		identity.ProviderUserID,
	).Scan(&userID)

	if err == nil {
		return r.loadUser(ctx, userID)
	}

	if err != sql.ErrNoRows {
		return auth.User{}, err
	}

	// 2. Try email-based linking (existing user, new provider)
	err = r.db.QueryRowContext(ctx, `
		SELECT id
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`,
		identity.Email,
	).Scan(&userID)

	if err == nil {
		if err := r.linkIdentity(ctx, userID, identity); err != nil {
			return auth.User{}, err
		}
		return r.loadUser(ctx, userID)
	}

	if err != sql.ErrNoRows {
		return auth.User{}, err
	}

	// 3. Create new user from the provider's claims
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, email_verified, display_name, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`,
		identity.Email,
		identity.EmailVerified,
		identity.DisplayName,
		identity.AvatarURL,
	).Scan(&userID)

	if err != nil {
		return auth.User{}, err
	}

	// 4. Create identity mapping
	if err := r.linkIdentity(ctx, userID, identity); err != nil {
		return auth.User{}, err
	}

	return r.loadUser(ctx, userID)
}

func (r *DBResolver) linkIdentity(ctx context.Context, userID uuid.UUID, identity *auth.Identity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO identities (user_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
	`,
		userID,
		identity.Provider,
		identity.ProviderUserID,
	)
	return err
}

func (r *DBResolver) loadUser(ctx context.Context, userID uuid.UUID) (auth.User, error) {
	var u auth.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, avatar_url
		FROM users
		WHERE id = $1
	`, userID).Scan(&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL)
	if err != nil {
		return auth.User{}, err
	}
	return u, nil
}
