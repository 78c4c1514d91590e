package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"

	"video-publisher/internal/entity"
)

var (
	ErrAccountInactive = errors.New("social account is not active")
	ErrTokenExpired    = errors.New("social account access token expired")
)

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

// FindByID returns ErrNotFound when the video is absent or owned by another user.
func (r *VideoRepository) FindByID(ctx context.Context, userID, videoID uuid.UUID) (*entity.VideoRef, error) {
	const q = `
SELECT id, title, original_file_name, file_path, description
FROM videos
WHERE id = $1 AND user_id = $2;
`
	var v entity.VideoRef
	if err := r.pool.QueryRow(ctx, q, videoID, userID).Scan(
		&v.ID,
		&v.Title,
		&v.OriginalFileName,
		&v.FilePath,
		&v.Description,
	); err != nil {
		return nil, classify(err)
	}
	return &v, nil
}

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// FindByID returns ErrNotFound when the account is absent, soft-deleted or
// owned by another user.
func (r *AccountRepository) FindByID(ctx context.Context, userID, accountID uuid.UUID) (*entity.AccountRef, error) {
	const q = `
SELECT id, platform, account_name
FROM social_accounts
WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL;
`
	var (
		a        entity.AccountRef
		platform string
	)
	if err := r.pool.QueryRow(ctx, q, accountID, userID).Scan(&a.ID, &platform, &a.AccountName); err != nil {
		return nil, classify(err)
	}
	a.Platform = entity.Platform(platform)
	return &a, nil
}

// Token returns the stored OAuth token of an active account. An inactive
// account yields ErrAccountInactive, an expired token ErrTokenExpired.
func (r *AccountRepository) Token(ctx context.Context, userID, accountID uuid.UUID) (*oauth2.Token, error) {
	const q = `
SELECT access_token, refresh_token, expires_at, is_active
FROM social_accounts
WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL;
`
	var (
		access    string
		refresh   *string
		expiresAt *time.Time
		active    bool
	)
	if err := r.pool.QueryRow(ctx, q, accountID, userID).Scan(&access, &refresh, &expiresAt, &active); err != nil {
		return nil, classify(err)
	}
	if !active {
		return nil, ErrAccountInactive
	}

	tok := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	if refresh != nil {
		tok.RefreshToken = *refresh
	}
	if expiresAt != nil {
		tok.Expiry = *expiresAt
	}
	if !tok.Valid() {
		return nil, ErrTokenExpired
	}
	return tok, nil
}

// GetAccessToken is Token reduced to the bearer string.
func (r *AccountRepository) GetAccessToken(ctx context.Context, userID, accountID uuid.UUID) (string, error) {
	tok, err := r.Token(ctx, userID, accountID)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
