package sqlstore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/models"
)

const (
	minPasswordLength = 6
	refreshTokenBytes = 32
	authenticatedRole = "authenticated"
)

type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Store) GetSession(ctx context.Context, accessToken string) (*backend.Identity, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, backend.ErrNoSession
	}

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(
		accessToken,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", backend.ErrNoSession, err)
	}
	if claims.Subject == "" || claims.Role != authenticatedRole {
		return nil, backend.ErrNoSession
	}
	return &backend.Identity{ID: claims.Subject, Email: claims.Email}, nil
}

func (s *Store) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	var account models.Account
	err := s.gorm.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, backend.ErrInvalidCredentials
		}
		return nil, &backend.Error{Op: "sign_in", Err: err}
	}
	if !VerifyPassword(account.PasswordHash, password) {
		return nil, backend.ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, account)
	if err != nil {
		return nil, &backend.Error{Op: "sign_in", Err: err}
	}
	s.Publish(backend.AuthEvent{Type: backend.SignedIn, Identity: session.Identity, Session: session})
	return session, nil
}

func (s *Store) SignUp(ctx context.Context, email, password string) (*backend.Session, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, &backend.Error{
			Op:      "sign_up",
			Status:  http.StatusUnprocessableEntity,
			Code:    "validation_failed",
			Message: "Unable to validate email address: invalid format",
		}
	}
	if len(password) < minPasswordLength {
		return nil, &backend.Error{
			Op:      "sign_up",
			Status:  http.StatusUnprocessableEntity,
			Code:    "weak_password",
			Message: fmt.Sprintf("Password should be at least %d characters.", minPasswordLength),
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, &backend.Error{Op: "sign_up", Err: err}
	}
	account := models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.gorm.WithContext(ctx).Create(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, backend.ErrEmailTaken
		}
		return nil, &backend.Error{Op: "sign_up", Err: err}
	}

	session, err := s.issueSession(ctx, account)
	if err != nil {
		return nil, &backend.Error{Op: "sign_up", Err: err}
	}
	s.Publish(backend.AuthEvent{Type: backend.SignedIn, Identity: session.Identity, Session: session})
	return session, nil
}

// Refresh exchanges a refresh token for a new session. Refresh tokens are
// single use.
func (s *Store) Refresh(ctx context.Context, refreshToken string) (*backend.Session, error) {
	if refreshToken == "" {
		return nil, backend.ErrNoSession
	}

	var session *backend.Session
	err := s.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored models.RefreshToken
		if err := tx.Where("token_hash = ?", hashToken(refreshToken)).First(&stored).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return backend.ErrNoSession
			}
			return err
		}
		if !s.now().Before(stored.ExpiresAt) {
			return backend.ErrNoSession
		}
		if err := tx.Delete(&stored).Error; err != nil {
			return err
		}

		var account models.Account
		if err := tx.Where("id = ?", stored.AccountID).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return backend.ErrNoSession
			}
			return err
		}

		issued, err := s.issueSessionTx(tx, account)
		if err != nil {
			return err
		}
		session = issued
		return nil
	})
	if err != nil {
		if errors.Is(err, backend.ErrNoSession) {
			return nil, backend.ErrNoSession
		}
		return nil, &backend.Error{Op: "refresh", Err: err}
	}

	s.Publish(backend.AuthEvent{
		Type:                 backend.TokenRefreshed,
		Identity:             session.Identity,
		Session:              session,
		PreviousRefreshToken: refreshToken,
	})
	return session, nil
}

// SignOut revokes every refresh token of the session's identity. Access
// tokens already issued stay valid until they expire.
func (s *Store) SignOut(ctx context.Context, session *backend.Session) error {
	if session == nil {
		return nil
	}
	err := s.gorm.WithContext(ctx).
		Where("account_id = ?", session.Identity.ID).
		Delete(&models.RefreshToken{}).Error

	s.Publish(backend.AuthEvent{Type: backend.SignedOut, Identity: session.Identity})
	if err != nil {
		return &backend.Error{Op: "sign_out", Err: err}
	}
	return nil
}

func (s *Store) issueSession(ctx context.Context, account models.Account) (*backend.Session, error) {
	return s.issueSessionTx(s.gorm.WithContext(ctx), account)
}

func (s *Store) issueSessionTx(tx *gorm.DB, account models.Account) (*backend.Session, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)

	claims := accessClaims{
		Email: account.Email,
		Role:  authenticatedRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := newRefreshToken()
	if err != nil {
		return nil, err
	}
	stored := models.RefreshToken{
		TokenHash: hashToken(refreshToken),
		AccountID: account.ID,
		ExpiresAt: now.Add(s.refreshTTL).UTC(),
	}
	if err := tx.Create(&stored).Error; err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &backend.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		Identity:     backend.Identity{ID: account.ID, Email: account.Email},
	}, nil
}

func newRefreshToken() (string, error) {
	token := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PruneRefreshTokens deletes refresh tokens past their expiry.
func (s *Store) PruneRefreshTokens(ctx context.Context) (int, error) {
	result := s.gorm.WithContext(ctx).
		Where("expires_at <= ?", s.now().UTC()).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		return 0, &backend.Error{Op: "prune_refresh_tokens", Err: result.Error}
	}
	return int(result.RowsAffected), nil
}
