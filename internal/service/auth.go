package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"postdeck/internal/config"
	"postdeck/internal/model"
	"postdeck/internal/repository"
)

// AuthService issues JWT access tokens and rotates refresh tokens, with
// reuse detection: presenting an already-revoked refresh token burns every
// live token of that user.
type AuthService struct {
	refreshTokenRepo repository.RefreshTokenRepository
	config           *config.Config
}

func NewAuthService(refreshTokenRepo repository.RefreshTokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		refreshTokenRepo: refreshTokenRepo,
		config:           cfg,
	}
}

// GenerateTokenPair issues a new access token and persists a refresh token.
func (s *AuthService) GenerateTokenPair(ctx context.Context, user *model.User, deviceInfo, ipAddress string) (*model.TokenPair, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshTokenRaw := uuid.New().String()
	refreshToken := &model.RefreshToken{
		UserID:    user.ID,
		TokenHash: s.hashToken(refreshTokenRaw),
		ExpiresAt: time.Now().Add(time.Duration(s.config.RefreshTokenMaxAge) * time.Second),
	}
	if deviceInfo != "" {
		refreshToken.DeviceInfo = &deviceInfo
	}
	if ipAddress != "" {
		refreshToken.IPAddress = &ipAddress
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw,
		ExpiresIn:    s.config.AccessTokenMaxAge,
	}, nil
}

// RefreshTokens validates the presented refresh token and rotates a new pair.
func (s *AuthService) RefreshTokens(ctx context.Context, user *model.User, refreshTokenRaw, deviceInfo, ipAddress string) (*model.TokenPair, error) {
	token, err := s.lookup(ctx, refreshTokenRaw)
	if err != nil {
		return nil, err
	}

	if token.IsRevoked() {
		// Reuse of a rotated token means the raw value leaked somewhere.
		if err := s.refreshTokenRepo.RevokeAllForUser(ctx, token.UserID); err != nil {
			return nil, fmt.Errorf("revoke token family: %w", err)
		}
		return nil, model.ErrRefreshTokenReused
	}
	if token.IsExpired() {
		return nil, model.ErrRefreshTokenExpired
	}

	newPair, err := s.GenerateTokenPair(ctx, user, deviceInfo, ipAddress)
	if err != nil {
		return nil, err
	}

	var replacedByID *string
	if newToken, err := s.refreshTokenRepo.FindByTokenHash(ctx, s.hashToken(newPair.RefreshToken)); err == nil {
		replacedByID = &newToken.ID
	}
	if err := s.refreshTokenRepo.Revoke(ctx, token.ID, replacedByID); err != nil {
		return nil, fmt.Errorf("revoke rotated token: %w", err)
	}

	return newPair, nil
}

// TokenOwner resolves the user id behind a raw refresh token without
// rotating it; the refresh handler uses this to load the user first.
func (s *AuthService) TokenOwner(ctx context.Context, refreshTokenRaw string) (int64, error) {
	token, err := s.lookup(ctx, refreshTokenRaw)
	if err != nil {
		return 0, err
	}
	return token.UserID, nil
}

func (s *AuthService) RevokeRefreshToken(ctx context.Context, refreshTokenRaw string) error {
	token, err := s.lookup(ctx, refreshTokenRaw)
	if err != nil {
		return err
	}
	return s.refreshTokenRepo.Revoke(ctx, token.ID, nil)
}

func (s *AuthService) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	return s.refreshTokenRepo.RevokeAllForUser(ctx, userID)
}

func (s *AuthService) lookup(ctx context.Context, refreshTokenRaw string) (*model.RefreshToken, error) {
	token, err := s.refreshTokenRepo.FindByTokenHash(ctx, s.hashToken(refreshTokenRaw))
	if err != nil {
		return nil, model.ErrRefreshTokenNotFound
	}
	return token, nil
}

func (s *AuthService) generateAccessToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     now.Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *AuthService) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
