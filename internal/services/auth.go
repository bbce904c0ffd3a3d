package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/quillhaven/journal-backend/internal/data/repos"
	types "github.com/quillhaven/journal-backend/internal/domain"
	apperrors "github.com/quillhaven/journal-backend/internal/pkg/errors"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (*TokenPair, error)
	RefreshUser(ctx context.Context, refreshToken string) (*TokenPair, error)
	LogoutUser(ctx context.Context, refreshToken string) error
	ParseAccessToken(tokenString string) (uuid.UUID, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) (*types.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" || !strings.Contains(user.Email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", apperrors.ErrInvalidArgument)
	}
	if len(user.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrInvalidArgument)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		as.log.Error("Failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	created, err := as.userRepo.Create(ctx, nil, user)
	if err != nil {
		as.log.Warn("Failed to create user", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	return as.issueTokens(ctx, user.ID)
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (*TokenPair, error) {
	tokenID, secret, err := splitRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	var pair *TokenPair
	txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stored, err := as.userTokenRepo.GetByID(ctx, tx, tokenID)
		if err != nil {
			return apperrors.ErrUnauthorized
		}
		if stored.RevokedAt != nil || stored.ExpiresAt.Before(time.Now()) {
			return apperrors.ErrUnauthorized
		}
		if subtle.ConstantTimeCompare([]byte(stored.RefreshToken), []byte(hashSecret(secret))) != 1 {
			return apperrors.ErrUnauthorized
		}

		if err := as.userTokenRepo.RevokeByID(ctx, tx, stored.ID); err != nil {
			as.log.Warn("Failed to revoke rotated refresh token", "error", err)
			return fmt.Errorf("failed to revoke rotated refresh token: %w", err)
		}
		pair, err = as.issueTokensTx(ctx, tx, stored.UserID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return pair, nil
}

func (as *authService) LogoutUser(ctx context.Context, refreshToken string) error {
	tokenID, secret, err := splitRefreshToken(refreshToken)
	if err != nil {
		return apperrors.ErrUnauthorized
	}
	stored, err := as.userTokenRepo.GetByID(ctx, nil, tokenID)
	if err != nil {
		return apperrors.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(stored.RefreshToken), []byte(hashSecret(secret))) != 1 {
		return apperrors.ErrUnauthorized
	}
	return as.userTokenRepo.RevokeByID(ctx, nil, stored.ID)
}

func (as *authService) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id in token: %w", err)
	}
	return userID, nil
}

func (as *authService) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	var pair *TokenPair
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		pair, txErr = as.issueTokensTx(ctx, tx, userID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (as *authService) issueTokensTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*TokenPair, error) {
	accessToken, err := as.generateAccessToken(userID)
	if err != nil {
		as.log.Warn("Failed to generate access token", "error", err)
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	secret, err := randomSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh secret: %w", err)
	}

	userToken := &types.UserToken{
		ID:           uuid.New(),
		UserID:       userID,
		RefreshToken: hashSecret(secret),
		ExpiresAt:    time.Now().Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(ctx, tx, userToken); err != nil {
		as.log.Warn("Failed to create user token", "error", err)
		return nil, fmt.Errorf("failed to create user token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: userToken.ID.String() + "." + secret,
	}, nil
}

func (as *authService) generateAccessToken(userID uuid.UUID) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// splitRefreshToken parses the wire format "<tokenID>.<secret>". Only the
// secret's hash is stored server side.
func splitRefreshToken(raw string) (uuid.UUID, string, error) {
	id, secret, ok := strings.Cut(raw, ".")
	if !ok || secret == "" {
		return uuid.Nil, "", fmt.Errorf("malformed refresh token")
	}
	tokenID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("malformed refresh token id: %w", err)
	}
	return tokenID, secret, nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
