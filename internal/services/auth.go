package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/storyarc/narrative-backend/internal/apperr"
	"github.com/storyarc/narrative-backend/internal/logger"
	"github.com/storyarc/narrative-backend/internal/repos"
	"github.com/storyarc/narrative-backend/internal/requestdata"
	"github.com/storyarc/narrative-backend/internal/types"
)

const bcryptCost = 12

type JWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (*types.User, string, error)
	Login(ctx context.Context, email, password string) (*types.User, string, error)
	ParseToken(tokenString string) (*requestdata.RequestData, error)
	GetTokenTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	jwtSecretKey  string
	tokenTTL      time.Duration
	freeTierLimit int
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, tokenTTL time.Duration, freeTierLimit int) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		jwtSecretKey:  jwtSecretKey,
		tokenTTL:      tokenTTL,
		freeTierLimit: freeTierLimit,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (as *authService) Register(ctx context.Context, email, password string) (*types.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("%w: a valid email is required", apperr.ErrInvalidInput)
	}
	if strings.TrimSpace(password) == "" {
		return nil, "", fmt.Errorf("%w: a password is required", apperr.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         types.RoleUser,
		TokensLimit:  as.freeTierLimit,
		UsageResetAt: time.Now().UTC().Truncate(24 * time.Hour),
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, exErr := as.userRepo.EmailExists(ctx, tx, email)
		if exErr != nil {
			return fmt.Errorf("check email: %w", exErr)
		}
		if exists {
			return apperr.ErrDuplicateIdentity
		}
		count, cErr := as.userRepo.CountUsers(ctx, tx)
		if cErr != nil {
			return fmt.Errorf("count users: %w", cErr)
		}
		// The first identity ever created bootstraps the admin role.
		if count == 0 {
			user.Role = types.RoleAdmin
		}
		return as.userRepo.Create(ctx, tx, user)
	})
	if err != nil {
		return nil, "", err
	}

	token, err := as.signToken(user)
	if err != nil {
		return nil, "", err
	}
	as.log.Info("Registered identity", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*types.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", apperr.ErrInvalidCredentials
	}

	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, "", apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("load identity: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.ErrInvalidCredentials
	}

	token, err := as.signToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (as *authService) signToken(user *types.User) (string, error) {
	claims := JWTClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (as *authService) ParseToken(tokenString string) (*requestdata.RequestData, error) {
	if tokenString == "" {
		return nil, apperr.ErrUnauthenticated
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthenticated, err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, apperr.ErrUnauthenticated
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", apperr.ErrUnauthenticated)
	}
	return &requestdata.RequestData{
		UserID:      userID,
		Email:       claims.Email,
		TokenString: tokenString,
	}, nil
}

func (as *authService) GetTokenTTL() time.Duration {
	return as.tokenTTL
}
