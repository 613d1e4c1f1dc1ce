package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/postloom/postloom/internal/config"
	"github.com/postloom/postloom/internal/models"
)

// Context keys set by the auth middleware.
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

type AuthService struct {
	db          *gorm.DB
	logger      *zap.Logger
	jwtSecret   []byte
	tokenTTL    time.Duration
	requireTOTP bool
}

func NewAuthService(cfg *config.AuthConfig, db *gorm.DB, logger *zap.Logger) *AuthService {
	ttl, err := time.ParseDuration(cfg.TokenTTL)
	if err != nil || ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &AuthService{
		db:          db,
		logger:      logger,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenTTL:    ttl,
		requireTOTP: cfg.RequireTOTP,
	}
}

// Register creates a user with a bcrypt password hash.
func (a *AuthService) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, &ValidationError{Field: "credentials", Reason: "email and password are required"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		DisplayName:  displayName,
	}
	if err := a.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("User registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login checks credentials (and the TOTP code when the user has one
// enrolled) and returns a signed session token.
func (a *AuthService) Login(ctx context.Context, email, password, totpCode string) (string, *models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrUnauthenticated
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		a.logger.Warn("Password check failed", zap.String("email", email))
		return "", nil, ErrUnauthenticated
	}

	if user.TOTPSecret != "" || a.requireTOTP {
		if user.TOTPSecret == "" {
			return "", nil, fmt.Errorf("totp required but not enrolled: %w", ErrUnauthenticated)
		}
		if !totp.Validate(totpCode, user.TOTPSecret) {
			a.logger.Warn("TOTP validation failed", zap.String("user_id", user.ID))
			return "", nil, ErrUnauthenticated
		}
	}

	token, err := a.issueToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// EnrollTOTP generates a TOTP secret for the user and returns the
// provisioning URL for authenticator apps.
func (a *AuthService) EnrollTOTP(ctx context.Context, userID string) (string, error) {
	var user models.User
	if err := a.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Postloom",
		AccountName: user.Email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	err = a.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("totp_secret", key.Secret()).Error
	if err != nil {
		return "", fmt.Errorf("failed to store TOTP secret: %w", err)
	}

	return key.URL(), nil
}

func (a *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(a.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns the user id and email.
func (a *AuthService) ParseToken(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrUnauthenticated
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return "", "", ErrUnauthenticated
	}
	return sub, email, nil
}

// Middleware authenticates every request with a bearer token and stores the
// caller identity in the gin context. Requests without a valid session fail
// fast with a distinct unauthenticated response.
func (a *AuthService) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(401, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		userID, email, err := a.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.JSON(401, gin.H{"error": "invalid or expired session"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserEmail, email)
		c.Next()
	}
}
