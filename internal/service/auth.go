package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pantrybook/backend/internal/middleware"
	"github.com/pantrybook/backend/internal/model"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService is the identity collaborator: it issues and validates the
// tokens the recipe endpoints trust. Recipes only ever see the opaque user
// id carried in the token claims.
type AuthService struct {
	users     *UserService
	jwtSecret string
}

func NewAuthService(users *UserService, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
	}
}

// Register creates a new user and returns a signed token for it.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password string) (string, error) {
	existing := &model.User{}
	if err := s.users.db.WithContext(ctx).Where("email = ?", email).First(existing).Error; err == nil {
		return "", errors.New("user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hashedPassword),
	}
	if _, err := s.users.UpsertUser(ctx, user); err != nil {
		return "", err
	}

	return s.generateToken(user.ID)
}

// Login verifies credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user model.User
	if err := s.users.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.generateToken(user.ID)
}

func (s *AuthService) generateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and verifies a token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			return nil, errors.New("invalid token claims")
		}
		return &middleware.TokenClaims{UserID: userID}, nil
	}

	return nil, errors.New("invalid token")
}
