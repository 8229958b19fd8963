package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/ctoutbank/portal-outbank-sub005/internal/config"
	"github.com/ctoutbank/portal-outbank-sub005/internal/dto"
	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/repository"
	"github.com/ctoutbank/portal-outbank-sub005/internal/worker"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	// RequestPasswordReset issues a persisted one-time token and mails it.
	// Always succeeds from the caller's view so the endpoint cannot be used
	// to probe which emails exist.
	RequestPasswordReset(ctx context.Context, req dto.PasswordResetRequest) error
	ConfirmPasswordReset(ctx context.Context, req dto.PasswordResetConfirm) error
}

type authService struct {
	users      repository.UserRepository
	tokens     repository.OneTimeTokenRepository
	dispatcher *worker.Dispatcher
	cfg        *config.Config
}

func NewAuthService(users repository.UserRepository, tokens repository.OneTimeTokenRepository, dispatcher *worker.Dispatcher, cfg *config.Config) AuthService {
	return &authService{users: users, tokens: tokens, dispatcher: dispatcher, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}
	if !user.Active {
		return nil, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         userToResponse(user),
	}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token invalid or expired")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("malformed token")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("malformed token")
	}

	user, err := s.users.FindByID(ctx, uid)
	if err != nil || !user.Active {
		return nil, errors.New("user not found or inactive")
	}

	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	newRefresh, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         userToResponse(user),
	}, nil
}

func (s *authService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, wrap("auth: hash password", err)
	}

	user := &model.User{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		FullAccess:   req.FullAccess,
		Active:       true,
	}
	if req.PrimaryIsoID != nil {
		id, err := uuid.Parse(*req.PrimaryIsoID)
		if err != nil {
			return nil, errors.New("invalid primary_iso_id")
		}
		user.PrimaryIsoID = &id
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, wrap("auth: create user", err)
	}
	resp := userToResponse(user)
	return &resp, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, req dto.PasswordResetRequest) error {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		// Same outcome as success: do not leak which emails exist.
		return nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return wrap("auth: token entropy", err)
	}
	plaintext := hex.EncodeToString(raw)

	ttl := time.Duration(s.cfg.ResetTokenTTLMin) * time.Minute
	if err := s.tokens.Create(ctx, &model.OneTimeToken{
		TokenHash: hashToken(plaintext),
		Purpose:   "password_reset",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(ttl),
	}); err != nil {
		return wrap("auth: store token", err)
	}

	if s.dispatcher != nil {
		mail := worker.MailJob{
			ToEmail: user.Email,
			Subject: "Outbank portal — password reset",
			Body: fmt.Sprintf("Hello %s,\n\nuse this code to reset your password (valid %d minutes, single use):\n\n%s",
				user.Name, s.cfg.ResetTokenTTLMin, plaintext),
		}
		if err := s.dispatcher.EnqueueMail(ctx, mail); err != nil {
			log.Error().Err(err).Msg("auth: enqueue reset mail failed")
		}
	}
	return nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, req dto.PasswordResetConfirm) error {
	tokenHash := hashToken(req.Token)
	token, err := s.tokens.FindByHash(ctx, tokenHash)
	if err != nil {
		return errors.New("invalid or expired token")
	}
	if !token.Usable(time.Now()) {
		return errors.New("invalid or expired token")
	}

	// Consume first: the conditional update is the single-use guarantee even
	// with two concurrent confirmations.
	if err := s.tokens.Consume(ctx, tokenHash); err != nil {
		return errors.New("invalid or expired token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return wrap("auth: hash password", err)
	}
	return wrap("auth: update password", s.users.UpdatePassword(ctx, token.UserID, string(hash)))
}

func (s *authService) generateToken(user *model.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":     user.ID.String(),
		"username":    user.Username,
		"role":        user.Role,
		"full_access": user.FullAccess,
		"exp":         time.Now().Add(ttl).Unix(),
		"iat":         time.Now().Unix(),
	}
	if user.PrimaryIsoID != nil {
		claims["primary_iso_id"] = user.PrimaryIsoID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func hashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func userToResponse(u *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		FullAccess: u.FullAccess,
		Active:     u.Active,
	}
	if u.PrimaryIsoID != nil {
		s := u.PrimaryIsoID.String()
		resp.PrimaryIsoID = &s
	}
	return resp
}
