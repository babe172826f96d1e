package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/config"
	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/Bdsolutionconsulting/linkhood/internal/notify"
	"github.com/Bdsolutionconsulting/linkhood/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 6

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidEmail        = errors.New("a valid email is required")
	ErrWeakPassword        = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailNotConfirmed   = errors.New("email not confirmed")
	ErrInvalidToken        = errors.New("invalid or expired refresh token")
	ErrInvalidConfirmation = errors.New("invalid or expired confirmation token")
	ErrPasswordRequired    = errors.New("password is required")
	ErrUserNotFound        = errors.New("user not found")
)

// Mailer is the part of notify.Dispatcher the auth flow needs.
type Mailer interface {
	Send(ctx context.Context, msg notify.Message) error
}

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer Mailer
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, mailer Mailer) *AuthService {
	return &AuthService{
		db:     db,
		cfg:    cfg,
		mailer: mailer,
		now:    time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the account. When confirmation is required the user
// gets a link by email and no tokens; otherwise tokens are issued at once.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	name := strings.TrimSpace(req.Name)
	if name != "" {
		if err := validation.ValidateName(name); err != nil {
			return nil, err
		}
	} else {
		name = models.DefaultNameFromEmail(email)
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:    email,
		Password: string(hash),
		Name:     name,
		Role:     models.RoleUser,
	}
	if !s.cfg.RequireEmailConfirmation {
		now := s.now()
		user.EmailConfirmedAt = &now
	}

	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if !s.cfg.RequireEmailConfirmation {
		auth, err := s.generateTokenPair(ctx, &user)
		if err != nil {
			return nil, err
		}
		return &dto.RegisterResponse{
			Message: "Inscription réussie.",
			User:    dto.NewUserResponse(&user),
			Auth:    auth,
		}, nil
	}

	if err := s.sendConfirmation(ctx, &user); err != nil {
		slog.Error("confirmation email failed", "action", "signup_confirmation", "user_id", user.ID.String(), "error", err)
	}

	return &dto.RegisterResponse{
		Message: "Inscription réussie. Vérifiez votre e-mail pour confirmer votre compte.",
		User:    dto.NewUserResponse(&user),
	}, nil
}

func (s *AuthService) sendConfirmation(ctx context.Context, user *models.User) error {
	raw, err := randomToken()
	if err != nil {
		return err
	}

	record := models.EmailConfirmation{
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: s.now().Add(s.cfg.ConfirmationExpiry),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to store confirmation: %w", err)
	}

	if s.mailer == nil {
		return notify.ErrNotConfigured
	}
	return s.mailer.Send(ctx, notify.Message{
		Type:      notify.KindSignupConfirmation,
		UserEmail: user.Email,
		Title:     user.Name,
		Link:      s.cfg.PublicAppURL + "/confirm?token=" + url.QueryEscape(raw),
	})
}

// ResendConfirmation issues a fresh link for an unconfirmed account. It is
// silent about unknown addresses.
func (s *AuthService) ResendConfirmation(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil
	}
	if user.EmailConfirmedAt != nil {
		return nil
	}
	return s.sendConfirmation(ctx, &user)
}

// Confirm consumes a confirmation token and signs the user in.
func (s *AuthService) Confirm(ctx context.Context, req *dto.ConfirmRequest) (*dto.AuthResponse, error) {
	if strings.TrimSpace(req.Token) == "" {
		return nil, ErrInvalidConfirmation
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.EmailConfirmation
		if err := tx.Where("token_hash = ? AND consumed_at IS NULL", hashToken(req.Token)).First(&record).Error; err != nil {
			return ErrInvalidConfirmation
		}
		now := s.now()
		if now.After(record.ExpiresAt) {
			return ErrInvalidConfirmation
		}

		if err := tx.Model(&record).Update("consumed_at", now).Error; err != nil {
			return err
		}
		if err := tx.First(&user, "id = ?", record.UserID).Error; err != nil {
			return ErrInvalidConfirmation
		}
		if user.EmailConfirmedAt == nil {
			user.EmailConfirmedAt = &now
			if err := tx.Model(&user).Update("email_confirmed_at", now).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if s.cfg.RequireEmailConfirmation && user.EmailConfirmedAt == nil {
		return nil, ErrEmailNotConfirmed
	}

	return s.generateTokenPair(ctx, &user)
}

// Refresh rotates a refresh token. A token can be exchanged once.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	db := s.db.WithContext(ctx)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ? AND revoked = ?", hashToken(req.RefreshToken), false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	result := db.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", stored.ID, false).
		Update("revoked", true)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", result.Error)
	}
	if result.RowsAffected == 0 || s.now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(req.RefreshToken)).
		Update("revoked", true).Error
}

// DeleteAccount soft-deletes the user after checking the password. The
// address is scrambled so it can register again; authored content stays
// and is shown as anonymous.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	if password == "" {
		return ErrPasswordRequired
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.EmailConfirmation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserSettings{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"email":     "deleted-" + userID.String() + "@linkhood.invalid",
			"name":      "",
			"phone":     "",
			"photo_url": "",
		}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// Me returns the caller's profile. An authenticated caller without a
// profile row gets one, named after the local part of the email.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID, email string) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Unscoped().First(&user, "id = ?", userID).Error
	if err == nil {
		if user.DeletedAt.Valid {
			return nil, ErrUserNotFound
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrUserNotFound
	}

	user = models.User{
		ID:    userID,
		Email: email,
		Name:  models.DefaultNameFromEmail(email),
		Role:  models.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	slog.Info("profile created on first access", "user_id", userID.String())
	return &user, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         dto.NewUserResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawToken, err := randomToken()
	if err != nil {
		return "", err
	}

	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: s.now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func randomToken() (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(rawBytes), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
