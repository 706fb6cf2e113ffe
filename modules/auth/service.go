package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	domain "github.com/example/taskboard/domain/user"
	"github.com/example/taskboard/modules/kvstore"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned when login credentials are invalid.
	// The same error covers an unknown email and a wrong password so the
	// response does not leak which field was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidEmail is returned when the email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned when the password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrPasswordTooLong is returned when the password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
	// ErrEmptyName is returned when a profile patch blanks the display name.
	ErrEmptyName = errors.New("name cannot be empty")
)

// RegisterProfile carries the attributes of a new account.
type RegisterProfile struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
}

// ProfilePatch carries optional profile mutations. Identifier, email, and
// credential are deliberately absent: profile updates cannot touch them.
type ProfilePatch struct {
	Name       *string
	Role       *string
	Department *string
	Bio        *string
	AvatarURL  *string
	Phone      *string
}

// TokenPair is a session: a short-lived access token plus a refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	TokenType    string
}

// AuthService handles authentication business logic.
type AuthService struct {
	repo     *UserRepository
	hasher   *PasswordHasher
	jwt      *JWTManager
	remember *kvstore.Store
}

// NewAuthService creates a new AuthService. The remember store is optional;
// without it remember-me requests are silently skipped.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, jwt *JWTManager) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
	}
}

// SetRememberStore wires the key-value store backing remember-me records.
func (s *AuthService) SetRememberStore(store *kvstore.Store) {
	s.remember = store
}

// canonicalEmail trims and lowercases an email so storage and uniqueness
// checks are case-insensitive.
func canonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account.
func (s *AuthService) Register(_ context.Context, profile RegisterProfile) (*domain.User, error) {
	email := canonicalEmail(profile.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(profile.Password) < 8 {
		return nil, ErrWeakPassword
	}
	if len(profile.Password) > 72 {
		return nil, ErrPasswordTooLong
	}

	exists, err := s.repo.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := s.hasher.Hash(profile.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = email
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         profile.Role,
		Department:   profile.Department,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and returns a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string, rememberDevice string) (*domain.User, *TokenPair, error) {
	user, err := s.repo.FindByEmail(canonicalEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	if rememberDevice != "" && s.remember != nil {
		// Remember-me is best effort; a store failure never blocks login.
		_ = s.remember.Set(ctx, rememberDevice, map[string]string{"email": user.Email})
	}

	tokens, err := s.generateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// RememberedEmail returns the email stored for a device, if any.
func (s *AuthService) RememberedEmail(ctx context.Context, device string) (string, error) {
	if s.remember == nil || device == "" {
		return "", nil
	}
	var record map[string]string
	found, err := s.remember.Get(ctx, device, &record)
	if err != nil || !found {
		return "", err
	}
	return record["email"], nil
}

// ForgetDevice removes a device's remember-me record.
func (s *AuthService) ForgetDevice(ctx context.Context, device string) error {
	if s.remember == nil || device == "" {
		return nil
	}
	return s.remember.Delete(ctx, device)
}

// RefreshTokens issues a new token pair from a valid refresh token.
func (s *AuthService) RefreshTokens(_ context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	user, err := s.repo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return s.generateTokenPair(user.ID, user.Email)
}

// ValidateToken checks an access token and returns the acting identity.
// Expired or malformed tokens are indistinguishable from "no session".
func (s *AuthService) ValidateToken(_ context.Context, token string) (*JWTClaims, error) {
	return s.jwt.ValidateAccessToken(token)
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(_ context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(userID)
}

// UpdateProfile applies a profile patch. Only display attributes change;
// identifier, email, and credential are untouched by design of the patch.
func (s *AuthService) UpdateProfile(_ context.Context, userID string, patch ProfilePatch) (*domain.User, error) {
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, ErrEmptyName
		}
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.Department != nil {
		user.Department = *patch.Department
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.AvatarURL != nil {
		user.AvatarURL = *patch.AvatarURL
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) generateTokenPair(userID, email string) (*TokenPair, error) {
	accessToken, err := s.jwt.GenerateAccessToken(userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwt.GenerateRefreshToken(userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwt.config.AccessTokenDuration.Seconds()),
		TokenType:    "Bearer",
	}, nil
}
