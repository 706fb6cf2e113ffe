package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/example/taskboard/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	config := JWTConfig{
		SecretKey:            "test-secret-key",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
		Issuer:               "test-issuer",
	}
	// MinCost keeps the test suite fast.
	hasher := &PasswordHasher{cost: bcrypt.MinCost}
	return NewAuthService(NewUserRepository(db), hasher, NewJWTManager(config))
}

func TestRegister(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterProfile{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID == "" {
		t.Error("Register() returned empty ID")
	}
	if user.Email != "dana@example.com" {
		t.Errorf("Email = %q", user.Email)
	}
	if user.PasswordHash == "password123" || user.PasswordHash == "" {
		t.Error("password stored without hashing")
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		profile RegisterProfile
		wantErr error
	}{
		{name: "bad email", profile: RegisterProfile{Email: "not-an-email", Password: "password123"}, wantErr: ErrInvalidEmail},
		{name: "short password", profile: RegisterProfile{Email: "a@example.com", Password: "short"}, wantErr: ErrWeakPassword},
		{name: "long password", profile: RegisterProfile{Email: "a@example.com", Password: string(make([]byte, 73))}, wantErr: ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			_, err := svc.Register(context.Background(), tt.profile)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterProfile{Email: "Dana@Example.com", Password: "password123"}); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, err := svc.Register(ctx, RegisterProfile{Email: "dana@example.com", Password: "password456"})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("second Register() error = %v, want ErrUserExists", err)
	}
}

func TestRegisterDefaultsNameToEmail(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register(context.Background(), RegisterProfile{Email: "anon@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Name != "anon@example.com" {
		t.Errorf("Name = %q, want email fallback", user.Name)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterProfile{Email: "dana@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, tokens, err := svc.Login(ctx, "dana@example.com", "password123", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("Login() user ID = %q, want %q", user.ID, registered.ID)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("Login() returned empty tokens")
	}
	if tokens.TokenType != "Bearer" {
		t.Errorf("TokenType = %q", tokens.TokenType)
	}

	// Email matching is case-insensitive.
	if _, _, err := svc.Login(ctx, "DANA@EXAMPLE.COM", "password123", ""); err != nil {
		t.Errorf("Login() with uppercased email error = %v", err)
	}
}

func TestLoginUniformError(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterProfile{Email: "dana@example.com", Password: "password123"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Unknown email and wrong password produce the identical error, so a
	// caller cannot probe which accounts exist.
	_, _, unknownErr := svc.Login(ctx, "nobody@example.com", "password123", "")
	_, _, wrongErr := svc.Login(ctx, "dana@example.com", "wrong-password", "")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("errors differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestRefreshTokens(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterProfile{Email: "dana@example.com", Password: "password123"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, tokens, err := svc.Login(ctx, "dana@example.com", "password123", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	fresh, err := svc.RefreshTokens(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens() error = %v", err)
	}
	if fresh.AccessToken == "" || fresh.RefreshToken == "" {
		t.Error("RefreshTokens() returned empty tokens")
	}

	// An access token is not a refresh token.
	if _, err := svc.RefreshTokens(ctx, tokens.AccessToken); err == nil {
		t.Error("RefreshTokens() accepted an access token")
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterProfile{Name: "Dana", Email: "dana@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	newName := "Dana Q."
	bio := "Physics undergrad"
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfilePatch{Name: &newName, Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Name != "Dana Q." || updated.Bio != "Physics undergrad" {
		t.Errorf("updated = name %q bio %q", updated.Name, updated.Bio)
	}
	// Untouched fields survive.
	if updated.Email != "dana@example.com" {
		t.Errorf("Email changed to %q", updated.Email)
	}

	empty := "   "
	if _, err := svc.UpdateProfile(ctx, user.ID, ProfilePatch{Name: &empty}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("UpdateProfile() blank name error = %v, want ErrEmptyName", err)
	}
}

func TestUpdateProfileClearsField(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterProfile{Name: "Dana", Email: "dana@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	bio := "Physics undergrad"
	if _, err := svc.UpdateProfile(ctx, user.ID, ProfilePatch{Bio: &bio}); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	// Clearing with an empty string must reach the database, not just the
	// returned struct.
	cleared := ""
	if _, err := svc.UpdateProfile(ctx, user.ID, ProfilePatch{Bio: &cleared}); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	stored, err := svc.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if stored.Bio != "" {
		t.Errorf("stored Bio = %q, want empty", stored.Bio)
	}
	if stored.Name != "Dana" {
		t.Errorf("stored Name = %q, want Dana", stored.Name)
	}
}

func TestRepositoryDuplicateEmail(t *testing.T) {
	// Two writers racing past the EmailExists pre-check: the unique index
	// plus error translation still yields ErrUserExists.
	svc := newTestService(t)
	now := time.Now()

	first := &domain.User{ID: "u1", Name: "a", Email: "dup@example.com", PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
	if err := svc.repo.Create(first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second := &domain.User{ID: "u2", Name: "b", Email: "dup@example.com", PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
	if err := svc.repo.Create(second); !errors.Is(err, ErrUserExists) {
		t.Errorf("Create() duplicate error = %v, want ErrUserExists", err)
	}
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc := newTestService(t)

	name := "ghost"
	_, err := svc.UpdateProfile(context.Background(), "missing-id", ProfilePatch{Name: &name})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdateProfile() error = %v, want ErrUserNotFound", err)
	}
}
