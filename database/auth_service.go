package database

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"college-reclaim/models"
)

const (
	accessTokenTTL  = 1 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
	otpTTL          = 15 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidOTP         = errors.New("invalid or expired code")
)

// AuthService handles accounts, sessions and one-time codes.
type AuthService struct {
	db        *sql.DB
	jwtSecret []byte
}

// NewAuthService creates a new authentication service instance.
func NewAuthService(db *sql.DB, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
	}
}

// Register creates a new user with email/password authentication.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	exists, err := s.userExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     strings.ToLower(req.Email),
		Role:      models.RoleUser,
		Provider:  "email",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, role, provider) VALUES (?, ?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, string(passwordHash), user.Role, user.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// Login authenticates a user with email and password.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	user, passwordHash, err := s.getUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if passwordHash == "" {
		// OAuth-only account, no password set
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// OAuthLogin creates or links a user from a provider-verified profile.
func (s *AuthService) OAuthLogin(ctx context.Context, req models.OAuthLoginRequest) (*models.User, error) {
	user, _, err := s.getUserByEmail(ctx, req.Email)
	if err == nil {
		// Existing account: link the provider if not already set
		_, err = s.db.ExecContext(ctx,
			"UPDATE users SET provider = ?, provider_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND provider_id = ''",
			req.Provider, req.ProviderID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to link provider: %w", err)
		}
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     strings.ToLower(req.Email),
		Role:      models.RoleUser,
		Provider:  req.Provider,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, role, provider, provider_id) VALUES (?, ?, ?, '', ?, ?, ?)",
		user.ID, user.Name, user.Email, user.Role, user.Provider, req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user := &models.User{ID: userID}
	err := s.db.QueryRowContext(ctx,
		"SELECT name, email, role, provider, created_at, updated_at FROM users WHERE id = ?",
		userID).Scan(&user.Name, &user.Email, &user.Role, &user.Provider, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GenerateTokenPair generates both access and refresh tokens.
func (s *AuthService) GenerateTokenPair(ctx context.Context, userID string) (string, string, error) {
	now := time.Now()
	accessExpiry := now.Add(accessTokenTTL)
	refreshExpiry := now.Add(refreshTokenTTL)

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"type":    "access",
		"exp":     accessExpiry.Unix(),
		"iat":     now.Unix(),
	})
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return "", "", err
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"type":    "refresh",
		"exp":     refreshExpiry.Unix(),
		"iat":     now.Unix(),
	})
	refreshTokenString, err := refreshToken.SignedString(s.jwtSecret)
	if err != nil {
		return "", "", err
	}

	if err := s.storeTokens(ctx, userID, accessTokenString, refreshTokenString, accessExpiry, refreshExpiry); err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenString, nil
}

// ValidateToken validates an access token and returns the user's ID and
// current role. The role comes from the users table, not the claims, so role
// changes take effect without reissuing tokens.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (string, string, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return "", "", err
	}

	tokenType, _ := claims["type"].(string)
	if tokenType == "refresh" {
		return "", "", errors.New("cannot use refresh token for authentication")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", "", errors.New("invalid user id in token")
	}

	if err := s.verifyTokenInDB(ctx, userID, tokenString, "access"); err != nil {
		return "", "", err
	}

	var role string
	err = s.db.QueryRowContext(ctx, "SELECT role FROM users WHERE id = ?", userID).Scan(&role)
	if err != nil {
		return "", "", errors.New("user not found")
	}

	return userID, role, nil
}

// ValidateRefreshToken validates a refresh token and returns the user ID.
func (s *AuthService) ValidateRefreshToken(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "refresh" {
		return "", errors.New("not a refresh token")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("invalid user id in token")
	}

	if err := s.verifyTokenInDB(ctx, userID, tokenString, "refresh"); err != nil {
		return "", err
	}

	return userID, nil
}

// InvalidateToken removes a token from the database.
func (s *AuthService) InvalidateToken(ctx context.Context, userID, tokenString string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM auth_tokens WHERE user_id = ? AND token_hash = ?",
		userID, hashToken(tokenString))
	return err
}

// IssueOTP creates a one-time code for the user and returns it in plaintext
// for delivery by email. Only the bcrypt hash is stored.
func (s *AuthService) IssueOTP(ctx context.Context, userID, purpose string) (string, error) {
	code, err := generateOTPCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}

	// Invalidate earlier codes for the same purpose
	_, err = s.db.ExecContext(ctx,
		"UPDATE password_otps SET consumed = TRUE WHERE user_id = ? AND purpose = ? AND consumed = FALSE",
		userID, purpose)
	if err != nil {
		return "", fmt.Errorf("failed to invalidate old codes: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO password_otps (id, user_id, code_hash, purpose, expires_at) VALUES (?, ?, ?, ?, FROM_UNIXTIME(?))",
		uuid.NewString(), userID, string(codeHash), purpose, time.Now().Add(otpTTL).Unix())
	if err != nil {
		return "", fmt.Errorf("failed to insert code: %w", err)
	}

	return code, nil
}

// ResetPassword verifies an unconsumed, unexpired OTP for the user's email,
// consumes it and replaces the password hash.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	user, _, err := s.getUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidOTP
		}
		return err
	}

	var otpID, codeHash string
	err = s.db.QueryRowContext(ctx,
		`SELECT id, code_hash FROM password_otps
		 WHERE user_id = ? AND consumed = FALSE AND expires_at > NOW()
		 ORDER BY created_at DESC LIMIT 1`,
		user.ID).Scan(&otpID, &codeHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrInvalidOTP
		}
		return fmt.Errorf("failed to query code: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(codeHash), []byte(req.Code)); err != nil {
		return ErrInvalidOTP
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE password_otps SET consumed = TRUE WHERE id = ?", otpID); err != nil {
		return fmt.Errorf("failed to consume code: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		string(passwordHash), user.ID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return tx.Commit()
}

// GetUserByEmail retrieves a user by email address.
func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, _, err := s.getUserByEmail(ctx, email)
	return user, err
}

// Helper methods

func (s *AuthService) getUserByEmail(ctx context.Context, email string) (*models.User, string, error) {
	user := &models.User{}
	var passwordHash string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, role, provider, created_at, updated_at FROM users WHERE email = ?",
		strings.ToLower(email)).Scan(&user.ID, &user.Name, &user.Email, &passwordHash,
		&user.Role, &user.Provider, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to query user: %w", err)
	}
	return user, passwordHash, nil
}

func (s *AuthService) userExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", strings.ToLower(email)).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *AuthService) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) storeTokens(ctx context.Context, userID, accessToken, refreshToken string, accessExpiry, refreshExpiry time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// FROM_UNIXTIME keeps expiry comparisons consistent across timezones
	_, err = tx.ExecContext(ctx,
		"INSERT INTO auth_tokens (user_id, token_hash, token_type, expires_at) VALUES (?, ?, 'access', FROM_UNIXTIME(?))",
		userID, hashToken(accessToken), accessExpiry.Unix())
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO auth_tokens (user_id, token_hash, token_type, expires_at) VALUES (?, ?, 'refresh', FROM_UNIXTIME(?))",
		userID, hashToken(refreshToken), refreshExpiry.Unix())
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *AuthService) verifyTokenInDB(ctx context.Context, userID, tokenString, tokenType string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM auth_tokens WHERE user_id = ? AND token_hash = ? AND token_type = ? AND expires_at > NOW())",
		userID, hashToken(tokenString), tokenType).Scan(&exists)
	if err != nil || !exists {
		return errors.New("token not found or expired")
	}
	return nil
}

// Utility functions

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
