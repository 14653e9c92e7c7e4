package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/displayhub/internal/infrastructure/database"
	"github.com/nerrad567/displayhub/internal/infrastructure/logging"
)

// Service implements registration, login, token refresh and logout.
//
// Every store call runs under its own deadline (QueryTimeout) so a stalled
// database turns into an error rather than a hung request.
type Service struct {
	users        UserRepository
	sessions     SessionRepository
	hasher       *Hasher
	tokens       *TokenIssuer
	queryTimeout time.Duration
	logger       *logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// ServiceDeps holds the collaborators for NewService.
type ServiceDeps struct {
	Users        UserRepository
	Sessions     SessionRepository
	Hasher       *Hasher
	Tokens       *TokenIssuer
	QueryTimeout time.Duration
	Logger       *logging.Logger
}

// NewService creates the auth service.
func NewService(deps ServiceDeps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = NewHasher(DefaultPasswordParams)
	}
	return &Service{
		users:        deps.Users,
		sessions:     deps.Sessions,
		hasher:       hasher,
		tokens:       deps.Tokens,
		queryTimeout: deps.QueryTimeout,
		logger:       logger.With("component", "auth"),
	}
}

// Register creates an account for email with the given password.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrCredentialsRequired)
	}
	if !IsValidEmail(email) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrInvalidEmail)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrPasswordTooShort)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{Email: email, PasswordHash: hash}

	ctx, cancel := database.WithQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and opens a new session.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrCredentialsRequired)
	}

	user, err := s.lookupUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		// Spend the same hashing time as a real check.
		s.hasher.Verify(password, s.dummy()) //nolint:errcheck // timing equaliser only
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password for %s: %w", user.ID, err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}

	access, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refresh, err := GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	session := &Session{UserID: user.ID, RefreshToken: refresh}

	storeCtx, cancel := database.WithQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.sessions.Create(storeCtx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	s.logger.Debug("session opened", "user_id", user.ID, "session_id", session.ID)

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		SessionID:    session.ID,
		UserID:       user.ID,
	}, nil
}

// Refresh issues a new access token for an active session.
// The refresh token itself is not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, Identity, error) {
	if refreshToken == "" {
		return "", Identity{}, fmt.Errorf("%w: %w", ErrInvalidInput, ErrRefreshTokenRequired)
	}

	storeCtx, cancel := database.WithQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	session, err := s.sessions.GetByToken(storeCtx, refreshToken, true)
	if errors.Is(err, ErrSessionNotFound) {
		return "", Identity{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return "", Identity{}, fmt.Errorf("looking up session: %w", err)
	}

	user, err := s.users.GetByID(storeCtx, session.UserID)
	if errors.Is(err, ErrUserNotFound) {
		s.logger.Warn("session references missing user", "session_id", session.ID)
		return "", Identity{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return "", Identity{}, fmt.Errorf("looking up session user: %w", err)
	}

	access, _, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", Identity{}, err
	}
	return access, Identity{UserID: user.ID, Email: user.Email}, nil
}

// Logout revokes the session holding refreshToken.
// Revoking an unknown or already revoked token returns ErrSessionNotFound.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrRefreshTokenRequired)
	}

	ctx, cancel := database.WithQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.sessions.Revoke(ctx, refreshToken)
}

// Me returns the account behind userID.
func (s *Service) Me(ctx context.Context, userID string) (*User, error) {
	ctx, cancel := database.WithQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.users.GetByID(ctx, userID)
}

// Authenticate verifies an access token and returns the caller identity.
// It never touches the store.
func (s *Service) Authenticate(token string) (Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

func (s *Service) lookupUserByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := database.WithQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return user, err
}

// rehash upgrades a stored hash after a successful login. Failures are logged only.
func (s *Service) rehash(ctx context.Context, userID, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn("password rehash failed", "user_id", userID, "error", err)
		return
	}

	ctx, cancel := database.WithQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		s.logger.Warn("password rehash failed", "user_id", userID, "error", err)
		return
	}
	s.logger.Info("password hash upgraded", "user_id", userID)
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("displayhub-timing-equaliser") //nolint:errcheck // fallback is an empty hash
	})
	return s.dummyHash
}
