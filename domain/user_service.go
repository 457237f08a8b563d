package domain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenBytes = 24

// AuthService registers users, verifies credentials and resolves session tokens.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	pub      Publisher
	cost     int
	now      func() time.Time
	newToken func() (string, error)

	dummyOnce sync.Once
	dummyHash []byte
}

// AuthOption configures an AuthService.
type AuthOption func(*AuthService)

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// WithAuthPublisher sets the activity publisher.
func WithAuthPublisher(p Publisher) AuthOption {
	return func(s *AuthService) {
		if p != nil {
			s.pub = p
		}
	}
}

// WithTokenGenerator overrides the random token source.
func WithTokenGenerator(fn func() (string, error)) AuthOption {
	return func(s *AuthService) { s.newToken = fn }
}

func NewAuthService(users UserStore, sessions SessionStore, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:    users,
		sessions: sessions,
		pub:      noopPublisher{},
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
		newToken: randomToken,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register creates a user and returns its id.
//
// The username is looked up first and then claimed by the store. The lookup
// alone is racy; the claim is what rejects a concurrent duplicate.
func (s *AuthService) Register(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", errCredentialsRequired
	}
	existing, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", errUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	id, err := s.users.CreateUser(ctx, User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return "", errUsernameTaken
		}
		return "", err
	}
	s.pub.Publish(Event{ID: uuid.NewString(), Type: UserRegistered, UserID: id, Time: s.now().UTC()})
	return id, nil
}

// Login verifies the password and opens a session. Unknown users and wrong
// passwords fail with the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	if username == "" || password == "" {
		return Session{}, errCredentialsRequired
	}
	u, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		return Session{}, err
	}
	if u == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return Session{}, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, errInvalidCredentials
	}
	token, err := s.newToken()
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.Put(ctx, token, u.ID); err != nil {
		return Session{}, err
	}
	return Session{Token: token, UserID: u.ID, Username: u.Username}, nil
}

// Authorize resolves a bearer token to its user id.
func (s *AuthService) Authorize(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errUnauthorized
	}
	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", errUnauthorized
		}
		return "", err
	}
	return userID, nil
}

// Logout forgets the session. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, strings.TrimSpace(token))
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("taskpad-timing-filler"), s.cost)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func randomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
