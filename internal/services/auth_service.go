package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/jam-build-learnhub/internal/config"
	"github.com/localnerve/jam-build-learnhub/internal/utils"
)

// ErrEmailInUse is returned when sign-up hits an existing account
var ErrEmailInUse = errors.New("user_already_exists")

// ErrInvalidCredentials is returned when login fails
var ErrInvalidCredentials = errors.New("invalid credentials")

// Accounts creates identities and checks credentials
type Accounts interface {
	SignUp(email, password string) (string, error)
	Login(email, password string) (string, error)
}

// SessionValidator resolves an Authorizer session cookie to a user id
type SessionValidator interface {
	ValidateSession(cookie string) (string, error)
}

// AuthorizerService implements Accounts and SessionValidator against an Authorizer instance.
// The client is created on first use so the service can start before Authorizer is up.
type AuthorizerService struct {
	cfg    *config.Config
	mu     sync.Mutex
	client *authorizer.AuthorizerClient
}

// NewAuthorizerService creates an AuthorizerService
func NewAuthorizerService(cfg *config.Config) *AuthorizerService {
	return &AuthorizerService{cfg: cfg}
}

// IsInitialized returns true if the Authorizer client is initialized
func (s *AuthorizerService) IsInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

func (s *AuthorizerService) getClient() (*authorizer.AuthorizerClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	// Ping the Authorizer service first
	if err := utils.PingAuthorizer(s.cfg.AuthzURL); err != nil {
		return nil, fmt.Errorf("authorizer ping failed: %w", err)
	}

	log.Printf("Initializing Authorizer: authorizerURL=%s, clientID=%s", s.cfg.AuthzURL, s.cfg.AuthzClientID)

	client, err := authorizer.NewAuthorizerClient(s.cfg.AuthzClientID, s.cfg.AuthzURL, "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer client: %w", err)
	}
	s.client = client
	return client, nil
}

// SignUp registers a new identity and returns its user id
func (s *AuthorizerService) SignUp(email, password string) (string, error) {
	client, err := s.getClient()
	if err != nil {
		return "", err
	}

	res, err := client.SignUp(&authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already") {
			return "", ErrEmailInUse
		}
		return "", fmt.Errorf("signup failed: %w", err)
	}
	if res == nil || res.User == nil {
		return "", fmt.Errorf("signup failed: no user returned")
	}

	return res.User.ID, nil
}

// Login checks credentials and returns the user id
func (s *AuthorizerService) Login(email, password string) (string, error) {
	client, err := s.getClient()
	if err != nil {
		return "", err
	}

	res, err := client.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
	})
	if err != nil {
		log.Printf("Login failed for %s: %v", email, err)
		return "", ErrInvalidCredentials
	}
	if res == nil || res.User == nil {
		return "", ErrInvalidCredentials
	}

	return res.User.ID, nil
}

// ValidateSession validates a session cookie and returns the user id
func (s *AuthorizerService) ValidateSession(cookie string) (string, error) {
	client, err := s.getClient()
	if err != nil {
		return "", err
	}

	res, err := client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
	})
	if err != nil {
		return "", fmt.Errorf("session validation failed: %w", err)
	}

	// Check if session is valid
	if res == nil || !res.IsValid || res.User == nil {
		return "", fmt.Errorf("session is not valid")
	}

	return res.User.ID, nil
}
