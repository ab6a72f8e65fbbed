// Package login implements the access gate: one allow/deny decision combining
// directory authentication, the credential vault and the audit trail.
package login

import (
	"context"
	"errors"
	"fmt"

	"github.com/siiapp/phasetrack/internal/audit"
	"github.com/siiapp/phasetrack/internal/directory"
	"github.com/siiapp/phasetrack/internal/log"
	"github.com/siiapp/phasetrack/internal/model"
)

// Slot persists a single sealed credential blob.
type Slot interface {
	Save(blob []byte) error
	Load() ([]byte, error)
}

// Vault seals and opens credential pairs.
type Vault interface {
	EncryptPair(creds model.Credentials) ([]byte, error)
	DecryptPair(blob []byte) (model.Credentials, error)
}

// ServiceConfig is the configuration for the login service.
type ServiceConfig struct {
	Authenticator directory.Authenticator
	Vault         Vault
	Slot          Slot
	Trail         audit.Trail
	Logger        log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Authenticator == nil {
		return fmt.Errorf("authenticator is required")
	}
	if c.Vault == nil {
		return fmt.Errorf("vault is required")
	}
	if c.Slot == nil {
		return fmt.Errorf("slot is required")
	}
	if c.Trail == nil {
		c.Trail = audit.Noop
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Login"})
	return nil
}

// Service is the access gate.
type Service struct {
	auth   directory.Authenticator
	vault  Vault
	slot   Slot
	trail  audit.Trail
	logger log.Logger
}

// NewService creates a new login service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		auth:   cfg.Authenticator,
		vault:  cfg.Vault,
		slot:   cfg.Slot,
		trail:  cfg.Trail,
		logger: cfg.Logger,
	}, nil
}

// Request are the login inputs.
type Request struct {
	Username string
	Password string
	Remember bool
}

// Login runs one authentication attempt. The returned error is
// model.ErrDenied for every denial, the detailed cause stays in the audit
// trail and logs only.
func (s *Service) Login(ctx context.Context, req Request) error {
	res := s.auth.Authenticate(ctx, req.Username, req.Password)

	allowed := res.Allowed
	ev := audit.Event{
		Kind:     "auth_decision",
		Username: req.Username,
		Allowed:  &allowed,
		Cause:    res.Reason,
	}
	if err := s.trail.Record(ev); err != nil {
		s.logger.Errorf("Could not record audit event: %s", err)
	}

	if !res.Allowed {
		s.logger.Warningf("Access denied for %s", req.Username)
		return fmt.Errorf("invalid credentials or access denied: %w", model.ErrDenied)
	}

	s.logger.Infof("Access allowed for %s", req.Username)

	if req.Remember {
		if err := s.remember(req.Username, req.Password); err != nil {
			// Failing to persist credentials never turns a successful login
			// into a failure.
			s.logger.Errorf("Could not save credentials: %s", err)
		}
	}

	return nil
}

// SavedCredentials restores the remembered credential pair, if any. Both an
// absent slot and an undecryptable blob are reported as no saved credentials.
func (s *Service) SavedCredentials(ctx context.Context) (*model.Credentials, error) {
	blob, err := s.slot.Load()
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not load credential slot: %w", err)
	}

	creds, err := s.vault.DecryptPair(blob)
	if err != nil {
		if errors.Is(err, model.ErrDecrypt) {
			s.logger.Warningf("Could not restore saved credentials: %s", err)
			return nil, nil
		}
		return nil, fmt.Errorf("could not decrypt credentials: %w", err)
	}

	return &creds, nil
}

func (s *Service) remember(username, password string) error {
	blob, err := s.vault.EncryptPair(model.Credentials{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("could not seal credentials: %w", err)
	}
	if err := s.slot.Save(blob); err != nil {
		return fmt.Errorf("could not persist credentials: %w", err)
	}
	return nil
}
