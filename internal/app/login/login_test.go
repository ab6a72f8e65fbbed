package login_test

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/siiapp/phasetrack/internal/app/login"
	"github.com/siiapp/phasetrack/internal/audit"
	"github.com/siiapp/phasetrack/internal/directory"
	"github.com/siiapp/phasetrack/internal/directory/directorymock"
	"github.com/siiapp/phasetrack/internal/model"
	"github.com/siiapp/phasetrack/internal/vault"
)

// memorySlot keeps the sealed blob in memory.
type memorySlot struct {
	blob []byte
}

func (s *memorySlot) Save(blob []byte) error {
	s.blob = blob
	return nil
}

func (s *memorySlot) Load() ([]byte, error) {
	if s.blob == nil {
		return nil, model.ErrNotFound
	}
	return s.blob, nil
}

// memoryTrail records audit events in memory.
type memoryTrail struct {
	events []audit.Event
}

func (t *memoryTrail) Record(ev audit.Event) error {
	t.events = append(t.events, ev)
	return nil
}

func newTestVault(t *testing.T) *vault.Vault {
	t.Helper()

	key := make([]byte, vault.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	v, err := vault.New(key)
	require.NoError(t, err)
	return v
}

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		cfg    func(t *testing.T) login.ServiceConfig
		expErr string
	}{
		"Missing authenticator returns error": {
			cfg: func(t *testing.T) login.ServiceConfig {
				return login.ServiceConfig{Vault: newTestVault(t), Slot: &memorySlot{}}
			},
			expErr: "authenticator is required",
		},
		"Missing vault returns error": {
			cfg: func(t *testing.T) login.ServiceConfig {
				return login.ServiceConfig{Authenticator: &directorymock.MockAuthenticator{}, Slot: &memorySlot{}}
			},
			expErr: "vault is required",
		},
		"Missing slot returns error": {
			cfg: func(t *testing.T) login.ServiceConfig {
				return login.ServiceConfig{Authenticator: &directorymock.MockAuthenticator{}, Vault: newTestVault(t)}
			},
			expErr: "slot is required",
		},
		"Trail is optional": {
			cfg: func(t *testing.T) login.ServiceConfig {
				return login.ServiceConfig{
					Authenticator: &directorymock.MockAuthenticator{},
					Vault:         newTestVault(t),
					Slot:          &memorySlot{},
				}
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := login.NewService(test.cfg(t))
			if test.expErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), test.expErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestServiceLogin(t *testing.T) {
	tests := map[string]struct {
		req        login.Request
		result     directory.Result
		expErr     error
		expAllowed bool
		expCause   string
		expSaved   bool
	}{
		"An allowed user logs in and the decision is audited": {
			req:        login.Request{Username: "jdoe", Password: "s3cret"},
			result:     directory.Result{Allowed: true, Reason: "group match"},
			expAllowed: true,
			expCause:   "group match",
		},
		"A denied user gets a single opaque error": {
			req:        login.Request{Username: "jdoe", Password: "wrong"},
			result:     directory.Result{Allowed: false, Reason: "bind failed"},
			expErr:     model.ErrDenied,
			expAllowed: false,
			expCause:   "bind failed",
		},
		"Remember persists the sealed pair on success": {
			req:        login.Request{Username: "jdoe", Password: "s3cret", Remember: true},
			result:     directory.Result{Allowed: true, Reason: "group match"},
			expAllowed: true,
			expCause:   "group match",
			expSaved:   true,
		},
		"Remember is ignored on denial": {
			req:        login.Request{Username: "jdoe", Password: "wrong", Remember: true},
			result:     directory.Result{Allowed: false, Reason: "bind failed"},
			expErr:     model.ErrDenied,
			expAllowed: false,
			expCause:   "bind failed",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			auth := &directorymock.MockAuthenticator{}
			auth.On("Authenticate", mock.Anything, test.req.Username, test.req.Password).
				Return(test.result)

			v := newTestVault(t)
			slot := &memorySlot{}
			trail := &memoryTrail{}

			svc, err := login.NewService(login.ServiceConfig{
				Authenticator: auth,
				Vault:         v,
				Slot:          slot,
				Trail:         trail,
			})
			require.NoError(t, err)

			err = svc.Login(context.Background(), test.req)

			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
			} else {
				require.NoError(t, err)
			}

			// Every attempt leaves exactly one audit event.
			require.Len(t, trail.events, 1)
			ev := trail.events[0]
			assert.Equal(t, "auth_decision", ev.Kind)
			assert.Equal(t, test.req.Username, ev.Username)
			require.NotNil(t, ev.Allowed)
			assert.Equal(t, test.expAllowed, *ev.Allowed)
			assert.Equal(t, test.expCause, ev.Cause)

			if test.expSaved {
				require.NotNil(t, slot.blob)
				creds, err := v.DecryptPair(slot.blob)
				require.NoError(t, err)
				assert.Equal(t, test.req.Username, creds.Username)
				assert.Equal(t, test.req.Password, creds.Password)
			} else {
				assert.Nil(t, slot.blob)
			}

			auth.AssertExpectations(t)
		})
	}
}

func TestServiceSavedCredentials(t *testing.T) {
	t.Run("Empty slot means no saved credentials", func(t *testing.T) {
		svc, err := login.NewService(login.ServiceConfig{
			Authenticator: &directorymock.MockAuthenticator{},
			Vault:         newTestVault(t),
			Slot:          &memorySlot{},
		})
		require.NoError(t, err)

		creds, err := svc.SavedCredentials(context.Background())
		require.NoError(t, err)
		assert.Nil(t, creds)
	})

	t.Run("A saved pair round trips", func(t *testing.T) {
		v := newTestVault(t)
		slot := &memorySlot{}
		blob, err := v.EncryptPair(model.Credentials{Username: "jdoe", Password: "s3cret"})
		require.NoError(t, err)
		require.NoError(t, slot.Save(blob))

		svc, err := login.NewService(login.ServiceConfig{
			Authenticator: &directorymock.MockAuthenticator{},
			Vault:         v,
			Slot:          slot,
		})
		require.NoError(t, err)

		creds, err := svc.SavedCredentials(context.Background())
		require.NoError(t, err)
		require.NotNil(t, creds)
		assert.Equal(t, "jdoe", creds.Username)
		assert.Equal(t, "s3cret", creds.Password)
	})

	t.Run("A blob sealed with another key means no saved credentials", func(t *testing.T) {
		otherVault := newTestVault(t)
		blob, err := otherVault.EncryptPair(model.Credentials{Username: "jdoe", Password: "s3cret"})
		require.NoError(t, err)

		slot := &memorySlot{}
		require.NoError(t, slot.Save(blob))

		svc, err := login.NewService(login.ServiceConfig{
			Authenticator: &directorymock.MockAuthenticator{},
			Vault:         newTestVault(t),
			Slot:          slot,
		})
		require.NoError(t, err)

		creds, err := svc.SavedCredentials(context.Background())
		require.NoError(t, err)
		assert.Nil(t, creds)
	})
}
