// Package directorymock has mocks for the directory authenticator.
package directorymock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/siiapp/phasetrack/internal/directory"
)

// MockAuthenticator is a mock of directory.Authenticator.
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, username, password string) directory.Result {
	args := m.Called(ctx, username, password)
	return args.Get(0).(directory.Result)
}
