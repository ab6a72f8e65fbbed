// Package directory implements directory backed authentication and
// authorization. Any directory failure results in a denial, never in a hard
// error for the caller.
package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/siiapp/phasetrack/internal/config"
	"github.com/siiapp/phasetrack/internal/log"
)

// Result is the outcome of an authentication attempt. Reason is the detailed
// cause intended for the audit trail only, never for end user display.
type Result struct {
	Allowed bool
	Reason  string
}

// Authenticator decides whether a username/password pair may use the
// application.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) Result
}

// Conn is the minimal directory connection surface used by the authenticator.
// *ldap.Conn satisfies it.
type Conn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// DialFunc opens a connection against the directory server.
type DialFunc func(ctx context.Context) (Conn, error)

// LDAPAuthenticatorConfig is the configuration for the LDAP authenticator.
type LDAPAuthenticatorConfig struct {
	Directory config.DirectoryConfig
	// Dial is optional, by default it dials the configured server URL.
	Dial   DialFunc
	Logger log.Logger
}

func (c *LDAPAuthenticatorConfig) defaults() error {
	if c.Directory.ServerURL == "" {
		return fmt.Errorf("directory server url is required")
	}
	if c.Directory.Domain == "" {
		return fmt.Errorf("directory domain is required")
	}
	if c.Dial == nil {
		serverURL := c.Directory.ServerURL
		c.Dial = func(ctx context.Context) (Conn, error) {
			return ldap.DialURL(serverURL)
		}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "directory.LDAPAuthenticator"})
	return nil
}

// LDAPAuthenticator authenticates users with a bind-as-user against an LDAP
// directory and authorizes them through user and group allow-lists.
type LDAPAuthenticator struct {
	cfg    config.DirectoryConfig
	dial   DialFunc
	logger log.Logger
}

// NewLDAPAuthenticator creates a new LDAP authenticator.
func NewLDAPAuthenticator(cfg LDAPAuthenticatorConfig) (*LDAPAuthenticator, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &LDAPAuthenticator{
		cfg:    cfg.Directory,
		dial:   cfg.Dial,
		logger: cfg.Logger,
	}, nil
}

// Authenticate binds as the user and evaluates the allow-lists. Every failure
// path denies: bad credentials, unreachable server and protocol errors are all
// expected outcomes, not faults.
func (a *LDAPAuthenticator) Authenticate(ctx context.Context, username, password string) Result {
	conn, err := a.dial(ctx)
	if err != nil {
		a.logger.Errorf("Could not connect to directory server: %s", err)
		return Result{Allowed: false, Reason: fmt.Sprintf("directory unreachable: %s", err)}
	}
	defer func() { _ = conn.Close() }()

	bindUser := fmt.Sprintf(`%s\%s`, a.cfg.Domain, username)
	if err := conn.Bind(bindUser, password); err != nil {
		a.logger.Warningf("Directory bind failed for %s: %s", username, err)
		return Result{Allowed: false, Reason: fmt.Sprintf("bind failed: %s", err)}
	}
	a.logger.Debugf("Directory bind successful for %s", username)

	// Users on the allow-list skip the group check.
	if containsFold(a.cfg.AllowedUsers, username) {
		return Result{Allowed: true, Reason: "user on allow-list"}
	}

	groups, err := a.searchGroups(conn, username)
	if err != nil {
		a.logger.Errorf("Directory search failed for %s: %s", username, err)
		return Result{Allowed: false, Reason: fmt.Sprintf("search failed: %s", err)}
	}
	if groups == nil {
		return Result{Allowed: false, Reason: "user not found in directory"}
	}

	if matchesAllowedGroup(groups, a.cfg.AllowedGroups) {
		return Result{Allowed: true, Reason: "member of allowed group"}
	}

	return Result{Allowed: false, Reason: "not a member of any allowed group"}
}

// searchGroups returns the flattened group memberships of a user, or nil when
// the user has no directory entry.
func (a *LDAPAuthenticator) searchGroups(conn Conn, username string) ([]string, error) {
	req := ldap.NewSearchRequest(
		baseDN(a.cfg.Domain),
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, 0, false,
		fmt.Sprintf("(sAMAccountName=%s)", ldap.EscapeFilter(username)),
		[]string{"memberOf"},
		nil,
	)

	res, err := conn.Search(req)
	if err != nil {
		return nil, err
	}
	if len(res.Entries) == 0 {
		return nil, nil
	}

	var groups []string
	for _, entry := range res.Entries {
		groups = append(groups, entry.GetAttributeValues("memberOf")...)
	}
	if groups == nil {
		groups = []string{}
	}

	return groups, nil
}

// baseDN derives the search base from the domain name (corp.example.com
// becomes DC=corp,DC=example,DC=com).
func baseDN(domain string) string {
	return "DC=" + strings.ReplaceAll(domain, ".", ",DC=")
}

// matchesAllowedGroup reports whether any allowed group identifier is a
// substring of any membership value.
func matchesAllowedGroup(memberships, allowedGroups []string) bool {
	for _, allowed := range allowedGroups {
		for _, membership := range memberships {
			if strings.Contains(membership, allowed) {
				return true
			}
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
