// Package config loads the application configuration once at startup. The
// resulting Config is immutable and passed explicitly into each component.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable overrides for the YAML file settings. The encryption
// key in particular is usually provided through the environment instead of
// being written to disk.
const (
	EnvDirectoryServer = "PHASETRACK_AD_SERVER"
	EnvDirectoryDomain = "PHASETRACK_AD_DOMAIN"
	EnvAllowedUsers    = "PHASETRACK_ALLOWED_USERS"
	EnvAllowedGroups   = "PHASETRACK_ALLOWED_GROUPS"
	EnvEncryptionKey   = "PHASETRACK_ENCRYPTION_KEY"
)

// Config is the application configuration.
type Config struct {
	Directory     DirectoryConfig
	Catalog       CatalogConfig
	EncryptionKey []byte
}

// DirectoryConfig holds the directory service settings.
type DirectoryConfig struct {
	// ServerURL is the directory server address (e.g. ldap://dc01:389).
	ServerURL string
	// Domain is the directory domain (e.g. corp.example.com).
	Domain string
	// AllowedUsers are usernames allowed regardless of group membership.
	AllowedUsers []string
	// AllowedGroups are group identifiers allowed to use the application.
	AllowedGroups []string
}

// CatalogConfig holds the order catalog query settings.
type CatalogConfig struct {
	CompanyCode string
	StatusCodes []string
}

// Load reads the configuration file, applies environment overrides, validates
// the result and returns an immutable Config. A missing file is not an error
// as long as the required settings arrive through the environment.
func Load(path string) (*Config, error) {
	var raw rawConfig

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	case os.IsNotExist(err):
		// Environment only.
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	raw.applyEnv()

	if err := raw.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return raw.toModel()
}

// rawConfig represents the YAML structure of the configuration file.
type rawConfig struct {
	Directory struct {
		ServerURL     string   `yaml:"server_url"`
		Domain        string   `yaml:"domain"`
		AllowedUsers  []string `yaml:"allowed_users"`
		AllowedGroups []string `yaml:"allowed_groups"`
	} `yaml:"directory"`
	Catalog struct {
		CompanyCode string   `yaml:"company_code"`
		StatusCodes []string `yaml:"status_codes"`
	} `yaml:"catalog"`
	EncryptionKey string `yaml:"encryption_key"`
}

func (c *rawConfig) applyEnv() {
	if v := os.Getenv(EnvDirectoryServer); v != "" {
		c.Directory.ServerURL = v
	}
	if v := os.Getenv(EnvDirectoryDomain); v != "" {
		c.Directory.Domain = v
	}
	if v := os.Getenv(EnvAllowedUsers); v != "" {
		c.Directory.AllowedUsers = splitList(v)
	}
	if v := os.Getenv(EnvAllowedGroups); v != "" {
		c.Directory.AllowedGroups = splitList(v)
	}
	if v := os.Getenv(EnvEncryptionKey); v != "" {
		c.EncryptionKey = v
	}
}

func (c *rawConfig) validate() error {
	if c.Directory.ServerURL == "" {
		return fmt.Errorf("directory server url is required")
	}
	if c.Directory.Domain == "" {
		return fmt.Errorf("directory domain is required")
	}
	if c.EncryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	return nil
}

func (c *rawConfig) toModel() (*Config, error) {
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: encryption key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid configuration: encryption key must be 32 bytes, got %d", len(key))
	}

	cfg := &Config{
		Directory: DirectoryConfig{
			ServerURL:     c.Directory.ServerURL,
			Domain:        c.Directory.Domain,
			AllowedUsers:  c.Directory.AllowedUsers,
			AllowedGroups: c.Directory.AllowedGroups,
		},
		Catalog: CatalogConfig{
			CompanyCode: c.Catalog.CompanyCode,
			StatusCodes: c.Catalog.StatusCodes,
		},
		EncryptionKey: key,
	}

	// Query defaults used by the plant floor installation.
	if cfg.Catalog.CompanyCode == "" {
		cfg.Catalog.CompanyCode = "01"
	}
	if len(cfg.Catalog.StatusCodes) == 0 {
		cfg.Catalog.StatusCodes = []string{"EF", "PE", "EE"}
	}

	return cfg, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
