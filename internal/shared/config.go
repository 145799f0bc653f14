package shared

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/mentions"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that carry the GitHub credentials. They are read at
// startup, never from the config file, so tokens stay out of dotfiles.
const (
	EnvToken = "GITHUB_TOKEN"
	EnvOwner = "GITHUB_OWNER"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	GitHub   GitHubConfig   `toml:"github"`
	Files    FilesConfig    `toml:"files"`
	Backup   BackupConfig   `toml:"backup"`
	Pacing   PacingConfig   `toml:"pacing"`
	Database DatabaseConfig `toml:"database"`
}

// GitHubConfig contains API endpoint settings. Owner is a fallback for the
// GITHUB_OWNER environment variable, useful for GHES or single-org setups.
type GitHubConfig struct {
	APIURL   string `toml:"api_url"`
	Owner    string `toml:"owner"`
	PageSize int    `toml:"page_size"`
}

// FilesConfig points at the two JSON documents driving a run.
type FilesConfig struct {
	Mapping      string `toml:"mapping"`
	Repositories string `toml:"repositories"`
}

// BackupConfig contains the root directories for real and dry-run backups.
type BackupConfig struct {
	Dir     string `toml:"dir"`
	TestDir string `toml:"test_dir"`
}

// PacingConfig contains the intervals fed to the token-bucket pacers that
// space remote calls out.
type PacingConfig struct {
	ReleaseIntervalMS int `toml:"release_interval_ms"`
	RepoIntervalMS    int `toml:"repo_interval_ms"`
}

// DatabaseConfig contains run-ledger database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// Credentials carries the environment-provided GitHub credentials.
type Credentials struct {
	Token string
	Owner string
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvCredentials reads the token and owner from the environment. The
// owner falls back to [github].owner from the config; the token never has a
// file fallback. A missing value is a fatal configuration error for any
// command that talks to the API.
func LoadEnvCredentials(cfg *Config) (Credentials, error) {
	token := strings.TrimSpace(os.Getenv(EnvToken))
	if token == "" {
		return Credentials{}, fmt.Errorf("%w: %s is not set", ErrMissingCredentials, EnvToken)
	}

	owner := strings.TrimSpace(os.Getenv(EnvOwner))
	if owner == "" && cfg != nil {
		owner = strings.TrimSpace(cfg.GitHub.Owner)
	}
	if owner == "" {
		return Credentials{}, fmt.Errorf("%w: %s is not set and [github].owner is empty", ErrMissingCredentials, EnvOwner)
	}

	return Credentials{Token: token, Owner: owner}, nil
}

// LoadUsernameMap reads, schema-validates, and parses the old→new username
// mapping document. Replacement order follows the document's declaration
// order, so parsing goes through [mentions.ParseMapping] rather than a map.
func LoadUsernameMap(path string) (*mentions.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read username mapping: %w", err)
	}

	if err := ValidateMappingDocument(data); err != nil {
		return nil, err
	}

	mapping, err := mentions.ParseMapping(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return mapping, nil
}

// LoadRepositoryList reads and schema-validates the repository whitelist
// document, returning the repository names in declaration order. Entries are
// bare repository names scoped to the run owner at dispatch time; an
// owner/name entry overrides the run owner for that repository.
func LoadRepositoryList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read repository list: %w", err)
	}

	if err := ValidateRepositoryDocument(data); err != nil {
		return nil, err
	}

	var doc struct {
		Repositories []string `json:"repositories"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse repository list: %v", ErrInvalidConfig, err)
	}
	return doc.Repositories, nil
}
