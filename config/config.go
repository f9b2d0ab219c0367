// Package config holds the node configuration, read from a YAML file and
// completed with defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/confidential-voting/log"
	"github.com/vocdoni/confidential-voting/voting"
	"go.vocdoni.io/dvote/db"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIPort is the port of the HTTP API when none is configured.
	DefaultAPIPort = 9090
	// DefaultFinalizerInterval is how often the finalizer looks for ended
	// proposals.
	DefaultFinalizerInterval = 10 * time.Second
	// DefaultChainID is the chain id of the decryption request domain.
	DefaultChainID = 1337
)

// Config is the node configuration.
type Config struct {
	// DataDir is the directory of the node database.
	DataDir string `yaml:"datadir"`
	// DBType is the database backend, pebble or the ones supported by dvote
	// metadb.
	DBType string `yaml:"dbType"`
	// Owner is the address written as owner of the role table on first
	// start. It is ignored once a role table exists.
	Owner string `yaml:"owner"`

	Log       LogConfig       `yaml:"log"`
	API       APIConfig       `yaml:"api"`
	Engine    EngineConfig    `yaml:"engine"`
	Finalizer FinalizerConfig `yaml:"finalizer"`
	Limits    voting.Limits   `yaml:"limits"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Output string `yaml:"output"`
}

// APIConfig configures the HTTP API.
type APIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Relayer enables the /fhe endpoints of the reference engine.
	Relayer bool `yaml:"relayer"`
}

// EngineConfig configures the reference encrypted-value engine.
type EngineConfig struct {
	// NetworkKey is the hex key inputs are sealed with, random when empty.
	NetworkKey string `yaml:"networkKey"`
	// VerifierKey is the hex private key of the input verifier, random when
	// empty.
	VerifierKey string `yaml:"verifierKey"`
	// ChainID and VerifyingContract form the domain user decryption requests
	// are signed for.
	ChainID           uint64 `yaml:"chainId"`
	VerifyingContract string `yaml:"verifyingContract"`
}

// FinalizerConfig configures the finalizer service.
type FinalizerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Default returns the configuration used for the fields a file leaves out.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		DataDir: filepath.Join(home, ".tallyd"),
		DBType:  db.TypePebble,
		Log: LogConfig{
			Level:  log.LogLevelInfo,
			Output: "stdout",
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: DefaultAPIPort,
		},
		Engine: EngineConfig{
			ChainID: DefaultChainID,
		},
		Finalizer: FinalizerConfig{
			Enabled:  true,
			Interval: DefaultFinalizerInterval,
		},
		Limits: voting.DefaultLimits(),
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("datadir is required")
	}
	if c.DBType == "" {
		return fmt.Errorf("dbType is required")
	}
	if !log.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid API port %d", c.API.Port)
	}
	if c.Owner != "" && !common.IsHexAddress(c.Owner) {
		return fmt.Errorf("invalid owner address %q", c.Owner)
	}
	if c.Engine.VerifyingContract != "" && !common.IsHexAddress(c.Engine.VerifyingContract) {
		return fmt.Errorf("invalid verifying contract address %q", c.Engine.VerifyingContract)
	}
	if c.Finalizer.Enabled && c.Finalizer.Interval < time.Second {
		return fmt.Errorf("finalizer interval must be at least 1s, got %s", c.Finalizer.Interval)
	}
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("invalid limits: %w", err)
	}
	return nil
}

// OwnerAddress returns the configured genesis owner, the zero address if none.
func (c *Config) OwnerAddress() common.Address {
	if c.Owner == "" {
		return common.Address{}
	}
	return common.HexToAddress(c.Owner)
}

// VerifyingContractAddress returns the configured verifying contract.
func (c *Config) VerifyingContractAddress() common.Address {
	return common.HexToAddress(c.Engine.VerifyingContract)
}

// String returns the configuration as YAML.
func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(data)
}
