package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/cmdload/config.yml.
type GlobalConfig struct {
	Root      string `yaml:"root,omitempty"`       // Registry root (default ~/commands)
	Editor    string `yaml:"editor,omitempty"`     // Editor command line, e.g. "code --wait"
	Toolchain string `yaml:"toolchain,omitempty"`  // Compiler preset: go, rust
	Compiler  string `yaml:"compiler,omitempty"`   // Overrides the preset's compiler command line
	SourceExt string `yaml:"source_ext,omitempty"` // Overrides the preset's source extension
	BinaryExt string `yaml:"binary_ext,omitempty"` // Overrides the platform binary extension
	Lock      *bool  `yaml:"lock,omitempty"`       // Advisory registry lock (default true)
	LogLevel  string `yaml:"log_level,omitempty"`  // debug, info, warn, error
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "cmdload"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Environment variables that override the config file.
const (
	EnvRoot      = "CMDLOAD_ROOT"
	EnvToolchain = "CMDLOAD_TOOLCHAIN"
	EnvCompiler  = "CMDLOAD_COMPILER"
	EnvLogLevel  = "CMDLOAD_LOG_LEVEL"
	EnvEditor    = "EDITOR"
)

// DefaultToolchain is used when neither the config file nor the environment names one.
const DefaultToolchain = "go"

// ValidToolchains lists the supported toolchain values.
var ValidToolchains = []string{"go", "rust"}

// Keys lists the settable configuration keys in display order.
var Keys = []string{"root", "editor", "toolchain", "compiler", "source-ext", "binary-ext", "lock", "log-level"}

// ErrUnknownKey is returned by Get and Set for keys not in Keys.
var ErrUnknownKey = errors.New("unknown configuration key")

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/cmdload/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.Root != "" {
		cfg.Root = ExpandPath(cfg.Root)
	}
	if cfg.Toolchain != "" {
		if err := ValidateToolchain(cfg.Toolchain); err != nil {
			return nil, err
		}
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// Save writes the configuration to GlobalConfigPath, creating its directory.
func (c *GlobalConfig) Save() error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	globalConfigCache = c
	return nil
}

// RegistryRoot returns the registry root: $CMDLOAD_ROOT, then the root key,
// then ~/commands.
func (c *GlobalConfig) RegistryRoot() string {
	if root := os.Getenv(EnvRoot); root != "" {
		return ExpandPath(root)
	}
	if c.Root != "" {
		return ExpandPath(c.Root)
	}
	return DefaultRoot()
}

// EditorCommand returns the editor key, then $EDITOR. Empty means the caller
// should fall back to the platform default.
func (c *GlobalConfig) EditorCommand() string {
	if c.Editor != "" {
		return c.Editor
	}
	return os.Getenv(EnvEditor)
}

// ToolchainName returns $CMDLOAD_TOOLCHAIN, then the toolchain key, then "go".
func (c *GlobalConfig) ToolchainName() string {
	if tc := os.Getenv(EnvToolchain); tc != "" {
		return tc
	}
	if c.Toolchain != "" {
		return c.Toolchain
	}
	return DefaultToolchain
}

// CompilerCommand returns $CMDLOAD_COMPILER, then the compiler key.
// Empty means the toolchain preset's command.
func (c *GlobalConfig) CompilerCommand() string {
	if cmd := os.Getenv(EnvCompiler); cmd != "" {
		return cmd
	}
	return c.Compiler
}

// LogLevelName returns $CMDLOAD_LOG_LEVEL, then the log_level key.
func (c *GlobalConfig) LogLevelName() string {
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		return lvl
	}
	return c.LogLevel
}

// LockEnabled reports whether the advisory registry lock is on. Defaults to true.
func (c *GlobalConfig) LockEnabled() bool {
	return c.Lock == nil || *c.Lock
}

// Get returns the stored (not environment-overridden) value for key.
func (c *GlobalConfig) Get(key string) (string, error) {
	switch key {
	case "root":
		return c.Root, nil
	case "editor":
		return c.Editor, nil
	case "toolchain":
		return c.Toolchain, nil
	case "compiler":
		return c.Compiler, nil
	case "source-ext":
		return c.SourceExt, nil
	case "binary-ext":
		return c.BinaryExt, nil
	case "lock":
		return strconv.FormatBool(c.LockEnabled()), nil
	case "log-level":
		return c.LogLevel, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set validates and stores value under key. It does not save.
func (c *GlobalConfig) Set(key, value string) error {
	switch key {
	case "root":
		c.Root = ExpandPath(value)
	case "editor":
		c.Editor = value
	case "toolchain":
		if err := ValidateToolchain(value); err != nil {
			return err
		}
		c.Toolchain = value
	case "compiler":
		c.Compiler = value
	case "source-ext":
		c.SourceExt = strings.TrimPrefix(value, ".")
	case "binary-ext":
		c.BinaryExt = value
	case "lock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid lock value %q: want true or false", value)
		}
		c.Lock = &b
	case "log-level":
		c.LogLevel = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// ValidateToolchain checks that the toolchain value is valid.
func ValidateToolchain(name string) error {
	for _, valid := range ValidToolchains {
		if name == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid toolchain: %s (valid: %v)", name, ValidToolchains)
}
