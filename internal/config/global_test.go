package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// isolateConfig points XDG_CONFIG_HOME at a fresh directory and clears
// every override variable.
func isolateConfig(t *testing.T) string {
	t.Helper()
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	for _, key := range []string{EnvRoot, EnvToolchain, EnvCompiler, EnvLogLevel, EnvEditor} {
		t.Setenv(key, "")
	}
	return tmpDir
}

func writeConfig(t *testing.T, configHome, content string) {
	t.Helper()
	configDir := filepath.Join(configHome, GlobalConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, GlobalConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := filepath.Join("/custom/config", "cmdload", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	// Empty XDG_CONFIG_HOME falls back to ~/.config
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	want = filepath.Join(home, ".config", "cmdload", "config.yml")
	if got := GlobalConfigPath(); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}
	if cfg.Root != "" {
		t.Errorf("Root = %q, want empty", cfg.Root)
	}
	if !cfg.LockEnabled() {
		t.Error("LockEnabled() = false, want true by default")
	}
	if cfg.ToolchainName() != DefaultToolchain {
		t.Errorf("ToolchainName() = %q, want %q", cfg.ToolchainName(), DefaultToolchain)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	dir := isolateConfig(t)
	writeConfig(t, dir, `root: ~/snippets
editor: code --wait
toolchain: rust
compiler: rustc -O --out-dir "$OUTDIR" "$SRC"
lock: false
log_level: debug
`)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "snippets"); cfg.Root != want {
		t.Errorf("Root = %q, want %q", cfg.Root, want)
	}
	if cfg.EditorCommand() != "code --wait" {
		t.Errorf("EditorCommand() = %q, want code --wait", cfg.EditorCommand())
	}
	if cfg.ToolchainName() != "rust" {
		t.Errorf("ToolchainName() = %q, want rust", cfg.ToolchainName())
	}
	if cfg.CompilerCommand() != `rustc -O --out-dir "$OUTDIR" "$SRC"` {
		t.Errorf("CompilerCommand() = %q", cfg.CompilerCommand())
	}
	if cfg.LockEnabled() {
		t.Error("LockEnabled() = true, want false")
	}
	if cfg.LogLevelName() != "debug" {
		t.Errorf("LogLevelName() = %q, want debug", cfg.LogLevelName())
	}
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	dir := isolateConfig(t)
	writeConfig(t, dir, "root: [unterminated\n")

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() should return error for invalid YAML")
	}
}

func TestLoadGlobalConfig_InvalidToolchain(t *testing.T) {
	dir := isolateConfig(t)
	writeConfig(t, dir, "toolchain: cobol\n")

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() should reject unknown toolchain")
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := isolateConfig(t)
	writeConfig(t, dir, "root: /from/config\neditor: nano\ncompiler: from-config\n")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatal(err)
	}

	if got := cfg.RegistryRoot(); got != "/from/config" {
		t.Errorf("RegistryRoot() = %q, want /from/config", got)
	}

	t.Setenv(EnvRoot, "/from/env")
	t.Setenv(EnvCompiler, "from-env")
	t.Setenv(EnvEditor, "vim")

	if got := cfg.RegistryRoot(); got != "/from/env" {
		t.Errorf("RegistryRoot() = %q, want /from/env", got)
	}
	if got := cfg.CompilerCommand(); got != "from-env" {
		t.Errorf("CompilerCommand() = %q, want from-env", got)
	}
	// The editor key wins over $EDITOR.
	if got := cfg.EditorCommand(); got != "nano" {
		t.Errorf("EditorCommand() = %q, want nano", got)
	}
}

func TestSetGetAndSave(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatal(err)
	}

	if err := cfg.Set("toolchain", "rust"); err != nil {
		t.Fatalf("Set(toolchain) error = %v", err)
	}
	if err := cfg.Set("source-ext", ".rs"); err != nil {
		t.Fatalf("Set(source-ext) error = %v", err)
	}
	if err := cfg.Set("lock", "false"); err != nil {
		t.Fatalf("Set(lock) error = %v", err)
	}
	if err := cfg.Set("toolchain", "cobol"); err == nil {
		t.Error("Set(toolchain, cobol) should fail")
	}
	if err := cfg.Set("lock", "maybe"); err == nil {
		t.Error("Set(lock, maybe) should fail")
	}
	if err := cfg.Set("colour", "blue"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Set(colour) error = %v, want ErrUnknownKey", err)
	}

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	ResetGlobalConfigCache()
	reloaded, err := LoadGlobalConfig()
	if err != nil {
		t.Fatal(err)
	}

	for key, want := range map[string]string{
		"toolchain":  "rust",
		"source-ext": "rs",
		"lock":       "false",
	} {
		got, err := reloaded.Get(key)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", key, err)
		}
		if got != want {
			t.Errorf("Get(%s) = %q, want %q", key, got, want)
		}
	}
}
