package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(newFlags(t,
		"--config", filepath.Join(dir, "missing.yaml"),
		"--env-file", ""))

	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "saved", cfg.Audit.Dir)
	assert.Equal(t, "flatten", cfg.Fill.Mode)
	assert.Equal(t, "Signer1", cfg.ESign.RoleID)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
server:
  port: 5000
audit:
  dir: "/var/audit"
fill:
  executable: "python3"
  script: "scripts/fill.py"
esign:
  timeout: 15s
`), 0644))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("ONESPAN_API_KEY=from-dotenv\n"), 0644))
	t.Setenv("ESIGN_API_KEY", "")
	t.Setenv("ONESPAN_API_KEY", "")
	os.Unsetenv("ONESPAN_API_KEY")
	t.Setenv("ESIGN_BASE_URL", "https://apps.esignlive.com")

	cfg, err := Load(newFlags(t,
		"--config", configPath,
		"--env-file", envPath,
		"--audit-dir", "/tmp/override"))

	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "/tmp/override", cfg.Audit.Dir)
	assert.Equal(t, "python3", cfg.Fill.Executable)
	assert.Equal(t, "scripts/fill.py", cfg.Fill.Script)
	assert.Equal(t, "from-dotenv", cfg.ESign.APIKey)
	assert.Equal(t, "https://apps.esignlive.com", cfg.ESign.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.ESign.Timeout)
}

func TestPortFlagWins(t *testing.T) {
	t.Setenv("PORT", "6000")

	cfg, err := Load(newFlags(t,
		"--config", filepath.Join(t.TempDir(), "none.yaml"),
		"--env-file", "",
		"--port", "7000"))

	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 4000},
			Audit:  AuditConfig{Dir: "saved"},
			Fill:   FillConfig{Executable: "python"},
			ESign:  ESignConfig{BaseURL: "https://x", RoleID: "Signer1"},
			Form:   FormConfig{SchemaPath: "configs/form.json"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"audit dir", func(c *Config) { c.Audit.Dir = "" }},
		{"executable", func(c *Config) { c.Fill.Executable = "" }},
		{"base url", func(c *Config) { c.ESign.BaseURL = "" }},
		{"role", func(c *Config) { c.ESign.RoleID = "" }},
		{"schema path", func(c *Config) { c.Form.SchemaPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
