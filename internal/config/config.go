package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Audit  AuditConfig  `mapstructure:"audit"`
	Fill   FillConfig   `mapstructure:"fill"`
	ESign  ESignConfig  `mapstructure:"esign"`
	Form   FormConfig   `mapstructure:"form"`
	Logger LoggerConfig `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

// AuditConfig holds the on-disk audit trail locations
type AuditConfig struct {
	Dir        string `mapstructure:"dir"`
	ScratchDir string `mapstructure:"scratch_dir"`
}

// FillConfig describes how the external PDF fill process is launched
type FillConfig struct {
	Executable string `mapstructure:"executable"`
	Script     string `mapstructure:"script"`
	Mode       string `mapstructure:"mode"`
}

// ESignConfig holds e-signature provider configuration
type ESignConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	RoleID  string        `mapstructure:"role_id"`
	Timeout time.Duration `mapstructure:"timeout"` // zero keeps the transport default
}

// FormConfig points at the static wizard definition
type FormConfig struct {
	SchemaPath       string `mapstructure:"schema_path"`
	BaseDocumentPath string `mapstructure:"base_document_path"`
	AppName          string `mapstructure:"app_name"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// RegisterFlags defines the command-line flags understood by Load
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "configs/config.yaml", "Path to the YAML configuration file")
	fs.Int("port", 0, "HTTP listen port (overrides server.port)")
	fs.String("audit-dir", "", "Audit directory (overrides audit.dir)")
	fs.String("env-file", ".env", "Optional dotenv file loaded before configuration")
}

// Load loads configuration from the file named by --config, the environment and flags.
// A missing config file is not an error; defaults and environment still apply.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	envFile, _ := fs.GetString("env-file")
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	configPath, _ := fs.GetString("config")
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)
	if err := bindFlags(v, fs); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv reads KEY=VALUE pairs into the process environment without
// overriding variables that are already set
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.read_timeout", 60*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.max_upload_bytes", 50<<20)

	v.SetDefault("audit.dir", "saved")
	v.SetDefault("audit.scratch_dir", "uploads")

	v.SetDefault("fill.executable", "python")
	v.SetDefault("fill.script", "fill.py")
	v.SetDefault("fill.mode", "flatten")

	v.SetDefault("esign.base_url", "https://sandbox.esignlive.com")
	v.SetDefault("esign.role_id", "Signer1")
	v.SetDefault("esign.timeout", time.Duration(0))

	v.SetDefault("form.schema_path", "configs/form.json")
	v.SetDefault("form.base_document_path", "form/persona-juridica.pdf")
	v.SetDefault("form.app_name", "Persona Juridica")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	// ONESPAN_API_KEY is the variable name the original deployment used
	v.BindEnv("esign.api_key", "ESIGN_API_KEY", "ONESPAN_API_KEY")
	v.BindEnv("esign.base_url", "ESIGN_BASE_URL")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("audit.dir", "AUDIT_DIR")
	v.BindEnv("logger.level", "LOG_LEVEL")
}

// bindFlags lets explicitly set flags win over file and environment
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	if f := fs.Lookup("port"); f != nil && f.Changed {
		if err := v.BindPFlag("server.port", f); err != nil {
			return fmt.Errorf("failed to bind port flag: %w", err)
		}
	}
	if f := fs.Lookup("audit-dir"); f != nil && f.Changed {
		if err := v.BindPFlag("audit.dir", f); err != nil {
			return fmt.Errorf("failed to bind audit-dir flag: %w", err)
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Audit.Dir == "" {
		return fmt.Errorf("audit.dir is required")
	}
	if c.Fill.Executable == "" {
		return fmt.Errorf("fill.executable is required")
	}
	if c.ESign.BaseURL == "" {
		return fmt.Errorf("esign.base_url is required")
	}
	if c.ESign.RoleID == "" {
		return fmt.Errorf("esign.role_id is required")
	}
	if c.Form.SchemaPath == "" {
		return fmt.Errorf("form.schema_path is required")
	}
	return nil
}
