package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultPort                   = "3000"
	defaultDBHost                 = "localhost"
	defaultDBPort                 = "5432"
	defaultDBUser                 = "postgres"
	defaultDBPassword             = "postgres"
	defaultDBName                 = "postgres"
	defaultDBSSLMode              = "disable"
	defaultDBSchema               = "public"
	defaultDBMaxOpenConns         = 10
	defaultDocumentsDir           = "./documents"
	defaultOfficeExtractorCommand = "python3 python/extract_office.py"
	defaultOfficeExtractorTimeout = 30 * time.Second
	defaultExtractionTimeout      = 60 * time.Second
	defaultMaxFileSize            = 10 * 1024 * 1024
	defaultLogLevel               = "info"
)

type Config struct {
	config *viper.Viper
}

// Load reads config/config.<env>.yaml if it can be found and lets environment
// variables override it. An empty env falls back to $ENV and then to "local".
// A missing file is not an error; a file that cannot be parsed is.
func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

func (c *Config) GetPort() string {
	return c.getString("PORT", "server.port", defaultPort)
}

func (c *Config) GetLogLevel() string {
	return c.getString("LOG_LEVEL", "log.level", defaultLogLevel)
}

// GetDatabaseURL builds a lib/pq connection URL from the individual DB_* keys.
func (c *Config) GetDatabaseURL() string {
	dsn := url.URL{
		Scheme: "postgres",
		User: url.UserPassword(
			c.getString("DB_USER", "database.user", defaultDBUser),
			c.getString("DB_PASSWORD", "database.password", defaultDBPassword),
		),
		Host: c.getString("DB_HOST", "database.host", defaultDBHost) + ":" + c.getString("DB_PORT", "database.port", defaultDBPort),
		Path: c.getString("DB_NAME", "database.name", defaultDBName),
	}
	query := url.Values{}
	query.Set("sslmode", c.getString("DB_SSLMODE", "database.sslmode", defaultDBSSLMode))
	dsn.RawQuery = query.Encode()

	return dsn.String()
}

func (c *Config) GetDBSchema() string {
	return c.getString("DB_SCHEMA", "database.schema", defaultDBSchema)
}

func (c *Config) GetDBMaxOpenConns() int {
	return c.getInt("DB_MAX_OPEN_CONNS", "database.max_open_conns", defaultDBMaxOpenConns)
}

func (c *Config) GetDocumentsDir() string {
	return c.getString("DOCUMENTS_DIR", "documents.dir", defaultDocumentsDir)
}

// GetOfficeExtractorCommand returns the program followed by any leading arguments.
func (c *Config) GetOfficeExtractorCommand() []string {
	return strings.Fields(c.getString("OFFICE_EXTRACTOR_CMD", "documents.office_extractor_cmd", defaultOfficeExtractorCommand))
}

func (c *Config) GetOfficeExtractorTimeout() time.Duration {
	return c.getDuration("OFFICE_EXTRACTOR_TIMEOUT", "documents.office_extractor_timeout", defaultOfficeExtractorTimeout)
}

func (c *Config) GetExtractionTimeout() time.Duration {
	return c.getDuration("EXTRACTION_TIMEOUT", "documents.extraction_timeout", defaultExtractionTimeout)
}

func (c *Config) GetMaxFileSize() int64 {
	return int64(c.getInt("MAX_FILE_SIZE", "documents.max_file_size", defaultMaxFileSize))
}

func (c *Config) getString(envKey string, fileKey string, fallback string) string {
	value := c.config.GetString(envKey)
	if len(value) == 0 {
		value = c.config.GetString(fileKey)
	}
	if len(value) == 0 {
		value = fallback
	}

	return value
}

func (c *Config) getInt(envKey string, fileKey string, fallback int) int {
	value := c.config.GetInt(envKey)
	if value == 0 {
		value = c.config.GetInt(fileKey)
	}
	if value <= 0 {
		value = fallback
	}

	return value
}

func (c *Config) getDuration(envKey string, fileKey string, fallback time.Duration) time.Duration {
	value := c.config.GetDuration(envKey)
	if value == 0 {
		value = c.config.GetDuration(fileKey)
	}
	if value <= 0 {
		value = fallback
	}

	return value
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
