package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"doc_scanner"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address          string   `envconfig:"DOC_SCANNER_ADDRESS" default:":8000"`
	LogLevel         string   `envconfig:"DOC_SCANNER_LOG_LEVEL" default:"info"`
	CorsOrigins      []string `envconfig:"DOC_SCANNER_CORS_ORIGINS" default:"http://localhost:4200"`
	ExtractTimeout   int      `envconfig:"DOC_SCANNER_EXTRACT_TIMEOUT_SECONDS" default:"180"`
	MaxUploadSize    int64    `envconfig:"DOC_SCANNER_MAX_UPLOAD_SIZE" default:"52428800"`
	MigrationsFolder string   `envconfig:"DOC_SCANNER_MIGRATIONS_FOLDER" default:"migrations"`
}

func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
