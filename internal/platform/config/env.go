package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides は設定ファイルより優先する環境変数です。空の値は上書きしません。
type envOverrides struct {
	DBPath      string `env:"DB_PATH"`
	DatabaseURL string `env:"DATABASE_URL"`
	Driver      string `env:"HR_RELATIONAL_DRIVER"`
	MongoURI    string `env:"MONGO_URI"`
	MongoDB     string `env:"MONGO_DB"`
	LogLevel    string `env:"HR_LOG_LEVEL"`
}

func loadEnvOverrides() (envOverrides, error) {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return envOverrides{}, fmt.Errorf("config: parse env: %w", err)
	}
	return o, nil
}

func (o envOverrides) apply(cfg *Config) {
	if o.DBPath != "" {
		cfg.Relational.SQLite.Path = o.DBPath
	}
	if o.DatabaseURL != "" {
		cfg.Relational.Postgres.URL = o.DatabaseURL
	}
	if o.Driver != "" {
		cfg.Relational.Driver = o.Driver
	}
	if o.MongoURI != "" {
		cfg.Documents.URI = o.MongoURI
	}
	if o.MongoDB != "" {
		cfg.Documents.Database = o.MongoDB
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
}
