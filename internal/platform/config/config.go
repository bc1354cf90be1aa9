package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	FallbackMemory = "memory"
	FallbackNone   = "none"

	defaultListenAddr       = ":50051"
	defaultSQLitePath       = "company.db"
	defaultBusyTimeout      = 30 * time.Second
	defaultOperationTimeout = 10 * time.Second
	defaultMongoURI         = "mongodb://localhost:27017"
	defaultMongoDatabase    = "performance_reviews_db"
	defaultMongoCollection  = "reviews"
	defaultDocumentTimeout  = 10 * time.Second
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Relational RelationalConfig `yaml:"relational"`
	Documents  DocumentsConfig  `yaml:"documents"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// RelationalConfig は社員・プロジェクト・割り当てを保存するストアの設定です。
type RelationalConfig struct {
	Driver              string         `yaml:"driver"`
	SQLite              SQLiteConfig   `yaml:"sqlite"`
	Postgres            DatabaseConfig `yaml:"postgres"`
	OperationTimeout    time.Duration  `yaml:"-"`
	OperationTimeoutRaw string         `yaml:"operation_timeout"`
}

// SQLiteConfig は SQLite ファイルに関する設定です。
type SQLiteConfig struct {
	Path           string        `yaml:"path"`
	BusyTimeout    time.Duration `yaml:"-"`
	BusyTimeoutRaw string        `yaml:"busy_timeout"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。URL が設定されている場合は個別項目より優先します。
type DatabaseConfig struct {
	URL                string        `yaml:"url"`
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// DocumentsConfig は評価ドキュメントストア (MongoDB) の設定です。
type DocumentsConfig struct {
	URI        string        `yaml:"uri"`
	Database   string        `yaml:"database"`
	Collection string        `yaml:"collection"`
	Timeout    time.Duration `yaml:"-"`
	TimeoutRaw string        `yaml:"timeout"`
	// Fallback は接続失敗時の動作です。既定は none で接続失敗をそのまま返し、memory を明示した場合のみインメモリストアで縮退運転します。
	Fallback string `yaml:"fallback"`
}

// LogConfig はログ出力の設定です。
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load は指定されたパスから設定ファイルを読み込み、環境変数で上書きします。path が空の場合は既定値から始めます。
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	overrides, err := loadEnvOverrides()
	if err != nil {
		return nil, err
	}
	overrides.apply(&cfg)

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = defaultListenAddr
	}

	if err := c.Relational.validateAndNormalize(); err != nil {
		return err
	}

	if err := c.Documents.validateAndNormalize(); err != nil {
		return err
	}

	return c.Log.validateAndNormalize()
}

func (r *RelationalConfig) validateAndNormalize() error {
	r.Driver = strings.ToLower(strings.TrimSpace(r.Driver))
	if r.Driver == "" {
		r.Driver = DriverSQLite
	}

	timeout, err := parseDurationWithDefault(r.OperationTimeoutRaw, defaultOperationTimeout)
	if err != nil {
		return fmt.Errorf("config: relational.operation_timeout: %w", err)
	}
	r.OperationTimeout = timeout

	switch r.Driver {
	case DriverSQLite:
		return r.SQLite.validateAndNormalize()
	case DriverPostgres:
		return r.Postgres.validateAndNormalize()
	default:
		return fmt.Errorf("config: relational.driver %q is not supported", r.Driver)
	}
}

func (s *SQLiteConfig) validateAndNormalize() error {
	if strings.TrimSpace(s.Path) == "" {
		s.Path = defaultSQLitePath
	}

	busy, err := parseDurationWithDefault(s.BusyTimeoutRaw, defaultBusyTimeout)
	if err != nil {
		return fmt.Errorf("config: relational.sqlite.busy_timeout: %w", err)
	}
	s.BusyTimeout = busy

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.URL == "" {
		if d.Host == "" {
			return errors.New("config: relational.postgres.host must be set")
		}
		if d.Port == 0 {
			return errors.New("config: relational.postgres.port must be set")
		}
		if d.User == "" {
			return errors.New("config: relational.postgres.user must be set")
		}
		if d.Password == "" {
			return errors.New("config: relational.postgres.password must be set")
		}
		if d.Name == "" {
			return errors.New("config: relational.postgres.name must be set")
		}
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationWithDefault(d.ConnMaxLifetimeRaw, 0)
	if err != nil {
		return fmt.Errorf("config: relational.postgres.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationWithDefault(d.ConnMaxIdleTimeRaw, 0)
	if err != nil {
		return fmt.Errorf("config: relational.postgres.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (d *DocumentsConfig) validateAndNormalize() error {
	if d.URI == "" {
		d.URI = defaultMongoURI
	}
	if d.Database == "" {
		d.Database = defaultMongoDatabase
	}
	if d.Collection == "" {
		d.Collection = defaultMongoCollection
	}

	timeout, err := parseDurationWithDefault(d.TimeoutRaw, defaultDocumentTimeout)
	if err != nil {
		return fmt.Errorf("config: documents.timeout: %w", err)
	}
	d.Timeout = timeout

	d.Fallback = strings.ToLower(strings.TrimSpace(d.Fallback))
	switch d.Fallback {
	case "":
		d.Fallback = FallbackNone
	case FallbackMemory, FallbackNone:
	default:
		return fmt.Errorf("config: documents.fallback %q is not supported", d.Fallback)
	}

	return nil
}

func (l *LogConfig) validateAndNormalize() error {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	switch l.Level {
	case "":
		l.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is not supported", l.Level)
	}

	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	switch l.Format {
	case "":
		l.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format %q is not supported", l.Format)
	}

	return nil
}

func parseDurationWithDefault(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", raw)
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// DSN は modernc.org/sqlite 用の接続文字列を返します。外部キー制約と WAL を有効にします。
func (s SQLiteConfig) DSN() string {
	busy := s.BusyTimeout
	if busy <= 0 {
		busy = defaultBusyTimeout
	}
	return fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		filepath.Clean(s.Path), busy.Milliseconds())
}
