package db

import (
	"fmt"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"
)

type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite3"
)

type DatabaseConfig struct {
	Driver   Dialect `yaml:"driver"`
	Host     string  `yaml:"host"`
	Port     int     `yaml:"port"`
	Username string  `yaml:"user"`
	Password string  `yaml:"password"`
	DBName   string  `yaml:"dbname"`
	// sqlite3 のときだけ使う
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Addr     string `yaml:"addr"`
	TimeZone string `yaml:"timezone"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	Server      ServerConfig   `yaml:"server"`
	DB          DatabaseConfig `yaml:"database"`
	Certificate Certs          `yaml:"certificate"`
	Log         LogConfig      `yaml:"log"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if cfg.Mode != "dev" && cfg.Mode != "release" {
		return nil, fmt.Errorf("invalid mode %q: want dev or release", cfg.Mode)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.TimeZone == "" {
		c.Server.TimeZone = "UTC"
	}
	if c.DB.Driver == "" {
		c.DB.Driver = DialectMySQL
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// DB は sqlx のハンドルに方言情報を添えたもの
type DB struct {
	*sqlx.DB
	Dialect Dialect
}

// Builder は方言に合わせた goqu のビルダを返す
func (d *DB) Builder() goqu.DialectWrapper {
	return goqu.Dialect(string(d.Dialect))
}

// LockSuffix は行ロック句。SQLite は BEGIN IMMEDIATE で書き込みが直列化されるので不要
func (d *DB) LockSuffix() string {
	if d.Dialect == DialectMySQL {
		return " FOR UPDATE"
	}
	return ""
}

// dataSource は driver 別の DSN。MySQL は clientFoundRows で「一致した行数」を返させ、
// 値が変わらない UPDATE でも RowsAffected が 1 になるようにする
func dataSource(c DatabaseConfig) (string, error) {
	switch c.Driver {
	case DialectMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC&clientFoundRows=true",
			c.Username, c.Password, c.Host, c.Port, c.DBName), nil
	case DialectSQLite:
		if c.Path == "" {
			return "", fmt.Errorf("sqlite3 requires database.path")
		}
		return fmt.Sprintf("file:%s?_foreign_keys=1&_busy_timeout=5000&_txlock=immediate", c.Path), nil
	default:
		return "", fmt.Errorf("unsupported driver %q", c.Driver)
	}
}

func Connect(c DatabaseConfig) (*DB, error) {
	dsn, err := dataSource(c)
	if err != nil {
		return nil, err
	}

	conn, err := sqlx.Open(string(c.Driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Driver, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", c.Driver, err)
	}

	if c.Driver == DialectMySQL {
		// 合算が MySQL の max_connections を超えないよう配分する
		conn.SetMaxOpenConns(80)
		conn.SetMaxIdleConns(20)
		conn.SetConnMaxLifetime(30 * time.Minute)
		conn.SetConnMaxIdleTime(5 * time.Minute)
	}

	return &DB{DB: conn, Dialect: c.Driver}, nil
}
