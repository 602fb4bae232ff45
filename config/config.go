// Package config define la configuración del servicio y su carga por capas.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Ambientes soportados
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
	EnvironmentTesting     = "testing"
)

// Config contiene la configuración del proceso
type Config struct {
	Addr        string `koanf:"addr"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	JWTSecret string        `koanf:"jwt_secret"`
	JWTTTL    time.Duration `koanf:"jwt_ttl"`

	// DatabaseURL tiene prioridad sobre los campos DB* individuales.
	DatabaseURL       string        `koanf:"database_url"`
	DBHost            string        `koanf:"db_host"`
	DBPort            int           `koanf:"db_port"`
	DBUser            string        `koanf:"db_user"`
	DBPassword        string        `koanf:"db_password"`
	DBName            string        `koanf:"db_name"`
	DBSSLMode         string        `koanf:"db_sslmode"`
	DBMaxConns        int32         `koanf:"db_max_conns"`
	DBMinConns        int32         `koanf:"db_min_conns"`
	DBMaxConnIdleTime time.Duration `koanf:"db_max_conn_idle_time"`
	DBMaxConnLifetime time.Duration `koanf:"db_max_conn_lifetime"`
	DBConnectTimeout  time.Duration `koanf:"db_connect_timeout"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`

	CORSOrigins string `koanf:"cors_origins"`
	BodyLimit   int    `koanf:"body_limit"`

	RateLimitMax        int           `koanf:"rate_limit_max"`
	RateLimitWindow     time.Duration `koanf:"rate_limit_window"`
	AuthRateLimitMax    int           `koanf:"auth_rate_limit_max"`
	AuthRateLimitWindow time.Duration `koanf:"auth_rate_limit_window"`
}

// New retorna una configuración con los valores por defecto
func New() *Config {
	return &Config{
		Addr:                ":3000",
		Environment:         EnvironmentDevelopment,
		LogLevel:            "info",
		JWTTTL:              24 * time.Hour,
		DBHost:              "localhost",
		DBPort:              5432,
		DBSSLMode:           "disable",
		DBMaxConns:          10,
		DBMinConns:          0,
		DBMaxConnIdleTime:   30 * time.Second,
		DBMaxConnLifetime:   time.Hour,
		DBConnectTimeout:    30 * time.Second,
		RequestTimeout:      30 * time.Second,
		CORSOrigins:         "*",
		BodyLimit:           1 << 20,
		RateLimitMax:        100,
		RateLimitWindow:     15 * time.Minute,
		AuthRateLimitMax:    20,
		AuthRateLimitWindow: 30 * time.Minute,
	}
}

// IsProduction indica si el proceso corre en producción
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// ConnString arma la cadena de conexión a PostgreSQL
func (c *Config) ConnString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:   "/" + c.DBName,
	}
	q := u.Query()
	if c.DBSSLMode != "" {
		q.Set("sslmode", c.DBSSLMode)
	}
	if c.DBConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(c.DBConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Validate revisa que los campos obligatorios estén presentes
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr", ErrMissingField)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: jwt_secret", ErrMissingField)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("%w: jwt_ttl debe ser positivo", ErrInvalidValue)
	}
	if c.DatabaseURL == "" && (c.DBHost == "" || c.DBUser == "" || c.DBName == "") {
		return fmt.Errorf("%w: database_url o db_host, db_user y db_name", ErrMissingField)
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("%w: límites del pool de conexiones", ErrInvalidValue)
	}
	return nil
}
