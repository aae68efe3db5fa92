package easyetl

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
)

// DBConfig holds the connection parameters for the relational extract path.
// All fields are plain values supplied by the caller; nothing is read from
// disk or cached between calls.
type DBConfig struct {
	Database string `env:"EASYETL_DB_NAME"`
	User     string `env:"EASYETL_DB_USER"`
	Password string `env:"EASYETL_DB_PASSWORD"`
	Host     string `env:"EASYETL_DB_HOST" envDefault:"localhost"`
	Port     string `env:"EASYETL_DB_PORT" envDefault:"5432"`
	SSLMode  string `env:"EASYETL_DB_SSLMODE"`
}

// DBConfigFromEnv builds a DBConfig from EASYETL_DB_* environment variables.
// Convenience only; the extract/load functions themselves never touch the
// environment.
func DBConfigFromEnv() (DBConfig, error) {
	var cfg DBConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("%w, details: %v", ErrConnection, err)
	}
	return cfg, nil
}

// ConnString renders the config as a postgres:// connection URL, usable both
// by extract.FromDB and as the connURL argument of load.ToDB.
func (c DBConfig) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.Database,
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	if c.SSLMode != "" {
		q := url.Values{}
		q.Set("sslmode", c.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
