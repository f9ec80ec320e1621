package postgres

import (
	"fmt"
	"net/url"
	"strings"
)

type Config struct {
	User     string
	Password string
	Host     string
	Port     string
	DBName   string
	SSLMode  string // disable, require, verify-full; empty leaves the driver default
	MaxConns int    // pool size; 0 leaves the pgxpool default
}

// ConString renders the pool connection string. SSLMode and MaxConns
// travel as query parameters, which pgxpool understands natively.
func (c *Config) ConString() string {
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	if c.MaxConns > 0 {
		q.Set("pool_max_conns", fmt.Sprintf("%d", c.MaxConns))
	}

	conStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.DBName)
	if len(q) > 0 {
		conStr += "?" + q.Encode()
	}

	return conStr
}

// String masks the password so the config can be logged.
func (c Config) String() string {
	c.Password = strings.Repeat("*", len([]rune(c.Password)))
	return fmt.Sprintf("%#v", c)
}

func (c *Config) IsValid() bool {
	if c.User == "" || c.Password == "" || c.Host == "" || c.Port == "" || c.DBName == "" {
		return false
	}
	return true
}
