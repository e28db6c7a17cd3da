package postgres

import (
	"fmt"
	"net/url"

	"github.com/crowdsourcing/surveyadmin/config"
)

// DSN builds a postgres URL. Credentials are escaped so passwords with
// reserved characters survive.
func DSN(cfg *config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
