package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/mithrel/mdhistory/internal/github"
)

// CheckConfigValidity reports every invalid setting at once.
func CheckConfigValidity(v *viper.Viper) error {
	var errs *multierror.Error

	for _, key := range []string{"github.api_url", "github.raw_url"} {
		raw := strings.TrimSpace(v.GetString(key))
		if raw == "" {
			errs = multierror.Append(errs, fmt.Errorf("%s is required", key))
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = multierror.Append(errs, fmt.Errorf("%s has invalid url %q", key, raw))
		}
	}
	if d, err := cast.ToDurationE(v.Get("github.timeout")); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("github.timeout is not a duration: %w", err))
	} else if d < 0 {
		errs = multierror.Append(errs, fmt.Errorf("github.timeout must not be negative"))
	}
	if raw := strings.TrimSpace(v.GetString("default_url")); raw != "" {
		if _, ok := github.ParseBlobURL(raw); !ok {
			errs = multierror.Append(errs, fmt.Errorf("default_url is not a GitHub blob URL"))
		}
	}
	if v.GetInt("http.max_sessions") <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("http.max_sessions must be greater than 0"))
	}
	if v.GetInt("render.word_wrap") <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("render.word_wrap must be greater than 0"))
	}
	switch strings.ToLower(strings.TrimSpace(v.GetString("log.level"))) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = multierror.Append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error"))
	}
	if strings.TrimSpace(v.GetString("tls.domain")) != "" && strings.TrimSpace(v.GetString("tls.email")) == "" {
		errs = multierror.Append(errs, fmt.Errorf("tls.email is required when tls.domain is set"))
	}
	return errs.ErrorOrNil()
}
