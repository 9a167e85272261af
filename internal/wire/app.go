package wire

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mithrel/mdhistory/internal/config"
	"github.com/mithrel/mdhistory/internal/github"
	"github.com/mithrel/mdhistory/internal/render"
	"github.com/mithrel/mdhistory/internal/viewer"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg      *viper.Viper
	Log      *slog.Logger
	GitHub   *github.Client
	Renderer *render.Renderer

	logCloser io.Closer
}

// BuildApp wires dependencies with the provided config.
func BuildApp(ctx context.Context, v *viper.Viper) (*App, error) {
	if err := config.CheckConfigValidity(v); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger, closer, err := newLogger(v)
	if err != nil {
		return nil, err
	}
	gh, err := github.New(github.Options{
		APIURL:  v.GetString("github.api_url"),
		RawURL:  v.GetString("github.raw_url"),
		Timeout: v.GetDuration("github.timeout"),
		Logger:  logger,
	})
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	r := render.New(render.Options{
		Sanitize: v.GetBool("render.sanitize"),
		Style:    v.GetString("render.style"),
		WordWrap: v.GetInt("render.word_wrap"),
	})
	return &App{
		Cfg:       v,
		Log:       logger,
		GitHub:    gh,
		Renderer:  r,
		logCloser: closer,
	}, nil
}

// NewSession returns a fresh viewer session pre-filled with default_url.
func (a *App) NewSession() *viewer.Session {
	s := viewer.New(a.GitHub, a.Renderer, a.Log)
	s.SetURL(a.Cfg.GetString("default_url"))
	return s
}

// Close releases the log file, if any.
func (a *App) Close() error {
	if a.logCloser == nil {
		return nil
	}
	return a.logCloser.Close()
}

func newLogger(v *viper.Viper) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: parseLevel(v.GetString("log.level"))}
	path := strings.TrimSpace(v.GetString("log.file"))
	if path == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil, nil
	}
	path = config.ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, opts)), f, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
