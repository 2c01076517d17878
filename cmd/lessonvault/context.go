package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"lessonvault/internal/catalog"
	"lessonvault/internal/config"
	"lessonvault/internal/logging"
	"lessonvault/internal/rainclassroom"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the run logger. Console output goes to errOut so stdout
// stays clean for tables and the login QR code.
func newLogger(cfg *config.Config, errOut io.Writer) (*slog.Logger, func() error, error) {
	opts := logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Console: errOut,
	}
	if cfg.Paths.LogDir != "" {
		opts.FilePath = logFilePath(cfg)
	}
	return logging.New(opts)
}

func logFilePath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, "lessonvault.log")
}

// authenticate returns a platform session. A stored or configured token is
// used when present; otherwise, when interactive is set, the QR login runs and
// the new token is saved to the session file.
func authenticate(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger, interactive bool) (catalog.Session, error) {
	token, err := rainclassroom.ResolveToken(cfg.Session.Cookie, cfg.Paths.SessionFile)
	if err != nil {
		return catalog.Session{}, err
	}
	if token != "" {
		return rainclassroom.CookieSession{
			Host:    cfg.Session.Host,
			Token:   token,
			Timeout: cfg.RequestTimeout(),
		}.Authenticate(ctx)
	}
	if !interactive {
		return catalog.Session{}, errors.New("no session configured; run `lessonvault login` first")
	}
	return interactiveLogin(ctx, cfg, out, logger)
}

func interactiveLogin(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) (catalog.Session, error) {
	session, err := rainclassroom.QRLogin{
		Host:    cfg.Session.Host,
		Out:     out,
		Timeout: cfg.RequestTimeout(),
		Logger:  logger,
	}.Authenticate(ctx)
	if err != nil {
		return catalog.Session{}, fmt.Errorf("login: %w", err)
	}
	if err := rainclassroom.SaveToken(cfg.Paths.SessionFile, session.Token); err != nil {
		return catalog.Session{}, err
	}
	return session, nil
}

func newPlatformClient(cfg *config.Config, session catalog.Session, logger *slog.Logger) (*rainclassroom.Client, error) {
	return rainclassroom.New(cfg.Session.Host, session, rainclassroom.WithLogger(logger))
}

// explainAuthError adds the recovery step to a rejected session.
func explainAuthError(err error) error {
	if errors.Is(err, rainclassroom.ErrUnauthorized) {
		return fmt.Errorf("%w; run `lessonvault login` to refresh the session", err)
	}
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
