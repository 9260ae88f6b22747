package main

import (
	"log/slog"

	"github.com/hmatsuda/botchat/src/config"
	"github.com/hmatsuda/botchat/src/directline"
)

// buildSession loads the configuration and wires a session on top of
// it. Configuration problems are fatal here, before any network call.
func buildSession(logLevel string) (*directline.Session, *config.Config, error) {
	logger := createCLILogger(logLevel)
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	client := directline.NewClient(directline.Config{
		Endpoint: cfg.DirectLineEndpoint,
		Secret:   cfg.Secret(),
		UserID:   cfg.UserID,
		UserName: cfg.UserName,
		Locale:   cfg.Locale,
		Logger:   logger,
	})

	return directline.NewSession(client), cfg, nil
}
