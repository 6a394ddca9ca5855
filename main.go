package main

import (
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"supportchat/internal/config"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "supportchat",
		Short:         "Customer support chat that relays every message to a Langflow flow",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the JSON config file (default $SUPPORTCHAT_CONFIG or config.json)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")

	root.AddCommand(newServeCommand(opts), newChatCommand(opts), newAskCommand(opts))

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("supportchat failed")
		os.Exit(1)
	}
}

// loadConfig reads the configuration and sets up the global logger from it.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		setupLogger(config.DefaultLogLevel)
		return nil, err
	}
	level := cfg.BasicConfig.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	setupLogger(level)
	if cfg.UsesPlaceholderFlow() {
		log.Warn().Str("flow_url", cfg.FlowURL()).Msg("LANGFLOW_FLOW_ID is not set; requests go to the placeholder flow")
	}
	return cfg, nil
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var logger zerolog.Logger
	if isatty.IsTerminal(os.Stderr.Fd()) {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	log.Logger = logger.With().Timestamp().Logger()
}
