package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tailored-agentic-units/threads/agent"
	"github.com/tailored-agentic-units/threads/kernel"
	"github.com/tailored-agentic-units/threads/observability"
	"github.com/tailored-agentic-units/threads/transcript"
)

var rootCmd = &cobra.Command{
	Use:          "threads",
	Short:        "threads keeps persistent, independent chat conversations",
	SilenceUsage: true,
}

func main() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to config file (JSON, or YAML by extension)")
	flags.String("store-backend", "", "Transcript store: file, bolt, redis, sql or memory")
	flags.String("store-path", "", "Snapshot path for the file and bolt stores")
	flags.String("store-addr", "", "Redis address for the redis store")
	flags.String("store-dialect", "", "SQL dialect: sqlite or postgres")
	flags.String("store-dsn", "", "SQL data source name")
	flags.String("provider", "", "Completion provider: echo, openai or ollama")
	flags.String("model", "", "Model name passed to the provider")
	flags.String("base-url", "", "Provider base URL")
	flags.String("api-key", "", "Provider API key")
	flags.String("system-prompt", "", "System prompt sent ahead of every history")
	flags.Int("window", 0, "Send only the last N messages to the provider; 0 sends all")
	flags.String("agent", "", "Named agent from the config file to use for turns")
	flags.String("observer", "console", "Kernel event observer: console, zerolog, slog or noop")
	flags.String("log-level", "warn", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")

	cobra.CheckErr(initViper(rootCmd))

	rootCmd.AddCommand(
		newChatCommand(),
		newListCommand(),
		newShowCommand(),
		newNewCommand(),
		newSendCommand(),
		newDeleteCommand(),
		newAgentsCommand(),
		newServeCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

// initViper binds persistent flags and THREADS_* environment variables.
func initViper(cmd *cobra.Command) error {
	viper.SetEnvPrefix("threads")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	return viper.BindPFlags(cmd.PersistentFlags())
}

func newLogger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return zerolog.Nop(), errors.Wrap(err, "parse log level")
	}

	var w io.Writer = os.Stderr
	if viper.GetString("log-format") == "text" {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// loadConfig layers flags and environment over the config file over defaults.
func loadConfig() (*kernel.Config, error) {
	cfg := kernel.DefaultConfig()
	if path := viper.GetString("config"); path != "" {
		loaded, err := kernel.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	cfg.Merge(&kernel.Config{
		Store: transcript.Config{
			Backend: viper.GetString("store-backend"),
			Path:    viper.GetString("store-path"),
			Addr:    viper.GetString("store-addr"),
			Dialect: viper.GetString("store-dialect"),
			DSN:     viper.GetString("store-dsn"),
		},
		Agent: agent.Config{
			Provider:     viper.GetString("provider"),
			Model:        viper.GetString("model"),
			BaseURL:      viper.GetString("base-url"),
			APIKey:       viper.GetString("api-key"),
			SystemPrompt: viper.GetString("system-prompt"),
			Window:       viper.GetInt("window"),
		},
	})
	return &cfg, nil
}

// openKernel builds and bootstraps a kernel. An unreadable store is logged
// and the session starts empty.
func openKernel(ctx context.Context, logger zerolog.Logger, extra ...observability.Observer) (*kernel.Kernel, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	observability.RegisterObserver("console", observability.NewZerologObserver(logger))
	observer, err := observability.GetObserver(viper.GetString("observer"))
	if err != nil {
		return nil, err
	}
	if len(extra) > 0 {
		observer = observability.NewMultiObserver(append([]observability.Observer{observer}, extra...)...)
	}

	k, err := kernel.New(cfg, kernel.WithObserver(observer))
	if err != nil {
		return nil, err
	}

	if name := viper.GetString("agent"); name != "" {
		if err := k.UseAgent(name); err != nil {
			k.Close()
			return nil, err
		}
	}

	if err := k.Bootstrap(ctx); err != nil {
		if !errors.Is(err, kernel.ErrStoreCorrupt) {
			k.Close()
			return nil, err
		}
		logger.Warn().Err(err).Msg("transcript store unreadable, starting with no conversations")
	}
	return k, nil
}
