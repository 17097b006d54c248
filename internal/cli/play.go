package cli

import (
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/trivia-quiz/internal/app"
	"github.com/gokatarajesh/trivia-quiz/internal/config"
	"github.com/gokatarajesh/trivia-quiz/internal/logging"
	"github.com/gokatarajesh/trivia-quiz/internal/navbar"
	"github.com/gokatarajesh/trivia-quiz/internal/terminal"
)

type playFlags struct {
	source  string
	limit   int
	timeout time.Duration
	verbose bool
}

// NewPlayCmd builds the subcommand that plays one quiz over stdin/stdout.
func NewPlayCmd() *cobra.Command {
	flags := &playFlags{}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Fetch a question set and play it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.source, "source", "", "question source: triviaapi or opentdb (default from TRIVIA_SOURCE)")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "number of questions to request (default from TRIVIA_QUESTION_LIMIT)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "upstream fetch timeout (default from QUESTION_FETCH_TIMEOUT)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log to stderr")
	return cmd
}

func runPlay(cmd *cobra.Command, flags *playFlags) error {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load("configs/.env")
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("source") {
		cfg.Trivia.Source = flags.source
	}
	if cmd.Flags().Changed("limit") {
		cfg.Trivia.Limit = flags.limit
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Trivia.FetchTimeout = flags.timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := zerolog.Nop()
	if flags.verbose {
		logger = logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Name, cfg.Env, "debug")
	}

	provider := app.NewProvider(cfg, nil, logger)
	defer func() {
		if err := provider.Close(); err != nil {
			logger.Warn().Err(err).Msg("redis close failed")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	header := navbar.Default()
	player := terminal.NewPlayer(provider, cmd.InOrStdin(), cmd.OutOrStdout(), terminal.Options{Header: &header}, logger)
	return player.Run(ctx)
}
