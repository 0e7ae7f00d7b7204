package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"imagerelay/internal/download"
	"imagerelay/internal/relay"
)

// User-facing failure messages. Causes are only logged.
const (
	msgGenerateFailed = "Failed to generate image"
	msgSaveFailed     = "Failed to save image"
)

// errReported marks a failure whose message has already been printed.
var errReported = errors.New("imagegen: failure reported")

var generateCmd = &cobra.Command{
	Use:   "generate <prompt...>",
	Short: "Generate an image from a prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().Bool("save", false, "Save the generated image locally")
	generateCmd.Flags().String("dir", ".", "Directory used for saved images")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	save, _ := cmd.Flags().GetBool("save")
	dir, _ := cmd.Flags().GetString("dir")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	logger := newCLILogger(cmd.ErrOrStderr(), cfg.Debug)
	g := &generator{
		action: relay.NewClient(relay.ClientOptions{
			BaseURL: cfg.Endpoint,
			APIKey:  cfg.ClientKey,
			Logger:  logger,
		}),
		httpClient: http.DefaultClient,
		logger:     logger,
		out:        cmd.OutOrStdout(),
		errOut:     cmd.ErrOrStderr(),
		now:        time.Now,
	}
	if save {
		g.saver = download.NewSaver(os.Stdin, os.Stdout, dir, g.httpClient)
	}
	return g.run(ctx, strings.Join(args, " "))
}

// action matches relay.Client.
type action interface {
	Generate(ctx context.Context, prompt string) relay.Result
}

type generator struct {
	action     action
	saver      download.Saver
	httpClient *http.Client
	logger     zerolog.Logger
	out        io.Writer
	errOut     io.Writer
	now        func() time.Time
}

func (g *generator) run(ctx context.Context, prompt string) error {
	res := g.action.Generate(ctx, prompt)
	if !res.Success {
		g.logger.Debug().Str("error", res.Error).Msg("relay reported failure")
		return g.fail(msgGenerateFailed)
	}

	// Make sure the public URL is actually reachable before handing it out.
	if _, _, err := download.Fetch(ctx, g.httpClient, res.ImageURL); err != nil {
		g.logger.Error().Err(err).Str("url", res.ImageURL).Msg("failed to load generated image")
		return g.fail(msgGenerateFailed)
	}
	fmt.Fprintln(g.out, res.ImageURL)

	if g.saver == nil {
		return nil
	}
	path, err := g.saver.Save(ctx, res.ImageURL, download.SuggestedName(prompt, g.now()))
	switch {
	case errors.Is(err, download.ErrCanceled):
		return nil
	case err != nil:
		g.logger.Error().Err(err).Msg("error saving image")
		return g.fail(msgSaveFailed)
	}
	g.logger.Info().Str("path", path).Msg("image saved")
	return nil
}

func (g *generator) fail(msg string) error {
	fmt.Fprintln(g.errOut, msg)
	return errReported
}

func newCLILogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}
