package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spigell/talent-scout/internal/ai"
	"github.com/spigell/talent-scout/internal/ai/gemini"
	"github.com/spigell/talent-scout/internal/intake"
	"github.com/spigell/talent-scout/internal/logger"
	"github.com/spigell/talent-scout/internal/secrets"
	"github.com/spigell/talent-scout/internal/session"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	inputLabel = "Your message"
)

var errExit = errors.New("exit requested")

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive candidate intake session",
	Run: func(cmd *cobra.Command, _ []string) {
		chat(cmd)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().BoolP("greeting", "g", false, "open the session with a generated greeting")
	chatCmd.Flags().String("backend", "", "gemini backend: rest or sdk")

	viper.BindPFlag("greeting", chatCmd.Flags().Lookup("greeting"))
	viper.BindPFlag("gemini.backend", chatCmd.Flags().Lookup("backend"))
}

type lineReader interface {
	Run() (string, error)
}

// chat is the session driver: it owns the terminal and the transcript.
func chat(cmd *cobra.Command) {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	apiKey, err := resolveAPIKey(config)
	if err != nil {
		logger.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or the 'gemini.api-key-file' key in the configuration file"),
		)
	}

	gateway, err := newGateway(ctx, config.Gemini, apiKey, logger)
	if err != nil {
		logger.Fatal("building generation gateway", zap.Error(err))
	}
	gateway.OnStatus(func(status string) {
		fmt.Fprintln(out, status)
	})

	machine := intake.NewMachine(gateway, logger)
	sess := session.New(machine, logger)

	logger.Info("starting the talent-scout session", zap.String("version", version), zap.String("session_id", sess.ID))

	if config.Greeting {
		res := machine.Greeting(ctx)
		printGenerationError(errOut, res.Err)
		fmt.Fprintln(out, res.Text)
	}
	fmt.Fprintln(out, machine.Prompt())

	reader := &promptui.Prompt{Label: inputLabel}

	if err := converse(ctx, sess, reader, out, errOut); err != nil {
		if errors.Is(err, errExit) {
			reason := "input closed"
			if ctx.Err() != nil {
				reason = "interrupted"
			}
			logger.Info("exiting", zap.String("reason", reason))
			return
		}
		logger.Fatal("exiting", zap.Error(err))
	}
}

// converse feeds lines to the session until it ends or input is closed. An
// interrupt cancels ctx for good, so the loop stops at the next turn instead of
// failing every later generation.
func converse(ctx context.Context, sess *session.Session, reader lineReader, out, errOut io.Writer) error {
	for {
		if ctx.Err() != nil {
			return errExit
		}

		text, err := reader.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, io.EOF) {
				return errExit
			}
			return fmt.Errorf("reading input: %w", err)
		}

		turn, err := sess.Submit(ctx, text)
		if err != nil {
			if errors.Is(err, intake.ErrSessionEnded) {
				return nil
			}
			return err
		}

		printGenerationError(errOut, turn.Err)
		fmt.Fprintln(out, turn.Reply)

		if turn.Ended {
			return nil
		}
	}
}

func printGenerationError(w io.Writer, err error) {
	if err == nil {
		return
	}

	label := "Unexpected Error"
	var genErr *ai.GenerationError
	if errors.As(err, &genErr) {
		if genErr.Kind == ai.KindTransport {
			label = "API Error"
		}
		err = genErr.Err
	}

	fmt.Fprintf(w, "%s: %v\n", label, err)
}

func resolveAPIKey(config *Config) (string, error) {
	if config == nil || config.Gemini == nil {
		return "", errors.New("gemini configuration is required")
	}

	return secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.Gemini.APIKey,
		File:  config.Gemini.APIKeyFile,
		Env:   apiKeyEnv,
	})
}

func newGateway(ctx context.Context, cfg *GeminiConfig, apiKey string, log *zap.Logger) (*ai.Gateway, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))

	var generator ai.Generator
	switch backend {
	case "", backendREST:
		backend = backendREST
		client, err := gemini.NewRESTClient(apiKey, cfg.Endpoint, log)
		if err != nil {
			return nil, err
		}
		generator = client
	case backendSDK:
		client, err := gemini.NewSDKClient(ctx, apiKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		generator = client
	default:
		return nil, fmt.Errorf("unsupported gemini backend: %s", cfg.Backend)
	}

	genLogger := logger.WithCommonFields(log, "gemini", generator.Model(), backend)

	return ai.NewGateway(generator, genLogger, cfg.MaxLogLength), nil
}
