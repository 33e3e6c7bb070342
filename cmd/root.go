package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spigell/talent-scout/internal/ai/gemini"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "talent-scout"

	apiKeyEnv     = "GEMINI_API_KEY"
	apiKeyFileEnv = "GEMINI_API_KEY_FILE"

	backendREST = "rest"
	backendSDK  = "sdk"
)

type Config struct {
	Greeting bool          `mapstructure:"greeting"`
	Gemini   *GeminiConfig `mapstructure:"gemini" validate:"required"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key" json:"-"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Endpoint     string `mapstructure:"endpoint" validate:"required,url"`
	Model        string `mapstructure:"model"`
	Backend      string `mapstructure:"backend" validate:"oneof=rest sdk"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talent-scout is a terminal hiring assistant that screens candidates with Gemini",
	}
)

// Execute executes the root command. An interrupt cancels in-flight generation requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	if err := viper.BindEnv("gemini.api-key-file", apiKeyFileEnv); err != nil {
		log.Fatalf("binding %s environment variable: %v", apiKeyFileEnv, err)
	}

	viper.SetDefault("gemini.endpoint", gemini.DefaultEndpoint)
	viper.SetDefault("gemini.backend", backendREST)
	viper.SetDefault("gemini.model", "gemini-pro")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talent-scout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for chat command. Version works without it.
	if chatCmd.CalledAs() == "" {
		return
	}

	// A missing .env is fine; the key may come from the real environment.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config == nil {
		return errors.New("config is required")
	}

	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}
