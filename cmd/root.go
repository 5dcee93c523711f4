package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lto-cli/api"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	outputJSON    bool
	outputCompact bool
	cfg           Config
	client        = api.NewClient()
	logger        = zap.NewNop()
)

type Config struct {
	APIBaseURL         string `json:"api_base_url"`
	DefaultTransaction string `json:"default_transaction"`
	Environment        string `json:"environment"`
}

var rootCmd = &cobra.Command{
	Use:   "lto",
	Short: "LTO Naic appointment CLI",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputJSON && outputCompact {
			return fmt.Errorf("choose either --json or --compact")
		}
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(availabilityCmd())
	rootCmd.AddCommand(bookCmd())
	rootCmd.AddCommand(appointmentsCmd())
	rootCmd.AddCommand(adminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON")
	rootCmd.PersistentFlags().BoolVar(&outputCompact, "compact", false, "Output compact text")
}

func initConfig() {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	loaded, err := loadConfig()
	if err == nil {
		cfg = loaded
	}
	if baseURL := os.Getenv("LTO_API_URL"); baseURL != "" {
		cfg.APIBaseURL = baseURL
	}
	if env := os.Getenv("LTO_ENV"); env != "" {
		cfg.Environment = env
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	logger = newLogger(cfg.Environment)
	if cfg.APIBaseURL != "" {
		client.BaseURL = cfg.APIBaseURL
	}
}

func newLogger(env string) *zap.Logger {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	// Tables and prompts own stdout.
	config.OutputPaths = []string{"stderr"}

	built, err := config.Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}

	return built
}

func loadConfig() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Config{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}
	if info.IsDir() {
		return Config{}, fmt.Errorf("config path is a directory: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var conf Config
	if err := json.NewDecoder(file).Decode(&conf); err != nil {
		return Config{}, err
	}
	return conf, nil
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "lto", "config.json"), nil
}
