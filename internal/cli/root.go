package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"docai/config"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
	runID    string
)

var rootCmd = &cobra.Command{
	Use:   "docai [path]",
	Short: "Generate doc comments for the methods of a source file",
	Long: `docai parses a source file, asks a language model to write a doc comment for
every method that has none, and splices the result back into the file.

Supported languages: python, javascript, typescript, tsx, java, kotlin, rust, go,
c, cpp, csharp, haskell. The language is taken from the file extension unless
--language is given.

Example usage:
  docai main.py                      # Document every undocumented method
  docai -l python script             # File without a known extension
  docai src/ --provider ollama       # Document a directory with a local model
  docai main.go --guided --inline    # Confirm each method, add inline comments
  docai inspect main.rs              # List methods and their doc status`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		envLoaded := config.LoadEnv(rootDir)

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg.ApplyEnv()
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		setupLogging(cfg.Logging)
		log.Debug().Bool("dotenv", envLoaded).Str("dir", rootDir).Msg("Configuration loaded")
		return nil
	},
	RunE: runDocument,
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./docai.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "project directory for config and cache (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func setupLogging(lc config.LoggingConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
	if err != nil || lc.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	runID = uuid.NewString()
	if lc.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("run_id", runID).Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: !stderrIsTerminal(),
	}).With().Str("run_id", runID[:8]).Logger()
}

func stderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
