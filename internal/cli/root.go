package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/reliefboard/internal/model"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

var (
	cfgFile string
	envFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reliefboard",
	Short: "Reliefboard - keep a Trello board in sync with ReliefWeb",
	Long: `Reliefboard reconciles ReliefWeb countries, disasters and topics onto
Trello boards.

Every run reads the current upstream collection and the current board,
then writes only what differs: new cards for new entities, field, label
and checklist updates for changed ones, and archival for entities that
are gone. Running it twice in a row writes nothing the second time.

Labels and lists that reliefboard does not manage are never touched.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("reliefboard %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.reliefboard/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with TRELLO_KEY / TRELLO_TOKEN")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	// A missing .env file is fine; credentials may come from the environment
	if envFile != "" {
		if err := godotenv.Load(envFile); err == nil && verbose {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".reliefboard"))
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// RELIEFBOARD_BOARD_KEY overrides board.key, and so on
	viper.SetEnvPrefix("RELIEFBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("debug", "RELIEFBOARD_DEBUG")
	_ = viper.BindEnv("board.key", "RELIEFBOARD_BOARD_KEY", "TRELLO_KEY")
	_ = viper.BindEnv("board.token", "RELIEFBOARD_BOARD_TOKEN", "TRELLO_TOKEN")
	_ = viper.BindEnv("upstream.appname", "RELIEFBOARD_UPSTREAM_APPNAME")
	for _, kind := range []string{"countries", "disasters", "topics"} {
		key := "connectors." + kind + ".board_id"
		_ = viper.BindEnv(key, "RELIEFBOARD_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig overlays the config file and environment on the defaults.
// A configured list replaces the default one whole: merging element by element
// would leak default fields, such as a label color, into configured entries.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	replaceSlices := viper.DecoderConfigOption(func(c *mapstructure.DecoderConfig) {
		c.ZeroFields = true
	})
	if err := viper.Unmarshal(cfg, replaceSlices); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if viper.GetBool("verbose") {
		cfg.Debug = true
	}
	return cfg, nil
}
