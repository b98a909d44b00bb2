package cmd

import (
	"fmt"
	"os"
	"strings"

	"teacher_savings_portal/internal/infra/config"
	"teacher_savings_portal/internal/infra/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Teachers' savings portal controller report service",
	Long: `Portal reconciles monthly payroll controller reports against the teacher
roster and posts the matched deductions to the savings ledger.

Examples:
  portal migrate
  portal serve
  portal reconcile --file march.xlsx --month 3 --year 2025`,
	Version:       getVersionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file with environment settings (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(serveCmd, reconcileCmd, migrateCmd)
}

// initConfig reads the optional config file. Its keys are exported as environment
// variables unless already set, so config.Load sees them like a .env file.
func initConfig() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
		os.Exit(1)
	}
	for _, key := range viper.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		os.Setenv(name, viper.GetString(key))
	}
}

// loadConfig loads configuration and initializes the global logger.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	if viper.GetBool("verbose") {
		cfg.LogLevel = "debug"
	}
	logger.Init(cfg)
	return cfg, nil
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
