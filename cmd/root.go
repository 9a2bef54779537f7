package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "1.3.0"
)

func showBanner() {
	color.New(color.FgCyan, color.Bold).Println("sapgen - procurement dataset generator")
	fmt.Print("Version: ")
	color.New(color.FgYellow).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "sapgen",
	Short: "Generate a synthetic SAP-style procurement dataset",
	Long: `sapgen produces a reproducible multi-table procurement snapshot
(vendor master, material master, contracts, purchase order headers and
lines, goods receipt / invoice history) with realistic spend concentration,
price variance, delivery lateness and seasonality.

Output is one columnar dataset per table, ready for analytics tooling or
for loading straight into PostgreSQL, MySQL or SQLite.`,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("sapgen version %s\n", Version)
			return
		}
		showBanner()
		fmt.Println()
		cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sapgen.config.json)")
	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("sapgen.config")
	}

	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}
