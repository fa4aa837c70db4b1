package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gundriai/merovote-app/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootCmd = &cobra.Command{
		Use:   "merovote",
		Short: "MeroVote polling client",
		Long: `A client for the MeroVote polling platform: browse the poll feed,
vote, comment and react from the terminal, and serve a local admin dashboard.`,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
}

func GetConfig() *config.Config {
	return cfg
}
