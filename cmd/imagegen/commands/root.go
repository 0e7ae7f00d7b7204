package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "imagegen",
	Short:         "Generate images through the relay endpoint",
	Long:          `Sends prompts to the image relay, prints the stored image URL and optionally saves the image locally.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("endpoint", "http://localhost:8080", "Base URL of the relay endpoint")
	rootCmd.PersistentFlags().String("client-key", "", "Client API key sent as CLIENT-API-Key")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Overall request timeout (0 = none)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	viper.BindPFlag("client-key", rootCmd.PersistentFlags().Lookup("client-key"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}
