package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vancomm/wfc-server/internal/logging"
	"github.com/vancomm/wfc-server/internal/wfc"
)

var (
	profilePath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "wfc",
	Short: "wfc generates tile maps by wave function collapse",
	Long: `wfc learns local wall/floor patterns from a sample map and generates
new maps that only contain those patterns.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Setup(wfc.Log, false); err != nil {
			return err
		}
		wfc.Log.SetOutput(cmd.ErrOrStderr())
		if verbose {
			wfc.Log.SetLevel(logrus.DebugLevel)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profilePath, "profile", "p", "", "YAML generation profile")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every search step")
}
