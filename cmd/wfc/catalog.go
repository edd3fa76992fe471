package main

import (
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var catalogPatternSize int

var catalogCmd = &cobra.Command{
	Use:   "catalog [sample]",
	Short: "Print the patterns learned from a sample as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := loadProfile(profilePath)
		if err != nil {
			return err
		}
		sample := profile.Sample
		if len(args) > 0 {
			sample = args[0]
		}
		size := profile.Generator.PatternSize
		if cmd.Flags().Changed("pattern-size") {
			size = catalogPatternSize
		}
		return runCatalog(cmd.OutOrStdout(), sample, size)
	},
}

func init() {
	catalogCmd.Flags().IntVarP(&catalogPatternSize, "pattern-size", "n", 3, "pattern side")
	rootCmd.AddCommand(catalogCmd)
}

type catalogDump struct {
	Size     int        `yaml:"size"`
	Digest   string     `yaml:"digest"`
	Patterns [][]string `yaml:"patterns"`
}

func runCatalog(out io.Writer, sample string, size int) error {
	catalog, err := catalogFor(sample, size)
	if err != nil {
		return err
	}

	dump := catalogDump{
		Size:     catalog.Size(),
		Digest:   catalog.Digest(),
		Patterns: make([][]string, 0, catalog.Len()),
	}
	for _, p := range catalog.Patterns() {
		dump.Patterns = append(dump.Patterns, p.Rows())
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(dump); err != nil {
		return err
	}
	return enc.Close()
}
