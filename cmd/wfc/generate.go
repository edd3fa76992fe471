package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vancomm/wfc-server/internal/grid"
	"github.com/vancomm/wfc-server/internal/wfc"
)

var errAbandoned = errors.New("generation abandoned")

type generateOptions struct {
	width, height int
	seed          uint64
	sample        string
	patternSize   int
	backtracking  *bool
	strict        bool
}

var generateFlags generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a map and print it",
	Long: `Generates a width x height map from the patterns of a sample map, or from
the built-in sample when none is given. The same seed always gives the
same map.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := loadProfile(profilePath)
		if err != nil {
			return err
		}

		opts := generateFlags
		flags := cmd.Flags()
		if !flags.Changed("width") {
			opts.width = profile.Width
		}
		if !flags.Changed("height") {
			opts.height = profile.Height
		}
		if !flags.Changed("sample") {
			opts.sample = profile.Sample
		}
		if flags.Changed("backtracking") {
			b, _ := flags.GetBool("backtracking")
			opts.backtracking = &b
		}

		return runGenerate(cmd.OutOrStdout(), cmd.ErrOrStderr(), profile.Generator, opts)
	},
}

func init() {
	flags := generateCmd.Flags()
	flags.IntVarP(&generateFlags.width, "width", "W", 40, "map width")
	flags.IntVarP(&generateFlags.height, "height", "H", 20, "map height")
	flags.Uint64VarP(&generateFlags.seed, "seed", "s", 1, "random seed")
	flags.StringVar(&generateFlags.sample, "sample", "", "sample map file ('#' wall, '.' floor)")
	flags.IntVarP(&generateFlags.patternSize, "pattern-size", "n", 0, "pattern side, overrides the profile")
	flags.Bool("backtracking", true, "roll back on contradictions")
	flags.BoolVar(&generateFlags.strict, "strict", false, "fail when the search is abandoned")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(out, log io.Writer, cfg wfc.Config, opts generateOptions) error {
	if opts.width < 1 || opts.height < 1 {
		return fmt.Errorf("width and height must be positive (got %dx%d)", opts.width, opts.height)
	}
	if opts.patternSize > 0 {
		cfg.PatternSize = opts.patternSize
	}
	if opts.backtracking != nil {
		cfg.EnableBacktracking = *opts.backtracking
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	catalog, err := catalogFor(opts.sample, cfg.PatternSize)
	if err != nil {
		return err
	}

	g := grid.New(opts.width, opts.height)
	res := wfc.New(cfg).GenerateWithPatterns(g, catalog, opts.seed)

	fmt.Fprint(out, g.String())
	fmt.Fprintf(log,
		"%s: %d patterns, %d collapses, %d contradictions, %d backtracks in %s\n",
		res.State, res.Patterns, res.Collapses, res.Contradictions, res.Backtracks, res.Elapsed,
	)

	if opts.strict && res.State != wfc.Success {
		return errAbandoned
	}
	return nil
}
