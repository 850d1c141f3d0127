package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"imgpyramid/internal/imageio"
	"imgpyramid/internal/models"
	"imgpyramid/pkg/config"
	"imgpyramid/pkg/metrics"
	"imgpyramid/pkg/pyramid"
	"imgpyramid/pkg/schedule"
)

var (
	buildInput    string
	buildConfig   string
	buildOutput   string
	buildFormat   string
	buildLevels   int
	buildFactors  []int
	buildMaxError float64
	buildWorkers  int
	buildStats    bool

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "build a pyramid from an input image",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(buildConfig)
			if err != nil {
				return err
			}

			// Flags set on the command line win over the config file.
			if cmd.Flags().Changed("levels") {
				cfg.Pyramid.Levels = buildLevels
			}
			if cmd.Flags().Changed("factors") {
				cfg.Pyramid.StartingFactors = buildFactors
			}
			if cmd.Flags().Changed("max-error") {
				cfg.Pyramid.MaxError = buildMaxError
			}
			if cmd.Flags().Changed("workers") {
				cfg.Processing.NumWorkers = buildWorkers
			}
			if cmd.Flags().Changed("output") {
				cfg.Output.Dir = buildOutput
			}
			if cmd.Flags().Changed("format") {
				cfg.Output.Format = buildFormat
			}
			if cmd.Flags().Changed("stats") {
				cfg.Output.Stats = buildStats
			}

			return runBuild(buildInput, cfg)
		},
	}
)

func init() {
	buildCmd.Flags().StringVarP(&buildInput, "input", "i", "", "input image (JPEG or PNG)")
	buildCmd.Flags().StringVarP(&buildConfig, "config", "c", "imgpyramid.yaml", "config file")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "pyramid_levels", "output directory")
	buildCmd.Flags().StringVar(&buildFormat, "format", "jpeg", "output image format (jpeg or png)")
	buildCmd.Flags().IntVar(&buildLevels, "levels", 3, "number of pyramid levels")
	buildCmd.Flags().IntSliceVar(&buildFactors, "factors", nil, "starting shrink factors per dimension")
	buildCmd.Flags().Float64Var(&buildMaxError, "max-error", 0.01, "smoothing kernel truncation error bound")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "smoothing worker count (0 = all CPUs)")
	buildCmd.Flags().BoolVar(&buildStats, "stats", false, "print per-level statistics")
	_ = buildCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(inputPath string, cfg *config.Config) error {
	fmt.Printf("Loading input image %s...\n", inputPath)
	input, err := imageio.LoadGray(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}
	fmt.Printf("Loaded %dx%d image\n", input.Meta.Extent[1], input.Meta.Extent[0])

	g := pyramid.NewGenerator(2)
	g.SetNumberOfLevels(cfg.Pyramid.Levels)
	if len(cfg.Pyramid.StartingFactors) > 0 {
		if err := g.SetStartingShrinkFactors(cfg.Pyramid.StartingFactors); err != nil {
			return fmt.Errorf("invalid starting factors: %w", err)
		}
	}
	g.SetMaximumError(cfg.Pyramid.MaxError)
	g.SetNumWorkers(cfg.Processing.NumWorkers)
	if err := g.SetInput(input); err != nil {
		return err
	}

	table := g.GetSchedule()
	fmt.Printf("Schedule (%d levels, downward divisible: %v):\n",
		g.GetNumberOfLevels(), schedule.IsDownwardDivisible(table))
	for l, row := range table {
		fmt.Printf("  level %d: %v\n", l, row)
	}

	fmt.Println("Building pyramid...")
	start := time.Now()
	outputs, err := g.Update()
	if err != nil {
		return err
	}
	fmt.Printf("Pyramid built in %.2f seconds\n", time.Since(start).Seconds())

	for l, out := range outputs {
		name := fmt.Sprintf("level_%02d.%s", l, extensionFor(cfg.Output.Format))
		path := filepath.Join(cfg.Output.Dir, name)
		if err := imageio.SaveGray(out, path, cfg.Output.Format); err != nil {
			return fmt.Errorf("failed to save level %d: %w", l, err)
		}
		fmt.Printf("  level %d: %v -> %s\n", l, out.Meta.Extent, path)
	}

	if cfg.Output.Stats {
		printStats(outputs)
	}
	return nil
}

func extensionFor(format string) string {
	if format == "png" {
		return "png"
	}
	return "jpg"
}

func printStats(outputs []*models.Image) {
	wr := tabwriter.NewWriter(os.Stdout, 4, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(wr, "level\textent\tmean\tstddev\tmin\tmax")
	for l, out := range outputs {
		s := metrics.Stats(out)
		_, _ = fmt.Fprintf(wr, "%d\t%v\t%.4f\t%.4f\t%.4f\t%.4f\n",
			l, out.Meta.Extent, s.Mean, s.StdDev, s.Min, s.Max)
	}
	if err := wr.Flush(); err != nil {
		log.Printf("error flushing stats table: %v", err)
	}
}
