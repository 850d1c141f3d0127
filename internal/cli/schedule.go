package cli

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"imgpyramid/pkg/schedule"
)

var (
	scheduleLevels  int
	scheduleDims    int
	scheduleFactors []int

	scheduleCmd = &cobra.Command{
		Use:   "schedule",
		Short: "print the shrink factor table for a configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := schedule.New(scheduleLevels, scheduleDims)
			if len(scheduleFactors) > 0 {
				if err := s.SetStartingShrinkFactors(scheduleFactors); err != nil {
					return fmt.Errorf("invalid starting factors: %w", err)
				}
			}

			table := s.Factors()
			wr := tabwriter.NewWriter(os.Stdout, 4, 4, 2, ' ', 0)
			header := "level"
			for d := 0; d < s.Dimensions(); d++ {
				header += fmt.Sprintf("\tdim %d", d)
			}
			_, _ = fmt.Fprintln(wr, header)
			for l, row := range table {
				line := fmt.Sprintf("%d", l)
				for _, f := range row {
					line += fmt.Sprintf("\t%d", f)
				}
				_, _ = fmt.Fprintln(wr, line)
			}
			if err := wr.Flush(); err != nil {
				log.Printf("error flushing table: %v", err)
			}

			fmt.Printf("downward divisible: %v\n", schedule.IsDownwardDivisible(table))
			return nil
		},
	}
)

func init() {
	scheduleCmd.Flags().IntVar(&scheduleLevels, "levels", 3, "number of pyramid levels")
	scheduleCmd.Flags().IntVar(&scheduleDims, "dims", 2, "number of spatial dimensions")
	scheduleCmd.Flags().IntSliceVar(&scheduleFactors, "factors", nil, "starting shrink factors per dimension")

	rootCmd.AddCommand(scheduleCmd)
}
