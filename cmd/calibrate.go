package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"go-lyred/calibrate"
	"go-lyred/track"
)

var flagRange int

func init() {
	rootCmd.AddCommand(calibrateCmd)
	addTrackFlags(calibrateCmd)
	calibrateCmd.Flags().IntVar(&flagRange, "range", 0, "try offsets in [-range, range] (default from config)")
}

var calibrateCmd = &cobra.Command{
	Use:   "calibrate <file.mid>",
	Short: "Show the hit rate of every offset",
	Long: `Show, for every transposition in a range, the share of notes that land on
a key of the instrument, and pick the best one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		span := cfg.CalibrateRange
		if cmd.Flags().Changed("range") {
			span = flagRange
		}

		tr, err := track.Load(args[0], trackOptions())
		if err != nil {
			return err
		}
		results := calibrate.Sweep(tr, cfg.Mode, -span, span)
		best := calibrate.Best(tr, cfg.Mode, -span, span)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s notes, %s, mode %s\n\n", tr.Name,
			humanize.Comma(int64(tr.Len())), durafmt.Parse(tr.End()).LimitFirstN(2), cfg.Mode)

		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Offset", "Hit rate", "Playable", ""})
		for _, r := range results {
			playable := int64(r.HitRate*float64(tr.Len()) + 0.5)
			row := table.Row{
				fmt.Sprintf("%+d", r.Offset),
				fmt.Sprintf("%.2f%%", r.HitRate*100),
				humanize.Comma(playable),
				strings.Repeat("█", int(r.HitRate*20)),
			}
			if r.Offset == best.Offset {
				for i := range row {
					row[i] = text.FgGreen.Sprint(row[i])
				}
			}
			t.AppendRow(row)
		}
		t.AppendFooter(table.Row{"best", fmt.Sprintf("%+d", best.Offset), fmt.Sprintf("%.2f%%", best.HitRate*100), ""})
		t.Render()
		return nil
	},
}
