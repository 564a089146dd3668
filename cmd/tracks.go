package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"go-lyred/track"
)

func init() {
	rootCmd.AddCommand(tracksCmd)
}

var tracksCmd = &cobra.Command{
	Use:   "tracks <file.mid>",
	Short: "List the tracks of a MIDI file",
	Long:  `List the tracks of a MIDI file, for use with --tracks.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		infos, err := track.Tracks(args[0])
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "Name", "Notes", "Channels", "Length"})
		for _, info := range infos {
			channels := lo.Map(info.Channels, func(ch uint8, _ int) string {
				if ch == track.DrumChannel {
					return "10 (drums)"
				}
				return fmt.Sprint(ch + 1)
			})
			length := "-"
			if info.Notes > 0 {
				length = durafmt.Parse(info.Duration).LimitFirstN(2).String()
			}
			t.AppendRow(table.Row{info.Number, info.Name, humanize.Comma(int64(info.Notes)), strings.Join(channels, ", "), length})
		}
		t.Render()
		return nil
	},
}
