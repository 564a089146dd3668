package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"go-lyred/keymap"
)

func init() {
	rootCmd.AddCommand(keysCmd)
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print the key map of the instrument",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.SetTitle("%s", cfg.Mode)
		t.AppendHeader(table.Row{"Pitch", "Note", "Key"})
		for _, b := range keymap.Bindings(cfg.Mode) {
			t.AppendRow(table.Row{b.Pitch, keymap.PitchName(b.Pitch), keymap.Name(b.Key)})
		}
		fk := cfg.FunctionKeys
		t.AppendFooter(table.Row{"", "play/pause/stop", keymap.Name(fk.Play) + " / " + keymap.Name(fk.Pause) + " / " + keymap.Name(fk.Stop)})
		t.Render()
		return nil
	},
}
