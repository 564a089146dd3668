package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-lyred/midi"
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	Long:  `List MIDI output ports usable by the midi injector (--injector midi --port NAME).`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "(waiting up to 3 seconds...)")
		names, err := midi.OutPorts()
		if err != nil {
			return fmt.Errorf("%w (on macOS: sudo killall coreaudiod midiserver)", err)
		}
		if len(names) == 0 {
			fmt.Fprintln(out, "no MIDI output ports")
			return nil
		}
		for i, n := range names {
			fmt.Fprintf(out, "  %d: %s\n", i, n)
		}
		return nil
	},
}
