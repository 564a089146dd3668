package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-lyred/config"
	"go-lyred/debug"
	"go-lyred/keymap"
	"go-lyred/track"
)

var (
	flagConfig    string
	flagDebug     bool
	flagDebugFile string
	flagMode      string
	flagTracks    []int
	flagSkipDrums bool
)

var rootCmd = &cobra.Command{
	Use:   "lyred",
	Short: "Play MIDI files on in-game instruments",
	Long: `lyred plays a MIDI file by pressing the keys of an in-game instrument
(a 21-key lyre or a 36-key piano) at the right moments.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagDebug {
			return debug.Enable(flagDebugFile)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default ~/.config/go-lyred/config.json)")
	pf.BoolVar(&flagDebug, "debug", false, "write a debug log")
	pf.StringVar(&flagDebugFile, "debug-file", "", "debug log path (default ~/.config/go-lyred/debug.log)")
	pf.StringVar(&flagMode, "mode", "", "instrument layout: lyre or piano (default from config)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// addTrackFlags registers the track selection flags on commands that read a
// MIDI file
func addTrackFlags(cmd *cobra.Command) {
	cmd.Flags().IntSliceVar(&flagTracks, "tracks", nil, "only merge these track numbers (see 'lyred tracks')")
	cmd.Flags().BoolVar(&flagSkipDrums, "skip-drums", false, "ignore the percussion channel")
}

func trackOptions() track.Options {
	return track.Options{Tracks: flagTracks, SkipDrums: flagSkipDrums}
}

// loadConfig reads the config file and applies --mode. It returns the path
// so callers can watch it.
func loadConfig() (*config.Config, string, error) {
	path := flagConfig
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, "", fmt.Errorf("config: %w", err)
	}
	if flagMode != "" {
		m, err := keymap.ParseMode(flagMode)
		if err != nil {
			return nil, "", err
		}
		cfg.Mode = m
	}
	return cfg, path, nil
}
