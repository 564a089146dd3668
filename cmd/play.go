package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-lyred/config"
	"go-lyred/debug"
	"go-lyred/inject"
	"go-lyred/midi"
	"go-lyred/sequencer"
	"go-lyred/theme"
	"go-lyred/tui"
)

var (
	flagOffset   int
	flagSpeed    float64
	flagInjector string
	flagPort     string
	flagPalette  string
	flagHeadless bool
)

func init() {
	rootCmd.AddCommand(playCmd)
	addTrackFlags(playCmd)
	f := playCmd.Flags()
	f.IntVar(&flagOffset, "offset", 0, "transposition in semitones (default: none, 'a' in the player finds one)")
	f.Float64Var(&flagSpeed, "speed", 1.0, "playback speed multiplier")
	f.StringVar(&flagInjector, "injector", "", "key injector: log, midi or serial (default from config)")
	f.StringVar(&flagPort, "port", "", "MIDI or serial port for the injector")
	f.StringVar(&flagPalette, "palette", "", "GIMP palette (.gpl) for the player colors")
	f.BoolVar(&flagHeadless, "headless", false, "play once without the TUI, printing key events")
}

var playCmd = &cobra.Command{
	Use:   "play <file.mid>",
	Short: "Open the player for a MIDI file",
	Long: `Open the player for a MIDI file. Play, pause and stop with the function
keys (Space, Backspace, Ctrl by default; see the config file).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		applyPlayFlags(cmd, cfg)

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		var out io.Writer
		if flagHeadless {
			out = cmd.OutOrStdout()
		}
		inj, closeInj, err := openInjector(ctx, cfg, out)
		if err != nil {
			return err
		}
		defer closeInj()

		mgr := sequencer.NewManager(inj)
		mgr.SetMode(cfg.Mode)
		mgr.State().SetSpeed(cfg.Speed)
		mgr.Scheduler().SetStopPolicy(stopPolicy(cfg))
		if err := mgr.Open(args[0], trackOptions()); err != nil {
			return err
		}
		if cmd.Flags().Changed("offset") {
			mgr.SetOffset(flagOffset)
		}

		done := mgr.StartRuntime(ctx)

		if flagHeadless {
			err = playHeadless(ctx, cmd.OutOrStdout(), mgr)
		} else {
			err = runTUI(ctx, mgr, cfg, path)
		}

		// held keys go up through the injector before it is closed
		mgr.Stop()
		cancel()
		<-done
		return err
	},
}

// applyPlayFlags lets explicit flags override the config file
func applyPlayFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("speed") {
		cfg.Speed = flagSpeed
	}
	if f.Changed("injector") {
		cfg.Injector = flagInjector
	}
	if f.Changed("port") {
		cfg.MIDIPort = flagPort
		cfg.SerialPort = flagPort
	}
	if cfg.Speed == 0 {
		cfg.Speed = 1.0
	}
}

func stopPolicy(cfg *config.Config) sequencer.StopPolicy {
	if cfg.StopRewinds {
		return sequencer.StopRewind
	}
	return sequencer.StopHold
}

// openInjector builds the configured injector. out receives dry-run lines
// for the log injector; nil sends them to the debug log only. The MIDI
// injector keeps following its port until ctx ends.
func openInjector(ctx context.Context, cfg *config.Config, out io.Writer) (inject.Injector, func(), error) {
	kind, err := inject.ParseKind(cfg.Injector)
	if err != nil {
		return nil, nil, err
	}
	switch kind {
	case inject.KindMIDI:
		m, err := inject.OpenMIDI(cfg.MIDIPort, cfg.MIDIChannel)
		if errors.Is(err, midi.ErrNoPort) {
			debug.Warn("inject", "%v; waiting for it", err)
			m = inject.NewMIDI(cfg.MIDIChannel)
		} else if err != nil {
			return nil, nil, err
		}
		w := midi.NewPortWatcher(cfg.MIDIPort)
		go w.Run(ctx)
		go m.Follow(ctx, w.Events())
		return m, func() { m.Close() }, nil
	case inject.KindSerial:
		if cfg.SerialPort == "" {
			return nil, nil, fmt.Errorf("serial injector needs a port (--port or serialPort in config)")
		}
		s, err := inject.OpenSerial(cfg.SerialPort, cfg.SerialBaud)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
	return inject.NewLog(out), func() {}, nil
}

func runTUI(ctx context.Context, mgr *sequencer.Manager, cfg *config.Config, cfgPath string) error {
	th := theme.New(theme.Default())
	if flagPalette != "" {
		p, err := theme.LoadGPL(flagPalette)
		if err != nil {
			return err
		}
		th = theme.New(p)
	}

	p := tea.NewProgram(tui.NewModel(mgr, th, cfg), tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		err := config.Watch(ctx, cfgPath, func(c *config.Config) {
			p.Send(tui.ConfigMsg{Config: c})
		})
		if err != nil {
			debug.Warn("config", "not watching %s: %v", cfgPath, err)
		}
	}()

	_, err := p.Run()
	if err == tea.ErrProgramKilled && ctx.Err() != nil {
		return nil
	}
	return err
}

// playHeadless plays the track once from the start and returns at the end
// or on interrupt
func playHeadless(ctx context.Context, out io.Writer, mgr *sequencer.Manager) error {
	st := mgr.State()
	fmt.Fprintf(out, "playing %s (%s, offset %+d, hit %.2f%%)\n",
		mgr.Track().Name, st.Mode(), st.Offset(), st.HitRate()*100)

	mgr.Play()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if st.Finished() > 0 {
				fmt.Fprintf(out, "done, %d keys refused\n", mgr.Scheduler().Failures())
				return nil
			}
		}
	}
}
