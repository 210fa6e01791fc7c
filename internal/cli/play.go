package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subview/internal/logging"
	"github.com/mgpai22/subview/internal/playback"
	"github.com/mgpai22/subview/internal/subtitle"
	"github.com/mgpai22/subview/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play [subtitle_file]",
	Short: "Play an SRT file in sync with a running clock",
	Long: `Play the subtitles of an SRT file against a clock that starts when
playback starts.

The transcript follows the active subtitle until you scroll by hand; press f
to follow again. The trim (+/-) shifts the clock and takes effect the next
time playback is started with space. Enter restarts playback from the
selected line.

When standard output is not a terminal, or with --plain, each subtitle is
printed as a line when it becomes active.

Examples:
  subview play movie.srt
  subview play movie.srt --offset -2500 --autostart
  subview play movie.srt --from 42
  subview play movie.srt --plain | tee transcript.log`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().
		Int64P("offset", "t", 0, "Clock trim in milliseconds applied when playback starts")
	playCmd.Flags().
		Int("from", 0, "Start playback at the subtitle with this id")
	playCmd.Flags().
		Bool("autostart", false, "Start playback immediately")
	playCmd.Flags().
		Bool("plain", false, "Print active subtitles as lines instead of the interactive view")
	playCmd.Flags().
		Bool("no-follow", false, "Do not scroll the transcript to the active subtitle")
}

func runPlay(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]

	offset, _ := cmd.Flags().GetInt64("offset")
	fromID, _ := cmd.Flags().GetInt("from")
	autostart, _ := cmd.Flags().GetBool("autostart")
	plain, _ := cmd.Flags().GetBool("plain")
	noFollow, _ := cmd.Flags().GetBool("no-follow")

	if !cmd.Flags().Changed("offset") {
		offset = cfg.OffsetMs
	}
	if clamped := cfg.ClampOffset(offset); clamped != offset {
		logger.Warnw("Trim outside allowed range, clamping",
			"offset_ms", offset,
			"limit_ms", cfg.OffsetLimitMs,
		)
		offset = clamped
	}
	autostart = autostart || cfg.Autostart
	plain = plain || !isTerminal(os.Stdout)

	records, err := subtitle.Load(subtitlePath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no subtitles found in %s", subtitlePath)
	}

	logger.Infow("Loaded subtitles",
		"file", subtitlePath,
		"count", len(records),
		"offset_ms", offset,
	)

	// the interactive view owns the terminal, so logs go to a file there
	playLogger := logger
	if !plain {
		playLogger, err = logging.NewFileLogger(verbose, cfg.LogFile)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
	}
	defer func() { _ = playLogger.Sync() }()

	driver, err := playback.New(records, playback.WithLogger(playLogger.Named("playback")))
	if err != nil {
		return fmt.Errorf("failed to prepare playback: %w", err)
	}
	defer driver.Close()

	driver.AdjustOffset(offset)

	seeked := false
	if cmd.Flags().Changed("from") {
		rec, ok := findRecord(records, fromID)
		if !ok {
			return fmt.Errorf("no subtitle with id %d in %s", fromID, subtitlePath)
		}
		if err := driver.Seek(rec); err != nil {
			return fmt.Errorf("failed to seek: %w", err)
		}
		seeked = true
	}

	if plain {
		return playPlain(driver, seeked)
	}

	model := tui.NewModel(driver, tui.Options{
		AutoFollow:    cfg.AutoFollow && !noFollow,
		Autostart:     autostart && !seeked,
		OffsetStepMs:  cfg.OffsetStepMs,
		OffsetLimitMs: cfg.OffsetLimitMs,
		Logger:        playLogger.Named("view"),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running viewer: %w", err)
	}
	return nil
}

// playPlain has no controls, so playback always starts right away.
func playPlain(driver *playback.Driver, seeked bool) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if !seeked {
		if err := driver.Start(); err != nil {
			return err
		}
	}
	return tui.RunPlain(ctx, driver, os.Stdout)
}

// findRecord returns the first record declaring id.
func findRecord(records []subtitle.Record, id int) (subtitle.Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return subtitle.Record{}, false
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
