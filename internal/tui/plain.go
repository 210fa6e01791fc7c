package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/mgpai22/subview/internal/playback"
	"github.com/mgpai22/subview/internal/subtitle"
)

// RunPlain prints each newly active record as a line on w until ctx is done.
// It is the display used when output is not a terminal.
func RunPlain(ctx context.Context, driver *playback.Driver, w io.Writer) error {
	records := driver.Records()

	changes := make(chan playback.Transition, 16)
	unsubscribe := driver.Subscribe(func(tr playback.Transition) {
		select {
		case changes <- tr:
		default:
		}
	})
	defer unsubscribe()

	// a record made active before subscribing, e.g. by an initial seek. A
	// tick between Subscribe and this read is queued as well, so the queued
	// copy of the printed record is skipped.
	last := -1
	if idx, ok := driver.ActiveIndex(); ok {
		if err := printRecord(w, records[idx]); err != nil {
			return err
		}
		last = idx
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case tr := <-changes:
			if tr.Index == last {
				continue
			}
			if err := printRecord(w, records[tr.Index]); err != nil {
				return err
			}
			last = tr.Index
		}
	}
}

func printRecord(w io.Writer, r subtitle.Record) error {
	_, err := fmt.Fprintf(w, "[%s] %s\n", r.StartTime, r.Text)
	return err
}
