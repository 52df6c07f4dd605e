package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/pipeline"
	"github.com/blackwell-systems/bookpipe/internal/tui"
)

// batchFunc runs one download or upload batch.
type batchFunc func(ctx context.Context) ([]pipeline.Result, error)

// hooks are the progress callbacks shared by Downloader and Uploader.
type hooks struct {
	start    *func(index, total int, rec catalog.BookRecord)
	progress *func(id string, read, total int64)
	result   *func(pipeline.Result)
}

func downloaderHooks(d *pipeline.Downloader) hooks {
	return hooks{start: &d.OnStart, progress: &d.OnProgress, result: &d.OnResult}
}

func uploaderHooks(u *pipeline.Uploader) hooks {
	return hooks{start: &u.OnStart, result: &u.OnResult}
}

// runBatch executes run with a progress bar on a TTY, or with one line per
// record otherwise.
func runBatch(ctx context.Context, cmd *cobra.Command, label string, h hooks, run batchFunc) ([]pipeline.Result, error) {
	if tui.ShouldUseTUI(cmd) {
		return runBatchTUI(ctx, label, h, run)
	}

	*h.start = func(index, total int, rec catalog.BookRecord) {
		fmt.Printf("[%d/%d] %s\n", index+1, total, rec.Title)
	}
	*h.result = printResult
	return run(ctx)
}

func runBatchTUI(parent context.Context, label string, h hooks, run batchFunc) ([]pipeline.Result, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	events := make(chan tui.ProgressEvent, 64)
	send := func(ev tui.ProgressEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	*h.start = func(index, total int, rec catalog.BookRecord) {
		send(tui.ProgressEvent{Index: index, Total: total, Title: rec.Title})
	}
	if h.progress != nil {
		*h.progress = func(_ string, read, total int64) {
			select {
			case events <- tui.ProgressEvent{Read: read, Size: total}:
			default:
				// Channel full, skip this update
			}
		}
	}
	*h.result = func(r pipeline.Result) {
		send(tui.ProgressEvent{Done: true, OK: r.OK, Line: resultLine(r)})
	}

	type outcome struct {
		results []pipeline.Result
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		results, err := run(ctx)
		close(events)
		done <- outcome{results, err}
	}()

	if err := tui.ShowProgress(label, events); err != nil {
		cancel()
		out := <-done
		if errors.Is(err, tui.ErrCancelled) {
			return out.results, err
		}
		return out.results, fmt.Errorf("progress display: %w", err)
	}
	out := <-done
	for _, r := range out.results {
		printResult(r)
	}
	return out.results, out.err
}

func resultLine(r pipeline.Result) string {
	name := r.Title
	if name == "" {
		name = r.ID
	}
	if !r.OK {
		return fmt.Sprintf("%s: %s", name, r.Reason)
	}
	if r.Bytes > 0 {
		return fmt.Sprintf("%s (%s)", name, humanize.Bytes(uint64(r.Bytes)))
	}
	return name
}

func printResult(r pipeline.Result) {
	if r.OK {
		ok("%s", resultLine(r))
		if r.Path != "" {
			fmt.Printf("    %s\n", color.HiBlackString(r.Path))
		}
		return
	}
	failed("%s", resultLine(r))
}

// printCounts prints the batch summary line.
func printCounts(verb string, results []pipeline.Result) {
	if len(results) == 0 {
		return
	}
	okN, failN := pipeline.Counts(results)
	line := fmt.Sprintf("%s %d, failed %d", verb, okN, failN)
	if failN > 0 {
		fmt.Println(color.YellowString(line))
		return
	}
	fmt.Println(color.GreenString(line))
}
