package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgallion1/mdchapter/internal/render"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchFlags struct {
	format   string
	debounce time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-print a document's outline whenever it changes",
	Long: `Watch a file and print its chapter tree each time it is saved.

Parse errors are reported and watching continues. Stop with Ctrl-C.

Examples:
  mdchapter watch draft.md
  mdchapter watch draft.md --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.format, "format", "f", "outline", "output format: json, yaml, html, outline, raw")
	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", 100*time.Millisecond, "wait this long after the last change before re-parsing")
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(watchFlags.format)
	if err != nil {
		return err
	}
	log := newLogger(cmd)

	show := func() error {
		doc, err := loadDocument(cmd, args)
		if err != nil {
			log.Error("parse failed", "file", args[0], "error", err)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "--- %s (%s)\n", args[0], time.Now().Format(time.TimeOnly))
		return render.Write(cmd.OutOrStdout(), format, doc.Nodes)
	}
	if err := show(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchFile(ctx, args[0], watchFlags.debounce, log, show)
}

// watchFile calls onChange after writes to path settle for debounce. The
// parent directory is watched so editors that replace the file on save
// are still seen. It returns when ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, log *slog.Logger, onChange func() error) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.Info("watching", "file", abs, "debounce_ms", debounce.Milliseconds())

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			log.Debug("file event", "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			log.Warn("watcher error", "error", err)

		case <-timer.C:
			if err := onChange(); err != nil {
				return err
			}
		}
	}
}
