package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kilianp07/workplan/app"
	"github.com/kilianp07/workplan/infra/logger"
)

var watchFlags scheduleFlags

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the schedule whenever the task file changes",
	RunE:  runWatch,
}

func init() {
	addScheduleFlags(watchCmd, &watchFlags)
	rootCmd.AddCommand(watchCmd)
}

// debounce collapses the burst of events editors emit on save.
const debounce = 200 * time.Millisecond

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := watchFlags.apply(cfg); err != nil {
		return err
	}
	log := logger.New("watch")

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer func() { _ = w.Close() }()
	// Watch the directory: editors often replace the file on save.
	target, err := filepath.Abs(cfg.Tasks.Path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	return withService(cfg, func(svc *app.Service) error {
		rerun := func() {
			if err := scheduleOnce(ctx, cmd.OutOrStdout(), svc, cfg, watchFlags.daily); err != nil {
				log.Errorf("schedule: %v", err)
			}
		}
		rerun()
		log.Infof("watching %s", target)

		var timer <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				timer = time.After(debounce)
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				log.Warnf("watcher: %v", err)
			case <-timer:
				timer = nil
				log.Infof("%s changed, re-running", target)
				rerun()
			}
		}
	})
}
