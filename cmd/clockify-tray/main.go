package main

import (
	"fmt"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"

	"github.com/clockworkpc/clockify/internal/api"
	"github.com/clockworkpc/clockify/internal/config"
	"github.com/clockworkpc/clockify/internal/pomodoro"
	"github.com/clockworkpc/clockify/internal/tracker"
	"github.com/clockworkpc/clockify/internal/tray"
)

func main() {
	store := config.NewStore("")
	cfg, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if missing := cfg.MissingKeys(); len(missing) > 0 {
		fmt.Fprintln(os.Stderr, "Error: missing required configuration, run the CLI first to configure it")
		os.Exit(1)
	}

	release, err := tray.AcquireLock(store.LockPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer release()

	gw := api.NewClient(cfg.Token, cfg.WorkspaceID)
	monitor := tray.NewMonitor(gw, cfg)
	trk := tracker.New(gw, store, cfg, pomodoro.New(), os.Stdout)

	fyneApp := app.New()
	desk, ok := fyneApp.(desktop.App)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: system tray not supported on this platform")
		os.Exit(1)
	}

	statusItem := fyne.NewMenuItem("Not tracking", nil)
	statusItem.Disabled = true
	projectItem := fyne.NewMenuItem("", nil)
	projectItem.Disabled = true
	toggleItem := fyne.NewMenuItem("Start tracking", nil)
	toggleItem.Action = func() {
		go func() {
			var err error
			if monitor.Tracking() {
				err = trk.Stop()
			} else {
				err = trk.Start("", "", "")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
			monitor.Poll()
		}()
	}

	menu := fyne.NewMenu("Clockify",
		statusItem,
		projectItem,
		fyne.NewMenuItemSeparator(),
		toggleItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			fyneApp.Quit()
		}),
	)
	desk.SetSystemTrayMenu(menu)
	desk.SetSystemTrayIcon(theme.HistoryIcon())

	refresh := func() {
		label := monitor.StatusLabel()
		if monitor.Tracking() {
			label = fmt.Sprintf("%s  %s", monitor.ElapsedLabel(), label)
		}
		statusItem.Label = label
		projectItem.Label = monitor.ProjectLabel()
		toggleItem.Label = monitor.ToggleLabel()
		menu.Refresh()
	}

	// Remote polling is slow and cheap on the service; the elapsed label
	// ticks every second from the cached start time.
	go func() {
		monitor.Poll()
		fyne.Do(refresh)
		poll := time.NewTicker(tray.PollInterval)
		display := time.NewTicker(tray.DisplayInterval)
		defer poll.Stop()
		defer display.Stop()
		for {
			select {
			case <-poll.C:
				monitor.Poll()
				fyne.Do(refresh)
			case <-display.C:
				fyne.Do(refresh)
			}
		}
	}()

	fyneApp.Run()
}
