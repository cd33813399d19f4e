package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/clockworkpc/clockify/internal/api"
	"github.com/clockworkpc/clockify/internal/config"
	"github.com/clockworkpc/clockify/internal/events"
	"github.com/clockworkpc/clockify/internal/pomodoro"
	"github.com/clockworkpc/clockify/internal/selection"
	"github.com/clockworkpc/clockify/internal/tracker"
	"github.com/clockworkpc/clockify/internal/tui"
	"github.com/clockworkpc/clockify/internal/workspace"
)

var (
	flagToken       string
	flagWorkspaceID string
	flagProjectID   string
	flagDescription string
)

// app bundles the wired components for one invocation.
type app struct {
	store *config.Store
	cfg   *config.Config
	gw    *api.Client
	cat   workspace.Catalog
	pom   *pomodoro.Integration
	trk   *tracker.Tracker
	rec   *selection.Reconciler
	log   *events.Store
}

// setup loads configuration, applies flag overrides and wires the
// components. Interactive commands hydrate the workspace snapshot once;
// simple commands read at most the active entry and skip it.
func setup(hydrate bool) (*app, error) {
	store := config.NewStore("")
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}

	if flagToken != "" {
		cfg.Token = flagToken
	}
	if flagWorkspaceID != "" {
		cfg.WorkspaceID = flagWorkspaceID
	}
	if flagProjectID != "" {
		cfg.ProjectID = flagProjectID
	}
	if flagDescription != "" {
		cfg.Description = flagDescription
	}

	if missing := cfg.MissingKeys(); len(missing) > 0 {
		fmt.Fprintln(os.Stderr, "Error: missing required configuration:")
		for _, key := range missing {
			fmt.Fprintf(os.Stderr, "  - %s\n", key)
		}
		fmt.Fprintln(os.Stderr, "\nUse --token and --workspace-id or configure them first.")
		os.Exit(1)
	}

	gw := api.NewClient(cfg.Token, cfg.WorkspaceID)

	var cat workspace.Catalog
	if hydrate {
		snapshot := workspace.NewSnapshot(gw, os.Stdout)
		if err := snapshot.LoadAll(workspace.DefaultTimeEntriesLimit); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load workspace data: %v\n", err)
		}
		cat = snapshot
	} else {
		cat = workspace.NewDirect(gw)
	}

	pom := pomodoro.New()
	trk := tracker.New(gw, store, cfg, pom, os.Stdout)
	rec := selection.New(gw, cat, store, cfg, trk, tui.NewPrompt(), os.Stdout)

	// The event log is best-effort; a broken local database never blocks
	// the timer.
	eventLog, err := events.Open(store.DatabasePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: event log unavailable: %v\n", err)
		eventLog = nil
	}

	return &app{store: store, cfg: cfg, gw: gw, cat: cat, pom: pom, trk: trk, rec: rec, log: eventLog}, nil
}

func (a *app) record(kind string) {
	if a.log == nil {
		return
	}
	if err := a.log.Record(kind, a.cfg.Description, a.cfg.ProjectID, a.cfg.TaskID); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not record event: %v\n", err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

var rootCmd = &cobra.Command{
	Use:   "clockify",
	Short: "Clockify time tracking with break-timer integration",
	Long:  `A command-line client for Clockify: hierarchical client/project/task/description selection, timer control and GNOME Pomodoro coordination.`,
	Run: func(cmd *cobra.Command, args []string) {
		// `clockify --description "..."` with no subcommand changes the
		// description of whatever is being tracked.
		if flagDescription != "" {
			desc := flagDescription
			flagDescription = ""
			a, err := setup(false)
			if err != nil {
				fatal(err)
			}
			if err := a.trk.ChangeDescription(desc); err != nil {
				fatal(err)
			}
			return
		}
		cmd.Help()
	},
}

var startCmd = &cobra.Command{
	Use:     "start",
	Aliases: []string{"resume"},
	Short:   "Start time tracking",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(false)
		if err != nil {
			fatal(err)
		}
		if err := a.trk.Start("", "", ""); err != nil {
			fatal(err)
		}
		a.record(events.KindStart)
	},
}

var stopCmd = &cobra.Command{
	Use:     "stop",
	Aliases: []string{"pause", "complete"},
	Short:   "Stop time tracking",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(false)
		if err != nil {
			fatal(err)
		}
		if err := a.trk.Stop(); err != nil {
			fatal(err)
		}
		a.record(events.KindStop)
	},
}

var skipCmd = &cobra.Command{
	Use:   "skip",
	Short: "Skip the current break-timer session and stop tracking",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(false)
		if err != nil {
			fatal(err)
		}
		if a.pom.IsAvailable() {
			if err := a.pom.Skip(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not skip break-timer session: %v\n", err)
			} else {
				fmt.Println("Break-timer session skipped")
			}
		}
		if err := a.trk.Stop(); err != nil {
			fatal(err)
		}
		a.record(events.KindStop)
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show current tracking status",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(true)
		if err != nil {
			fatal(err)
		}
		if err := runInfo(a); err != nil {
			fatal(err)
		}
	},
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client management",
	Run: func(cmd *cobra.Command, args []string) {
		runClientSelect()
	},
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all clients",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(true)
		if err != nil {
			fatal(err)
		}
		clients, err := a.cat.Clients()
		if err != nil {
			fatal(err)
		}
		if len(clients) == 0 {
			fmt.Println("No clients found")
			return
		}
		fmt.Println("Available Clients:")
		for _, client := range clients {
			fmt.Printf("  %s - %s\n", client.ID, client.Name)
		}
	},
}

var clientSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Interactively select a client",
	Run: func(cmd *cobra.Command, args []string) {
		runClientSelect()
	},
}

func runClientSelect() {
	a, err := setup(true)
	if err != nil {
		fatal(err)
	}
	client, err := a.rec.SelectClientInteractive()
	if err != nil {
		fatal(err)
	}
	if client == nil {
		fmt.Println("Client selection cancelled")
		return
	}
	if err := a.rec.SetClient(client.ID); err != nil {
		fatal(err)
	}
}

var clientSetCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Set the client by name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(true)
		if err != nil {
			fatal(err)
		}
		if err := a.rec.SetClientByName(args[0]); err != nil {
			fatal(err)
		}
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project management",
	Run: func(cmd *cobra.Command, args []string) {
		runProjectSelect()
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"projects"},
	Short:   "List all projects",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(true)
		if err != nil {
			fatal(err)
		}
		projects, err := a.cat.Projects()
		if err != nil {
			fatal(err)
		}
		if len(projects) == 0 {
			fmt.Println("No projects found")
			return
		}
		fmt.Println("Available Projects:")
		for _, project := range projects {
			fmt.Printf("  %s - %s\n", project.ID, project.Name)
		}
	},
}

var projectSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Interactively select a project",
	Run: func(cmd *cobra.Command, args []string) {
		runProjectSelect()
	},
}

func runProjectSelect() {
	a, err := setup(true)
	if err != nil {
		fatal(err)
	}
	project, err := a.rec.SelectProjectInteractive()
	if err != nil {
		fatal(err)
	}
	if project == nil {
		fmt.Println("Project selection cancelled")
		return
	}
	if err := a.rec.SetProject(project.ID); err != nil {
		fatal(err)
	}
}

var projectSetCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Set the project by name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(true)
		if err != nil {
			fatal(err)
		}
		if err := a.rec.SetProjectByName(args[0]); err != nil {
			fatal(err)
		}
	},
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Task and description management",
	Run: func(cmd *cobra.Command, args []string) {
		runTaskSelect()
	},
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"tasks"},
	Short:   "List formal tasks of the current project with their descriptions",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(true)
		if err != nil {
			fatal(err)
		}
		if err := a.rec.ListTasks(); err != nil {
			fatal(err)
		}
	},
}

var taskSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Interactively select a task and description",
	Run: func(cmd *cobra.Command, args []string) {
		runTaskSelect()
	},
}

func runTaskSelect() {
	a, err := setup(true)
	if err != nil {
		fatal(err)
	}
	if err := a.rec.SelectTask(); err != nil {
		fatal(err)
	}
	a.record(events.KindSwitch)
}

var taskSetCmd = &cobra.Command{
	Use:   "set [description]",
	Short: "Set the description for the current task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(true)
		if err != nil {
			fatal(err)
		}
		if a.cfg.TaskID == "" {
			fmt.Fprintln(os.Stderr, "No current task set. Use 'task select' first.")
			os.Exit(1)
		}
		sel := a.cfg.Selection()
		sel.Description = args[0]
		if err := a.rec.Apply(sel, selection.ApplyOptions{StopTimer: true, SnapshotPrevious: true}); err != nil {
			fatal(err)
		}
	},
}

var taskCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a formal task in the current project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(true)
		if err != nil {
			fatal(err)
		}
		if err := a.rec.CreateTask(args[0]); err != nil {
			fatal(err)
		}
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a formal task from the current project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(true)
		if err != nil {
			fatal(err)
		}
		if err := a.rec.DeleteTask(args[0]); err != nil {
			fatal(err)
		}
	},
}

var projectTaskCmd = &cobra.Command{
	Use:   "project-task",
	Short: "Select project, task and description in one flow (auto-updates the client)",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(true)
		if err != nil {
			fatal(err)
		}
		if err := a.rec.SelectProjectTask(); err != nil {
			fatal(err)
		}
		a.record(events.KindSwitch)
	},
}

var switchCmd = &cobra.Command{
	Use:   "switch",
	Short: "Switch back to the previous selection (like 'cd -')",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(false)
		if err != nil {
			fatal(err)
		}
		if err := a.rec.SwitchToPrevious(); err != nil {
			fatal(err)
		}
		a.record(events.KindSwitch)
	},
}

var pomodoroCmd = &cobra.Command{
	Use:   "pomodoro [start|stop|pause|resume|skip|status|sync]",
	Short: "Break-timer control",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setup(false)
		if err != nil {
			fatal(err)
		}
		if !a.pom.IsAvailable() {
			fmt.Println("Break-timer integration not available")
			return
		}

		var actionErr error
		switch args[0] {
		case "start":
			actionErr = a.pom.Start()
		case "stop":
			actionErr = a.pom.Stop()
		case "pause":
			actionErr = a.pom.Pause()
		case "resume":
			actionErr = a.pom.Resume()
		case "skip":
			actionErr = a.pom.Skip()
		case "status":
			fmt.Printf("Break-timer state: %s\n", a.pom.State())
		case "sync":
			actionErr = a.trk.SyncWithBreakTimer()
		default:
			fatal(fmt.Errorf("unknown pomodoro action: %s", args[0]))
		}
		if actionErr != nil {
			fatal(actionErr)
		}
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent timer events",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		a, err := setup(false)
		if err != nil {
			fatal(err)
		}
		if a.log == nil {
			fatal(fmt.Errorf("event log unavailable"))
		}
		list, err := a.log.Recent(limit)
		if err != nil {
			fatal(err)
		}
		if len(list) == 0 {
			fmt.Println("No events recorded yet")
			return
		}
		for _, e := range list {
			fmt.Printf("%s  %-6s  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Kind, e.Description)
		}
	},
}

func runInfo(a *app) error {
	workspaces, err := a.gw.Workspaces()
	if err != nil {
		return err
	}
	workspaceName := "Unknown"
	for _, ws := range workspaces {
		if ws.ID == a.cfg.WorkspaceID {
			workspaceName = ws.Name
			break
		}
	}
	fmt.Printf("Workspace: %s (%s)\n\n", workspaceName, a.cfg.WorkspaceID)

	project, err := a.rec.CurrentProject()
	if err != nil {
		return err
	}
	if project != nil {
		fmt.Printf("Current Project: %s\n", project.Name)
		if a.cfg.TaskName != "" {
			fmt.Printf("Current Task: %s\n", a.cfg.TaskName)
		} else {
			fmt.Println("Current Task: None")
		}
		if a.cfg.Description != "" {
			fmt.Printf("Current Description: %s\n", a.cfg.Description)
		} else {
			fmt.Println("Current Description: None")
		}

		tasks, err := a.cat.ProjectTasks(project.ID)
		if err == nil && len(tasks) > 0 {
			fmt.Println("\nAvailable Formal Tasks:")
			for _, task := range tasks {
				marker := ""
				if task.ID == a.cfg.TaskID {
					marker = " (current)"
				}
				fmt.Printf("  - %s%s\n", task.Name, marker)
			}
		}
	} else {
		fmt.Println("Current Project: None")
	}
	fmt.Println()

	entry, err := a.trk.CurrentEntry()
	if err != nil {
		return err
	}
	if entry != nil {
		fmt.Printf("Tracking     %s\n", entry.Description)
		if start, err := time.Parse(time.RFC3339, entry.TimeInterval.Start); err == nil {
			elapsed := time.Since(start).Minutes()
			fmt.Printf("Elapsed      %s Min\n", strconv.FormatFloat(elapsed, 'f', 2, 64))
		}
	} else {
		fmt.Println("No active time entry")
	}

	if a.pom.IsAvailable() {
		fmt.Printf("Pomodoro     %s\n", a.pom.State())
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Clockify API token")
	rootCmd.PersistentFlags().StringVar(&flagWorkspaceID, "workspace-id", "", "Workspace ID")
	rootCmd.PersistentFlags().StringVar(&flagProjectID, "project-id", "", "Project ID")
	rootCmd.PersistentFlags().StringVar(&flagDescription, "description", "", "Time entry description")

	clientCmd.AddCommand(clientListCmd)
	clientCmd.AddCommand(clientSelectCmd)
	clientCmd.AddCommand(clientSetCmd)

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectSelectCmd)
	projectCmd.AddCommand(projectSetCmd)

	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskSelectCmd)
	taskCmd.AddCommand(taskSetCmd)
	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskDeleteCmd)

	eventsCmd.Flags().Int("limit", 20, "Number of events to show")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(skipCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(clientCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(projectTaskCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(pomodoroCmd)
	rootCmd.AddCommand(eventsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
