package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"bus-telemetry-dashboard/internal/api"
	"bus-telemetry-dashboard/internal/config"
	"bus-telemetry-dashboard/internal/dataset"
	"bus-telemetry-dashboard/internal/db"
	"bus-telemetry-dashboard/internal/models"
	"bus-telemetry-dashboard/internal/render"
	"bus-telemetry-dashboard/internal/session"
	"bus-telemetry-dashboard/internal/views"

	"github.com/spf13/cobra"
)

var (
	envFile string
	dataDir string
	dbPath  string
	cfg     *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bus-dashboard",
		Short: "Bus Telemetry Dashboard - daily driving events for a bus fleet",
		Long: `An interactive dashboard over one month of bus telemetry.
Loads five CSV tables at startup, serves per-session chart views over a
REST API and renders any view to PNG.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadFile(envFile)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Directory holding the CSV tables")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite session database")

	// Add commands
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(viewCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(sessionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadDataset reads every table or fails on the first error
func loadDataset() (*dataset.Store, error) {
	start := time.Now()
	ds, err := dataset.Load(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("dataset error: %w", err)
	}
	c := ds.Counts()
	log.Printf("Loaded %d events, %d daily rows from %s in %v\n",
		c.Events, c.DailySummary, cfg.DataDir, time.Since(start))
	return ds, nil
}

func viewOptions() views.Options {
	return views.Options{DefaultPair: cfg.DefaultPair, MapToken: cfg.MapToken}
}

func defaultDriver(ds *dataset.Store) string {
	if cfg.DefaultDriver != "" {
		return cfg.DefaultDriver
	}
	return views.DefaultDriver(ds)
}

// serveCmd starts the dashboard server
func serveCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			ds, err := loadDataset()
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			manager := session.NewManager(ds, database, viewOptions(), defaultDriver(ds))
			server := api.NewServer(ds, database, manager)

			fmt.Printf("Bus Telemetry Dashboard\n")
			fmt.Printf("   Listening on http://%s\n", cfg.Addr())
			fmt.Printf("   Data:     %s (fingerprint %s)\n", cfg.DataDir, ds.Fingerprint()[:12])
			fmt.Printf("   Sessions: %s\n\n", cfg.DBPath)

			// Serve web dashboard at root
			if info, err := os.Stat(cfg.WebDir); err == nil && info.IsDir() {
				server.ServeStatic(cfg.WebDir)
			}

			fmt.Println("Available endpoints:")
			fmt.Println("  GET    /health")
			fmt.Println("  GET    /api/v1/dataset")
			fmt.Println("  GET    /api/v1/summary")
			fmt.Println("  GET    /api/v1/drivers")
			fmt.Println("  GET    /api/v1/bindings")
			fmt.Println("  GET    /api/v1/views/{view}[/png]")
			fmt.Println("  POST   /api/v1/sessions")
			fmt.Println("  GET    /api/v1/sessions/{id}")
			fmt.Println("  DELETE /api/v1/sessions/{id}")
			fmt.Println("  POST   /api/v1/sessions/{id}/controls/{control}")
			fmt.Println("  GET    /api/v1/sessions/{id}/views/{view}[/png]")
			fmt.Println("  GET    /api/v1/stats")
			fmt.Println()

			return http.ListenAndServe(cfg.Addr(), server.Router())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (default from DASH_HOST)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (default from DASH_PORT)")
	return cmd
}

// checkCmd validates the dataset without serving it
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load and validate the CSV tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset()
			if err != nil {
				return err
			}
			c := ds.Counts()

			fmt.Println("Dataset")
			fmt.Println("=======")
			fmt.Printf("  Events:              %d\n", c.Events)
			fmt.Printf("  Daily summary rows:  %d\n", c.DailySummary)
			fmt.Printf("  Overall stat rows:   %d\n", c.Overall)
			fmt.Printf("  Daily avg speeds:    %d\n", c.DailyAvgSpeed)
			fmt.Printf("  Hourly speeds:       %d\n", c.HourlySpeed)
			fmt.Printf("  Drivers:             %s\n", strings.Join(ds.Drivers(), ", "))
			fmt.Printf("  Vehicles:            %d\n", len(ds.Vehicles()))
			fmt.Printf("  Fingerprint:         %s\n", ds.Fingerprint())

			for day := models.FirstDay; day <= models.LastDay; day++ {
				if _, ok := ds.DailySummary(day); !ok {
					fmt.Printf("  warning: no daily summary for day %d\n", day)
				}
			}
			return nil
		},
	}
}

// stateFlags holds the control values shared by view and render
type stateFlags struct {
	day     int
	driver  string
	vehicle string
	hover   string
	hours   []string
}

func (f *stateFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.day, "day", models.FirstDay, "Day of month (slider)")
	cmd.Flags().StringVar(&f.driver, "driver", "", "Dropdown driver (default from dataset)")
	cmd.Flags().StringVar(&f.hover, "hover-driver", "", "Hovered driver for the line view")
	cmd.Flags().StringVar(&f.vehicle, "vehicle", "", "Hovered vehicle for the line view")
	cmd.Flags().StringSliceVar(&f.hours, "hours", []string{models.PeakHour, models.NonPeakHour}, "Hour bands to shade")
}

func (f *stateFlags) state(ds *dataset.Store) models.ControlState {
	state := models.ControlState{
		Day:    f.day,
		Driver: f.driver,
		Hours:  f.hours,
	}
	if state.Driver == "" {
		state.Driver = defaultDriver(ds)
	}
	if state.Hours == nil {
		state.Hours = []string{}
	}
	if f.hover != "" && f.vehicle != "" {
		state.Hover = &models.DriverVehicle{Driver: f.hover, Vehicle: f.vehicle}
	}
	return state
}

func computeView(name string, flags *stateFlags) (interface{}, error) {
	view, err := views.ParseName(name)
	if err != nil {
		return nil, err
	}
	ds, err := loadDataset()
	if err != nil {
		return nil, err
	}
	return views.Compute(ds, view, flags.state(ds), viewOptions())
}

// viewCmd prints one view as JSON
func viewCmd() *cobra.Command {
	flags := &stateFlags{}

	cmd := &cobra.Command{
		Use:       "view <name>",
		Short:     "Compute a view and print it as JSON",
		Args:      cobra.ExactArgs(1),
		ValidArgs: viewNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := computeView(args[0], flags)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(data)
		},
	}

	flags.register(cmd)
	return cmd
}

// renderCmd writes one view as PNG
func renderCmd() *cobra.Command {
	flags := &stateFlags{}
	var output string

	cmd := &cobra.Command{
		Use:       "render <name>",
		Short:     "Render a chart view to a PNG file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: viewNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := computeView(args[0], flags)
			if err != nil {
				return err
			}

			if output == "" {
				output = args[0] + ".png"
			}
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("error creating output file: %w", err)
			}
			defer file.Close()

			if err := render.PNG(file, data); err != nil {
				return fmt.Errorf("render error: %w", err)
			}
			fmt.Printf("✓ Wrote %s\n", output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output PNG file (default <name>.png)")
	return cmd
}

func viewNames() []string {
	names := make([]string, 0, len(views.All))
	for _, n := range views.All {
		names = append(names, string(n))
	}
	return names
}

// sessionCmd manages persisted dashboard sessions
func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session management commands",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List persisted sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			sessions, err := database.ListSessions(limit)
			if err != nil {
				return fmt.Errorf("error listing sessions: %w", err)
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions found.")
				return nil
			}

			fmt.Printf("%-36s  %-4s  %-12s  %-22s  %s\n", "ID", "DAY", "DRIVER", "HOURS", "UPDATED")
			for _, s := range sessions {
				fmt.Printf("%-36s  %-4d  %-12s  %-22s  %s\n",
					s.ID, s.State.Day, s.State.Driver, strings.Join(s.State.Hours, ","),
					s.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "l", 100, "Maximum sessions to list")

	var olderThan time.Duration
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete sessions idle longer than --older-than",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			n, err := database.PruneSessions(time.Now().Add(-olderThan))
			if err != nil {
				return fmt.Errorf("error pruning sessions: %w", err)
			}
			fmt.Printf("✓ Pruned %d sessions\n", n)
			return nil
		},
	}
	pruneCmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Idle time after which a session is deleted")

	cmd.AddCommand(listCmd, pruneCmd)
	return cmd
}
