package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"CareSync360/config"
	"CareSync360/config/db"
	"CareSync360/controllers"
	"CareSync360/jobs"
	"CareSync360/notify"
	"CareSync360/routes"
	"CareSync360/seed"
	"CareSync360/services"
	"CareSync360/store"
)

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "caresync",
		Short: "Appointment–user reference reconciliation engine",
		Long: `CareSync360 detects and repairs broken links between the appointments and
users collections: appointments with no userId, dangling references, and
denormalized emails that drifted from the account's current address.

Users are never mutated; the only write the engine ever performs is the
userId/updatedAt pair on an appointment, and only after re-deriving the
correct value from the patient email.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(
		newReportCmd(),
		newMonitorCmd(),
		newFixCmd(),
		newFixAllCmd(),
		newServeCmd(),
		newSeedCmd(),
	)
	return root
}

func newLogger(level string) zerolog.Logger {
	if verbose {
		level = "debug"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().
		Logger()
}

// engine holds the one Mongo client plus every component built on it. It is
// constructed once per invocation and passed down explicitly; nothing in the
// repo keeps ambient connection state.
type engine struct {
	cfg          *config.Config
	log          zerolog.Logger
	client       *mongo.Client
	appointments *store.Appointments
	users        *store.Users
	verifier     *services.Verifier
	reconciler   *services.Reconciler
	reporter     *services.Reporter
	monitor      *services.Monitor
	mailer       *notify.Mailer
}

func newEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg.LogLevel)

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	database := client.Database(cfg.DBName)

	appointments := store.NewAppointments(database.Collection(db.AppointmentsCollection), cfg.StoreTimeout)
	users := store.NewUsers(database.Collection(db.UsersCollection), cfg.StoreTimeout)
	verifier := services.NewVerifier(users)

	return &engine{
		cfg:          cfg,
		log:          log,
		client:       client,
		appointments: appointments,
		users:        users,
		verifier:     verifier,
		reconciler:   services.NewReconciler(appointments, users, verifier, cfg.Workers, log),
		reporter:     services.NewReporter(appointments, verifier, cfg.ReportDir, log),
		monitor:      services.NewMonitor(appointments, verifier, log),
		mailer:       notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.AlertEmailTo),
	}, nil
}

func (e *engine) Close() {
	db.Disconnect(e.client)
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Scan every appointment and persist a relationship health report",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			report, err := e.reporter.Generate(cmd.Context())
			if err != nil {
				return err
			}
			path, err := e.reporter.Persist(report)
			if err != nil {
				return err
			}
			printReport(report, path)
			return nil
		},
	}
}

func newMonitorCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Check only appointments created in the trailing window",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			stats, err := e.monitor.Recent(cmd.Context(), days)
			if err != nil {
				return err
			}
			printMonitorStats(stats)
			if stats.Issues > 0 && e.mailer.Enabled() {
				if err := e.mailer.SendMonitorSummary(stats); err != nil {
					e.log.Error().Err(err).Msg("sending monitor summary mail")
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", services.DefaultMonitorDays, "size of the trailing window in days")
	return cmd
}

func newFixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fix <appointmentId>",
		Short: "Reconcile a single appointment's user reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			result, err := e.reconciler.Reconcile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printFixResult(result)
			return nil
		},
	}
}

func newFixAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fix-all",
		Short: "Verify every appointment and fix the broken references",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			result, err := e.reconciler.ReconcileAll(cmd.Context())
			if err != nil {
				return err
			}
			printBulkResult(result)
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Expose the engine over HTTP and run the scheduled monitor",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			scheduler, err := jobs.StartMonitorScheduler(e.cfg.MonitorCron, e.cfg.MonitorDays, e.monitor, e.mailer, e.log)
			if err != nil {
				return fmt.Errorf("starting monitor scheduler: %w", err)
			}
			defer scheduler.Stop()

			gin.SetMode(gin.ReleaseMode)
			r := gin.New()
			r.Use(gin.Recovery())
			r.Use(cors.New(cors.Config{
				AllowOrigins:     []string{"*"},
				AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
				AllowCredentials: true,
			}))
			routes.Routes(r, &controllers.Handler{
				Appointments: e.appointments,
				Verifier:     e.verifier,
				Reconciler:   e.reconciler,
				Reporter:     e.reporter,
				Monitor:      e.monitor,
				ReportDir:    e.cfg.ReportDir,
			})

			srv := &http.Server{Addr: ":" + e.cfg.ServerPort, Handler: r}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			e.log.Info().Str("port", e.cfg.ServerPort).Msg("reconciliation server listening")

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a demo dataset with healthy and broken references",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()
			return seed.Run(cmd.Context(), e.client.Database(e.cfg.DBName), e.log)
		},
	}
}

func printReport(report *services.Report, path string) {
	fmt.Println("Appointment–user relationship report")
	fmt.Printf("  Generated: %s\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Printf("  Total:     %d\n", report.Summary.Total)
	fmt.Printf("  Valid:     %d%s\n", report.Summary.ValidRelationships, pct(report.Summary.ValidPercentage))
	fmt.Printf("  Invalid:   %d%s\n", report.Summary.InvalidRelationships, pct(report.Summary.InvalidPercentage))
	fmt.Printf("    missing userId: %d\n", report.Issues.MissingUserID)
	fmt.Printf("    user not found: %d\n", report.Issues.UserNotFound)
	fmt.Printf("    email mismatch: %d\n", report.Issues.EmailMismatch)
	fmt.Printf("  Saved to:  %s\n", path)
}

func printMonitorStats(stats *services.MonitorStats) {
	fmt.Printf("Checked %d appointments created in the last %d days (since %s)\n",
		stats.Total, stats.WindowDays, stats.Since.Format("02/01/2006"))
	fmt.Printf("  Valid:  %d\n", stats.Valid)
	fmt.Printf("  Issues: %d\n", stats.Issues)
	for _, d := range stats.Details {
		fmt.Printf("    %s [%s] patient=%q email=%q created=%s\n",
			d.AppointmentID, d.Kind, d.PatientName, d.PatientEmail, d.CreatedAt)
	}
}

func printFixResult(result services.FixResult) {
	switch result.Status {
	case services.FixUpdated:
		fmt.Printf("Fixed %s: userId %q -> %q\n", result.AppointmentID, result.OldUserID, result.NewUserID)
	case services.FixUnchanged:
		fmt.Printf("Appointment %s already correct (userId %q)\n", result.AppointmentID, result.NewUserID)
	default:
		fmt.Printf("Could not fix %s: %s\n", result.AppointmentID, result.Reason)
	}
}

func printBulkResult(result *services.BulkFixResult) {
	fmt.Println("Bulk reconciliation finished")
	fmt.Printf("  Scanned:         %d\n", result.Total)
	fmt.Printf("  Already valid:   %d\n", result.Valid)
	fmt.Printf("  Fixed:           %d\n", result.Fixed)
	fmt.Printf("  Already correct: %d\n", result.AlreadyCorrect)
	fmt.Printf("  Errors:          %d\n", result.Errors)
	for _, d := range result.Details {
		switch {
		case d.Error != "":
			fmt.Printf("    %s: error: %s\n", d.AppointmentID, d.Error)
		case d.Fix != nil && d.Fix.Status == services.FixUpdated:
			fmt.Printf("    %s: fixed %q -> %q\n", d.AppointmentID, d.Fix.OldUserID, d.Fix.NewUserID)
		case d.Fix != nil && d.Fix.Status == services.FixFailed:
			fmt.Printf("    %s: failed (%s)\n", d.AppointmentID, d.Fix.Reason)
		}
	}
}

func pct(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf(" (%.2f%%)", *p)
}
