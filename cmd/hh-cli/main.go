package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/joho/godotenv"

	"hh-vacancies-go/internal/config"
	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/menu"
	"hh-vacancies-go/internal/pipeline"
	"hh-vacancies-go/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configFile = flag.String("config", "config.json", "Configuration file path (.json, .yml or .yaml)")
		command    = flag.String("cmd", "run", "Command to run: run, load, menu, config")
		output     = flag.String("output", "console", "Output format: console, json")
		verbose    = flag.Bool("verbose", false, "Verbose output")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		printUsage()
		return 0
	}

	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logger.WarnLog(ctx, "could not load .env file: %v", err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.ErrorLog(ctx, "failed to load configuration", err)
		return 1
	}

	level := cfg.Logging.Level
	if *verbose {
		level = "debug"
	}
	logger.InitLogging(level, cfg.Logging.File)
	defer logger.Close()

	if *command == "config" {
		runConfigCommand(cfg, *output)
		return 0
	}

	if err := cfg.Validate(); err != nil {
		logger.ErrorLog(ctx, "configuration validation failed", err)
		if errors.Is(err, config.ErrMissingPassword) {
			fmt.Fprintln(os.Stderr, "Set DB_PASSWORD in the environment or in .env")
		}
		return 1
	}

	pg := storage.NewPostgres(cfg.DSN(), cfg.MaintenanceDSN(), cfg.Database.Name)

	var cmdErr error
	switch *command {
	case "run":
		cmdErr = runSafely(ctx, func() error { return runSession(ctx, cfg, pg, os.Stdin, os.Stdout) })
	case "load":
		cmdErr = runSafely(ctx, func() error { return runLoadCommand(ctx, cfg, pg, *output) })
	case "menu":
		cmdErr = runSafely(ctx, func() error {
			return menu.New(storage.NewRepository(pg), os.Stdin, os.Stdout).Run(ctx)
		})
	default:
		fmt.Printf("Unknown command: %s\n", *command)
		printUsage()
		return 1
	}

	if cmdErr != nil {
		fmt.Println("An error occurred, see the log for details.")
		return 1
	}
	return 0
}

// runSafely is the single top-level handler: errors and panics from a command
// are logged here and turned into a non-zero exit instead of a crash.
func runSafely(ctx context.Context, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Logger().Error().
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("unexpected failure")
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if err = fn(); err != nil {
		logger.ErrorLog(ctx, "command failed", err)
	}
	return err
}

// runSession performs a full load and then opens the menu with the remote
// totals of that load.
func runSession(ctx context.Context, cfg *config.Config, pg *storage.Postgres, in io.Reader, out io.Writer) error {
	result, err := load(ctx, cfg, pg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %d employers and %d vacancies\n", len(result.Employers), len(result.Vacancies))

	return menu.New(storage.NewRepository(pg), in, out).
		WithRemoteTotals(result.FoundByCompany(), result.TotalFound()).
		Run(ctx)
}

func runLoadCommand(ctx context.Context, cfg *config.Config, pg *storage.Postgres, output string) error {
	result, err := load(ctx, cfg, pg)
	if err != nil {
		return err
	}

	if output == "json" {
		outputJSON(result)
		return nil
	}

	fmt.Println("=== Load Results ===")
	fmt.Printf("Run ID: %s\n", result.RunID)
	fmt.Printf("Employers Fetched: %d\n", len(result.Employers))
	fmt.Printf("Vacancies Fetched: %d\n", len(result.Vacancies))
	fmt.Printf("Vacancies Found Remotely: %d\n", result.TotalFound())
	fmt.Printf("Employers Inserted: %d (skipped %d)\n", result.Report.EmployersInserted, result.Report.EmployersSkipped)
	fmt.Printf("Vacancies Inserted: %d (skipped %d, orphaned %d)\n",
		result.Report.VacanciesInserted, result.Report.VacanciesSkipped, result.Report.VacanciesOrphaned)
	fmt.Printf("Duration: %v\n", result.Duration)
	return nil
}

// load runs one cycle. Interrupts cancel the cycle; the signal handler is
// released before the interactive part starts.
func load(ctx context.Context, cfg *config.Config, pg *storage.Postgres) (*pipeline.Result, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.NewFromConfig(cfg, pg)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}

func runConfigCommand(cfg *config.Config, output string) {
	masked := *cfg
	masked.Database.Password = maskString(cfg.Database.Password)
	masked.Mirror.SupabaseKey = maskString(cfg.Mirror.SupabaseKey)

	if output == "json" {
		outputJSON(masked)
		return
	}

	fmt.Println("Current Configuration:")
	fmt.Printf("Database: %s@%s:%d/%s (sslmode=%s)\n",
		cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, cfg.Database.SSLMode)
	fmt.Printf("Database Password: %s\n", masked.Database.Password)
	fmt.Printf("API Base URL: %s\n", cfg.API.BaseURL)
	fmt.Printf("Vacancies Per Page: %d\n", cfg.API.PerPage)
	fmt.Printf("Request Timeout: %v\n", cfg.API.RequestTimeout)
	fmt.Printf("Employer IDs: %v\n", cfg.Loader.EmployerIDs)
	fmt.Printf("Snapshot Directory: %s\n", cfg.Loader.SnapshotDir)
	fmt.Printf("Schedule: %s\n", valueOr(cfg.Loader.Schedule, "run once"))
	fmt.Printf("Supabase Mirror Enabled: %t\n", cfg.MirrorEnabled())
	fmt.Printf("Log Level: %s\n", cfg.Logging.Level)
}

func outputJSON(data interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		logger.ErrorLog(context.Background(), "failed to encode JSON", err)
	}
}

func maskString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func printUsage() {
	fmt.Println("hh.ru Vacancies CLI Tool")
	fmt.Println("Usage:")
	fmt.Println("  hh-cli [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  -cmd run       - Load vacancies, then open the report menu")
	fmt.Println("  -cmd load      - Load vacancies and print a summary")
	fmt.Println("  -cmd menu      - Open the report menu on the stored data")
	fmt.Println("  -cmd config    - Show configuration")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -config string   - Configuration file (default: config.json)")
	fmt.Println("  -output string   - Output format for load and config: console, json (default: console)")
	fmt.Println("  -verbose         - Debug logging")
	fmt.Println("  -help            - Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  hh-cli                          # Load and browse")
	fmt.Println("  hh-cli -cmd load -output json   # Load and print the result as JSON")
	fmt.Println("  hh-cli -cmd menu                # Browse without reloading")
}
