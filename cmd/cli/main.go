package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spending-reports/internal/app"
	"github.com/dvloznov/spending-reports/internal/config"
	"github.com/dvloznov/spending-reports/internal/domain"
	infraBQ "github.com/dvloznov/spending-reports/internal/infra/bigquery"
	"github.com/dvloznov/spending-reports/internal/loader"
	"github.com/dvloznov/spending-reports/internal/logger"
	"github.com/dvloznov/spending-reports/internal/reports"
	"github.com/dvloznov/spending-reports/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	log, logCloser, err := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	switch cmd {
	case "home":
		runHome(cfg, log)
	case "mobile":
		runMobile(cfg, log)
	case "weekday":
		runWeekday(cfg, log)
	case "import":
		runImport(cfg, log)
	case "export":
		runExport(cfg, log)
	case "upload":
		runUpload(log)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Spending Reports CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  home      Month-to-date card totals, top operations and quotes")
	fmt.Println("  mobile    Operations paid to a phone number within a date range")
	fmt.Println("  weekday   Mean spending per weekday over the last 90 days")
	fmt.Println("  import    Load a spreadsheet export into BigQuery")
	fmt.Println("  export    Write BigQuery operations back to a spreadsheet")
	fmt.Println("  upload    Upload a local file to GCS")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nDates use the DD.MM.YYYY format.")
	fmt.Println("Run 'cli <command> -h' for more information on a command.")
}

// commandContext returns a bounded context carrying the logger.
func commandContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	return logger.WithContext(ctx, log), cancel
}

// loadTable reads operations from the configured source. A -file flag
// overrides SOURCE_FILE and forces the spreadsheet source.
func loadTable(ctx context.Context, cfg *config.Config, file string, log zerolog.Logger) domain.Table {
	if file != "" {
		cfg.TransactionsSource = config.SourceFile
		cfg.SourceFile = file
	}

	source, closer, err := app.NewTableSource(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open operations source")
	}
	if closer != nil {
		defer closer.Close()
	}

	table, err := source.LoadTable(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load operations")
	}
	return table
}

func newService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*reports.Service, func()) {
	svc, closer, err := app.NewReportService(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize report service")
	}
	return svc, func() { _ = closer.Close() }
}

func printJSON(log zerolog.Logger, v interface{}) {
	data, err := reports.EncodeJSON(v)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}
	fmt.Println(string(data))
}

func runHome(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("home", flag.ExitOnError)
	date := fs.String("date", "", "Report date DD.MM.YYYY (defaults to the latest operation)")
	file := fs.String("file", "", "Spreadsheet to read instead of the configured source")
	fs.Parse(os.Args[2:])

	ctx, cancel := commandContext(log)
	defer cancel()

	svc, closeSvc := newService(ctx, cfg, log)
	defer closeSvc()

	table := loadTable(ctx, cfg, *file, log)
	report, err := svc.HomePageOn(ctx, table, *date)
	if err != nil {
		log.Fatal().Err(err).Msg("Home page failed")
	}
	printJSON(log, report)
}

func runMobile(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("mobile", flag.ExitOnError)
	start := fs.String("start", "", "Range start DD.MM.YYYY (required)")
	stop := fs.String("stop", "", "Range end DD.MM.YYYY, inclusive (required)")
	file := fs.String("file", "", "Spreadsheet to read instead of the configured source")
	fs.Parse(os.Args[2:])

	if *start == "" || *stop == "" {
		log.Fatal().Msg("Usage: cli mobile -start DD.MM.YYYY -stop DD.MM.YYYY")
	}

	ctx, cancel := commandContext(log)
	defer cancel()

	svc, closeSvc := newService(ctx, cfg, log)
	defer closeSvc()

	table := loadTable(ctx, cfg, *file, log)
	found, err := svc.MobileTransactionsBetween(ctx, table, *start, *stop)
	switch {
	case errors.Is(err, domain.ErrEmptyPeriod):
		fmt.Fprintln(os.Stderr, "No operations in the given period.")
	case errors.Is(err, domain.ErrNoMatches):
		fmt.Fprintln(os.Stderr, "No mobile payments in the given period.")
	case err != nil:
		log.Fatal().Err(err).Msg("Mobile payments search failed")
	}
	printJSON(log, found)
}

func runWeekday(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("weekday", flag.ExitOnError)
	date := fs.String("date", "", "Window end DD.MM.YYYY (defaults to the latest operation)")
	file := fs.String("file", "", "Spreadsheet to read instead of the configured source")
	save := fs.Bool("save", false, "Save the report as a spreadsheet")
	name := fs.String("name", "", "Report file name (defaults to SkyBank-report_<today>.xlsx)")
	fs.Parse(os.Args[2:])

	ctx, cancel := commandContext(log)
	defer cancel()

	svc, closeSvc := newService(ctx, cfg, log)
	defer closeSvc()

	table := loadTable(ctx, cfg, *file, log)
	report, err := svc.WeekdaySpendingOn(ctx, table, *date)
	if err != nil {
		log.Fatal().Err(err).Msg("Weekday report failed")
	}
	printJSON(log, report)

	if *save || *name != "" {
		location, err := svc.SaveWeekdayReport(ctx, report, *name)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to save weekday report")
		}
		fmt.Fprintf(os.Stderr, "Report saved to %s\n", location)
	}
}

func openRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger) *infraBQ.BigQueryOperationsRepository {
	if cfg.BigQueryProject == "" {
		log.Fatal().Msg("BQ_PROJECT is required")
	}
	repo, err := infraBQ.NewBigQueryOperationsRepository(ctx, app.TableRef(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create operations repository")
	}
	return repo
}

func runImport(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", cfg.SourceFile, "Spreadsheet path or gs:// URI")
	replace := fs.Bool("replace", false, "Delete rows previously imported from the same file first")
	fs.Parse(os.Args[2:])

	ctx, cancel := commandContext(log)
	defer cancel()

	table, err := loader.NewLoader(storage.NewReader(), log).Load(ctx, *file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read spreadsheet")
	}

	repo := openRepository(ctx, cfg, log)
	defer repo.Close()

	if *replace {
		deleted, err := repo.DeleteBySource(ctx, *file)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to delete previous import")
		}
		log.Info().Int64("rows", deleted).Str("source", *file).Msg("Previous import removed")
	}

	n, err := repo.InsertOperations(ctx, table, *file)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	log.Info().Int("rows", n).Str("table", app.TableRef(cfg).FullName()).Msg("Import completed")
	fmt.Printf("Imported %d operations from %s\n", n, *file)
}

func runExport(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "operations.xlsx", "Output spreadsheet path")
	start := fs.String("start", "", "Range start DD.MM.YYYY (optional)")
	end := fs.String("end", "", "Range end DD.MM.YYYY, inclusive (optional)")
	fs.Parse(os.Args[2:])

	var from, to time.Time
	var err error
	if *start != "" {
		if from, err = domain.ParseDate(*start); err != nil {
			log.Fatal().Err(err).Msg("Invalid -start")
		}
	}
	if *end != "" {
		if to, err = domain.ParseDate(*end); err != nil {
			log.Fatal().Err(err).Msg("Invalid -end")
		}
		to = domain.EndOfDay(to)
	}

	ctx, cancel := commandContext(log)
	defer cancel()

	repo := openRepository(ctx, cfg, log)
	defer repo.Close()

	table, err := repo.QueryOperations(ctx, from, to)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to query operations")
	}

	data, err := loader.Encode(table)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode spreadsheet")
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write spreadsheet")
	}

	fmt.Printf("Exported %d operations to %s\n", len(table), *out)
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", "", "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx, cancel := commandContext(log)
	defer cancel()

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := storage.UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, *bucketName, *objectName)
}
