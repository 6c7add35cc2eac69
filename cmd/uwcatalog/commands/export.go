package commands

import (
	"io"
	"log/slog"
	"os"
	"time"

	"uwcatalog/internal/catalog"
	"uwcatalog/internal/components/restyutil"
	"uwcatalog/internal/components/serviceutil"
	"uwcatalog/internal/components/telemetry"
	"uwcatalog/internal/export"
	"uwcatalog/internal/scrapers/uwcatalog"

	"github.com/spf13/cobra"
)

var (
	exportCampuses        *[]string
	exportDepartmentLinks *[]string
	exportDepartments     *[]string
	exportSchema          *string
	exportTitleCase       *bool
	exportOut             *string
	exportDb              *string
	exportConcurrency     *int
	exportQuiet           *bool
	exportDumpHttp        *string
)

func init() {
	flags := exportCmd.Flags()
	exportCampuses = flags.StringSlice("campus", nil, "Campuses to export (Bothell, Seattle, Tacoma), every campus by default.")
	exportDepartmentLinks = flags.StringSlice("department-link", nil, "Only export the given department pages (ex. cse.html).")
	exportDepartments = flags.StringSlice("department", nil, "Only export departments with a name similar to the given names.")
	exportSchema = flags.String("schema", "extended", "The output columns, base or extended (adds Offered).")
	exportTitleCase = flags.Bool("titlecase", false, "Title case course names.")
	exportOut = flags.StringP("out", "o", "", "The csv file to write to, stdout by default.")
	exportDb = flags.String("db", "", "A sqlite database to also write the results to.")
	exportConcurrency = flags.Int("concurrency", 0, "The maximum amount of pages fetched at once, overrides the config.")
	exportQuiet = flags.BoolP("quiet", "q", false, "Do not print the summary report.")
	exportDumpHttp = flags.String("dump-http", "", "A directory to write every http request and response to.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--campus <name>] [--out <path/to/output.csv>] [--db <path/to/output.db>]",
	Short: "Scrapes the course catalog and writes every course as a csv row.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := readConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if *exportConcurrency > 0 {
			cfg.Concurrency = *exportConcurrency
		}

		schema, err := export.ParseSchema(*exportSchema)
		if err != nil {
			serviceutil.Fatal("invalid --schema", err)
		}
		campuses := catalog.Campuses
		if len(*exportCampuses) > 0 {
			campuses = nil
			for _, name := range *exportCampuses {
				campus, err := catalog.ParseCampus(name)
				if err != nil {
					serviceutil.Fatal("invalid --campus", err)
				}
				campuses = append(campuses, campus)
			}
		}

		otel, err := telemetry.Setup(ctx, "uwcatalog", cfg.Telemetry)
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
		defer func() {
			err := otel.Shutdown(ctx)
			if err != nil {
				slog.Warn("failed to flush telemetry", "err", err)
			}
		}()

		tel := telemetry.SlogAPI{}
		clientOptions, err := cfg.clientOptions()
		if err != nil {
			serviceutil.Fatal("invalid config", err)
		}
		if *exportDumpHttp != "" {
			output, err := restyutil.NewFilesystemOutput(*exportDumpHttp)
			if err != nil {
				serviceutil.Fatal("failed to create http dump directory", err)
			}
			clientOptions.Dump = output
		}
		client, err := uwcatalog.NewClient(clientOptions, tel)
		if err != nil {
			serviceutil.Fatal("failed to initialize client", err)
		}
		scraper := uwcatalog.NewScraper(client, tel)

		t1 := time.Now()
		result, err := scraper.Scrape(ctx, uwcatalog.Options{
			Campuses:        campuses,
			DepartmentLinks: *exportDepartmentLinks,
			Departments:     *exportDepartments,
			Concurrency:     cfg.Concurrency,
			Extended:        schema == export.SCHEMA_EXTENDED,
		})
		if err != nil {
			serviceutil.Fatal("scrape interrupted", err)
		}
		t2 := time.Now()

		slog.Info(
			"scraping time",
			"seconds", t2.Sub(t1).Seconds(),
			"records", len(result.Records),
			"failed_pages", len(result.Errors),
		)

		options := export.Options{
			Schema:    schema,
			TitleCase: *exportTitleCase,
		}

		var out io.Writer = os.Stdout
		if *exportOut != "" {
			f, err := os.Create(*exportOut)
			if err != nil {
				serviceutil.Fatal("failed to create output file", err)
			}
			defer f.Close()
			out = f
		}
		err = export.WriteCsv(out, result.Records, options)
		if err != nil {
			serviceutil.Fatal("failed to write csv", err)
		}

		if *exportDb != "" {
			db, err := export.OpenDB(*exportDb)
			if err != nil {
				serviceutil.Fatal("failed to open db", err)
			}
			defer db.Close()
			err = export.WriteDB(ctx, db, result, options)
			if err != nil {
				serviceutil.Fatal("failed to write db", err)
			}
		}

		if !*exportQuiet {
			export.Report(os.Stderr, result)
		}
	},
}
