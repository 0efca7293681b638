package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"

	"coinafrique-scraper/config"
	"coinafrique-scraper/models"
	"coinafrique-scraper/renderer"
	"coinafrique-scraper/scraper/coinafrique"
	"coinafrique-scraper/services"
	"coinafrique-scraper/storage"
	"coinafrique-scraper/utils"
)

const previewRows = 5

// sessionOpener starts the page renderer. Tests swap in a static one.
type sessionOpener func(cfg *config.Config) (renderer.Session, error)

func openRenderer(cfg *config.Config) (renderer.Session, error) {
	return renderer.Open(cfg.Renderer, renderer.OptionsFromConfig(cfg))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, config.Load(), openRenderer)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer, cfg *config.Config, open sessionOpener) int {
	logger := utils.NewLoggerTo(out, cfg.LogLevel)

	logger.Info("=== Coinafrique Scraping System starting ===")
	logger.Info("Config | renderer: %s | headless: %v | settle: %v/%v | wait: %v | rate: %dms",
		cfg.Renderer, cfg.Headless, cfg.ListSettle, cfg.DetailSettle, cfg.WaitTimeout, cfg.RateLimitMs)

	catalog, err := coinafrique.LoadCatalog(cfg.CategoriesFile)
	if err != nil {
		logger.Error("Failed to load category table: %v", err)
		return 1
	}

	session, err := open(cfg)
	if err != nil {
		logger.Error("Failed to start the %s renderer: %v", cfg.Renderer, err)
		return 1
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("Closing the renderer failed: %v", err)
		}
	}()

	prompter := utils.NewPrompter(in, out)

	category, err := pickCategory(args, prompter)
	if err != nil {
		logger.Error("No category to scrape: %v", err)
		return 1
	}
	spec, err := catalog.Category(category)
	if err != nil {
		logger.Error("%v", err)
		return 1
	}

	maxPages, err := prompter.MaxPages(coinafrique.MaxPages)
	if errors.Is(err, utils.ErrAborted) {
		logger.Info("Nothing to do, exiting.")
		return 0
	}
	if err != nil {
		logger.Error("Reading the page count failed: %v", err)
		return 1
	}

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	records, err := coinafrique.New(cfg, logger, session, catalog).Run(ctx, category, maxPages)
	if err != nil {
		logger.Error("Coinafrique %s scrape failed: %v", category, err)
		return 1
	}

	csvWriter, err := storage.NewCSVWriter(storage.ExportPath(cfg.OutputDir, spec.ExportName), category)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		return 1
	}
	if err := exportCSV(csvWriter, records); err != nil {
		logger.Error("CSV export failed: %v", err)
		return 1
	}
	csvPath := csvWriter.Path()
	logger.Info("%d %s records saved to %s", len(records), category, csvPath)
	preview(logger, csvPath)

	listings := services.NewCleaner(logger).Clean(runID, records)

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(ctx, cfg.DSN(), logger)
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure the database is running: docker compose up -d")
		} else {
			listings = storeListings(logger, pgWriter, category, listings)
		}
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Fprint(out, insightSvc.Generate(category, listings))

	fmt.Fprintf(out, "  Done. %s → %s\n\n", category, csvPath)
	return 0
}

func pickCategory(args []string, p *utils.Prompter) (models.Category, error) {
	if len(args) > 0 {
		return models.ParseCategory(args[0])
	}

	options := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		options[i] = string(c)
	}
	idx, err := p.Choose("Which category do you want to scrape?", options)
	if err != nil {
		return "", err
	}
	return models.Categories[idx], nil
}

// exportCSV writes every record and closes w.
func exportCSV(w storage.RecordWriter, records []*models.Record) error {
	if err := w.WriteRecords(records); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// preview logs the head of the export as read back from disk.
func preview(logger *utils.Logger, path string) {
	header, rows, err := storage.ReadCSV(path)
	if err != nil {
		logger.Warn("Could not read back %s: %v", path, err)
		return
	}
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}
	logger.Info("Preview | %s", strings.Join(header, " | "))
	for _, row := range rows {
		logger.Info("Preview | %s", strings.Join(row, " | "))
	}
}

// storeListings replaces the category in store, closes it, and returns what
// the store now holds. On any failure the in-memory listings are returned.
func storeListings(logger *utils.Logger, store storage.ListingStore, category models.Category, listings []*models.Listing) []*models.Listing {
	defer store.Close()

	if err := store.Write(category, listings); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		return listings
	}
	logger.Info("Clean %s listings stored in PostgreSQL (table: listings)", category)

	dbListings, err := store.FetchCategory(category)
	if err != nil {
		logger.Error("Failed to fetch listings from DB for insights: %v", err)
		return listings
	}
	return dbListings
}
