package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vehicle-market/config"
	"vehicle-market/models"
	"vehicle-market/scraper/browser"
	"vehicle-market/scraper/listings"
	"vehicle-market/server"
	"vehicle-market/services"
	"vehicle-market/storage"
	"vehicle-market/utils"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vehicle-market",
		Short:        "Fetch, normalize and search vehicle listings",
		SilenceUsage: true,
	}
	root.AddCommand(newFetchCmd(), newServeCmd())
	return root
}

func newFetchCmd() *cobra.Command {
	var (
		csvPath string
		persist bool
		page    int
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch every listings page, export raw records and print insights",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("csv") {
				cfg.CSVOutputPath = csvPath
			}
			return runFetch(cmd.Context(), cfg, persist, page)
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "raw CSV output path (empty disables export; default from CSV_OUTPUT_PATH)")
	cmd.Flags().BoolVar(&persist, "persist", false, "store the normalized snapshot in PostgreSQL")
	cmd.Flags().IntVar(&page, "page", 0, "fetch a single page instead of the whole catalog")
	return cmd
}

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API over the fetched catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from HTTP_ADDR)")
	return cmd
}

// stores holds the session and wishlist backends plus their shutdown hook.
type stores struct {
	session  storage.SessionStore
	wishlist storage.WishlistStore
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*stores, error) {
	if cfg.RedisAddr == "" {
		logger.Info("[main] REDIS_ADDR not set, using in-memory session and wishlist stores")
		return &stores{
			session:  storage.NewMemorySessionStore(),
			wishlist: storage.NewMemoryWishlistStore(),
			close:    func() {},
		}, nil
	}

	rdb, err := storage.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	logger.Info("[main] Connected to Redis at %s", cfg.RedisAddr)
	return &stores{
		session:  storage.NewRedisSessionStore(rdb, "session:"),
		wishlist: storage.NewRedisWishlistStore(rdb),
		close:    func() { _ = rdb.Close() },
	}, nil
}

func newPageSource(cfg *config.Config, session storage.SessionStore, logger *utils.Logger) (listings.PageSource, func(), error) {
	switch cfg.FetchMode {
	case config.FetchModeBrowser:
		src, err := browser.NewSource(browser.Options{
			ListingsURL: cfg.ListingsURL(),
			ChromeBin:   cfg.ChromeBin,
			Timeout:     cfg.RequestTimeout(),
			MaxAttempts: cfg.MaxRetries,
			RetryDelay:  cfg.RetryDelay(),
			Logger:      logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close() }, nil

	case config.FetchModeHTTP, "":
		src, err := listings.NewHTTPSource(listings.HTTPSourceOptions{
			ListingsURL: cfg.ListingsURL(),
			Timeout:     cfg.RequestTimeout(),
			MaxAttempts: cfg.MaxRetries,
			RetryDelay:  cfg.RetryDelay(),
			Session:     session,
			Logger:      logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown FETCH_MODE %q", cfg.FetchMode)
	}
}

func newFetcher(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*listings.Fetcher, *stores, func(), error) {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.AccessToken != "" {
		if err := st.session.Set(ctx, storage.KeyAccessToken, cfg.AccessToken, 0); err != nil {
			logger.Warn("[main] Could not store access token: %v", err)
		}
	}
	source, closeSource, err := newPageSource(cfg, st.session, logger)
	if err != nil {
		st.close()
		return nil, nil, nil, err
	}
	normalizer := services.NewNormalizer(cfg.APIBaseURL, cfg.ImagePlaceholderURL, logger)
	fetcher := listings.NewFetcher(source, normalizer, listings.FetcherOptions{
		MaxConcurrency: cfg.MaxConcurrency,
		MaxPages:       cfg.MaxPages,
		RateLimitMs:    cfg.RateLimitMs,
		Logger:         logger,
	})

	cleanup := func() {
		closeSource()
		st.close()
	}
	return fetcher, st, cleanup, nil
}

func runFetch(ctx context.Context, cfg *config.Config, persist bool, page int) error {
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	logger.Info("=== Vehicle Market fetch starting ===")
	logger.Info("Config: source: %s | mode: %s | concurrency: %d | retries: %d x %dms",
		cfg.ListingsURL(), cfg.FetchMode, cfg.MaxConcurrency, cfg.MaxRetries, cfg.RetryDelayMs)

	fetcher, _, cleanup, err := newFetcher(ctx, cfg, logger)
	if err != nil {
		logger.Error("Setup failed: %v", err)
		return err
	}
	defer cleanup()

	if page > 0 {
		result, err := fetcher.FetchPage(ctx, page)
		if err != nil {
			logger.Error("Page %d failed: %v", page, err)
			return err
		}
		p := result.Pagination
		fmt.Printf("  Page %d/%d: %d vehicles (%d total, %d per page)\n",
			p.CurrentPage, p.LastPage, len(result.Vehicles), p.Total, p.PerPage)
		return nil
	}

	raw, err := fetcher.FetchAllRaw(ctx)
	if err != nil {
		logger.Error("Fetch failed: %v", err)
		return err
	}
	if len(raw) == 0 {
		logger.Warn("No vehicles were returned by the listings endpoint")
	}

	if cfg.CSVOutputPath != "" {
		if err := exportRaw(cfg.CSVOutputPath, raw); err != nil {
			logger.Error("CSV write failed: %v", err)
		} else {
			logger.Info("Raw records saved to %s", cfg.CSVOutputPath)
		}
	}

	vehicles := fetcher.Normalize(raw)
	logger.Info("Normalized dataset: %d vehicles", len(vehicles))

	if persist {
		_ = persistSnapshot(ctx, cfg, vehicles, logger)
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(vehicles))
	return nil
}

func exportRaw(path string, raw []*models.RawVehicle) error {
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteRaw(raw); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// snapshotStore is the part of storage.PostgresWriter used by fetch --persist.
type snapshotStore interface {
	Write(ctx context.Context, vehicles []models.Vehicle) error
	FetchAll(ctx context.Context) ([]models.Vehicle, error)
}

func persistSnapshot(ctx context.Context, cfg *config.Config, vehicles []models.Vehicle, logger *utils.Logger) error {
	pg, err := storage.NewPostgresWriter(ctx, cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		return err
	}
	defer pg.Close()
	_, err = syncSnapshot(ctx, pg, vehicles, logger)
	return err
}

// syncSnapshot writes vehicles and reads the table back, returning the stored
// row count. Rows sharing an id are stored once. vehicles is not modified.
func syncSnapshot(ctx context.Context, store snapshotStore, vehicles []models.Vehicle, logger *utils.Logger) (int, error) {
	if err := store.Write(ctx, vehicles); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		return 0, err
	}

	stored, err := store.FetchAll(ctx)
	if err != nil {
		logger.Error("Failed to read vehicles back from PostgreSQL: %v", err)
		return 0, err
	}
	if len(stored) != len(vehicles) {
		logger.Warn("PostgreSQL holds %d rows for %d fetched vehicles (duplicate ids are stored once)",
			len(stored), len(vehicles))
	}
	logger.Info("Normalized vehicles stored in PostgreSQL (table: vehicles, %d rows)", len(stored))
	return len(stored), nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher, st, cleanup, err := newFetcher(ctx, cfg, logger)
	if err != nil {
		logger.Error("Setup failed: %v", err)
		return err
	}
	defer cleanup()

	catalog := server.NewCatalog(fetcher, logger)
	if _, err := catalog.Refresh(ctx); err != nil {
		logger.Warn("Initial fetch failed, serving an empty catalog until POST /refresh: %v", err)
	}

	favorites := services.NewFavoritesService(st.wishlist, logger)
	srv := server.NewServer(cfg.HTTPAddr, server.NewHandlers(catalog, favorites, cfg.PageSize, logger), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
