package listings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vehicle-market/models"
	"vehicle-market/services"
	"vehicle-market/utils"
)

// DefaultMaxPages caps last_page when FetcherOptions.MaxPages is unset.
const DefaultMaxPages = 500

// FetcherOptions tunes how secondary pages are requested.
type FetcherOptions struct {
	// MaxConcurrency bounds the secondary page requests in flight; zero or
	// less issues them all at once.
	MaxConcurrency int
	// MaxPages is the largest last_page accepted from the endpoint.
	MaxPages    int
	RateLimitMs int
	Logger      *utils.Logger
}

// Fetcher retrieves every page of the listings endpoint and normalizes the
// records into one collection.
type Fetcher struct {
	source         PageSource
	normalizer     *services.Normalizer
	maxConcurrency int
	maxPages       int
	rateLimitMs    int
	logger         *utils.Logger
	now            func() time.Time
}

func NewFetcher(source PageSource, normalizer *services.Normalizer, opts FetcherOptions) *Fetcher {
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	return &Fetcher{
		source:         source,
		normalizer:     normalizer,
		maxConcurrency: opts.MaxConcurrency,
		maxPages:       opts.MaxPages,
		rateLimitMs:    opts.RateLimitMs,
		logger:         opts.Logger,
		now:            time.Now,
	}
}

// FetchPage returns one normalized page along with its paging block.
func (f *Fetcher) FetchPage(ctx context.Context, page int) (*models.PageResult, error) {
	if page < 1 {
		page = 1
	}
	raw, err := f.source.FetchPage(ctx, page)
	if err != nil {
		return nil, err
	}
	return &models.PageResult{
		Vehicles:   f.normalizer.NormalizeAll(raw.Items, f.now()),
		Pagination: models.NewPagination(raw.CurrentPage, raw.LastPage, raw.PerPage, raw.Total),
	}, nil
}

// FetchAll fetches every page and normalizes the result. Any page failure
// fails the whole call; no partial collection is returned.
func (f *Fetcher) FetchAll(ctx context.Context) ([]models.Vehicle, error) {
	raw, err := f.FetchAllRaw(ctx)
	if err != nil {
		return nil, err
	}
	return f.Normalize(raw), nil
}

// Normalize maps raw records with a single fetch timestamp and reports
// duplicate ids.
func (f *Fetcher) Normalize(raw []*models.RawVehicle) []models.Vehicle {
	vehicles := f.normalizer.NormalizeAll(raw, f.now())

	seen := utils.NewIDSet()
	for _, v := range vehicles {
		if !seen.Add(v.ID) {
			f.logger.Warn("[fetcher] Duplicate vehicle id %s across pages", v.ID)
		}
	}
	utils.VehiclesFetched.Set(float64(len(vehicles)))
	return vehicles
}

// FetchAllRaw fetches page 1, then pages 2..last_page concurrently, and
// concatenates the records by ascending page number.
func (f *Fetcher) FetchAllRaw(ctx context.Context) (records []*models.RawVehicle, err error) {
	log := f.logger.With("run_id", uuid.NewString())
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		utils.FetchCycleDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	log.Info("[fetcher] Fetching all vehicles")

	first, err := f.source.FetchPage(ctx, 1)
	if err != nil {
		log.Error("[fetcher] Page 1 failed: %v", err)
		return nil, err
	}

	lastPage := first.LastPage
	log.Info("[fetcher] Total pages to fetch: %d", lastPage)

	if lastPage > f.maxPages {
		log.Error("[fetcher] last_page %d exceeds the limit of %d", lastPage, f.maxPages)
		return nil, &FetchError{
			Kind: KindPageLimit,
			Err:  fmt.Errorf("%d > %d", lastPage, f.maxPages),
		}
	}

	if lastPage <= 1 {
		log.Info("[fetcher] Fetched %d total vehicles from 1 page", len(first.Items))
		return first.Items, nil
	}

	pages := make([]*models.ListingsPage, lastPage+1)
	errs := make([]error, lastPage+1)
	pages[1] = first

	pool := utils.NewWorkerPool(f.maxConcurrency, f.rateLimitMs)
	for page := 2; page <= lastPage; page++ {
		page := page
		pool.Submit(func() {
			p, err := f.source.FetchPage(ctx, page)
			if err != nil {
				errs[page] = err
				return
			}
			pages[page] = p
		})
	}
	pool.Wait()

	for page := 2; page <= lastPage; page++ {
		if errs[page] != nil {
			log.Error("[fetcher] Page %d failed: %v", page, errs[page])
			return nil, fmt.Errorf("page %d: %w", page, errs[page])
		}
	}

	total := 0
	for _, p := range pages[1:] {
		total += len(p.Items)
	}
	records = make([]*models.RawVehicle, 0, total)
	for _, p := range pages[1:] {
		records = append(records, p.Items...)
	}

	log.Info("[fetcher] Fetched %d total vehicles from %d pages", len(records), lastPage)
	return records, nil
}
