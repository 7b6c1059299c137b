package services

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-faster/errors"

	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/athebyme/catalog-sync/internal/metrics"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
	"github.com/athebyme/catalog-sync/pkg/utils"
)

// CatalogClient запрашивает страницы каталога магазина
type CatalogClient interface {
	FetchProducts(ctx context.Context, first int, after *string) (*models.CatalogPage, error)
}

// ExtractorConfig параметры обхода каталога
type ExtractorConfig struct {
	PageSize          int
	MaxPages          int
	ThrottleThreshold float64
	MaxRetries        int
	RetryWaitTime     time.Duration
	MaxWaitTime       time.Duration
}

// DefaultExtractorConfig значения по умолчанию
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		PageSize:          50,
		MaxPages:          1000,
		ThrottleThreshold: 20,
		MaxRetries:        3,
		RetryWaitTime:     500 * time.Millisecond,
		MaxWaitTime:       10 * time.Second,
	}
}

// Extractor последовательно обходит каталог по курсору
type Extractor struct {
	cfg    ExtractorConfig
	logger interfaces.LoggerPort
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewExtractor(cfg ExtractorConfig, logger interfaces.LoggerPort) *Extractor {
	def := DefaultExtractorConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryWaitTime <= 0 {
		cfg.RetryWaitTime = def.RetryWaitTime
	}
	if cfg.MaxWaitTime <= 0 {
		cfg.MaxWaitTime = def.MaxWaitTime
	}

	return &Extractor{cfg: cfg, logger: logger, sleep: sleepContext}
}

// ExtractAll возвращает все товары магазина в порядке получения.
// Вложенные списки товара усечены лимитами запроса
func (e *Extractor) ExtractAll(ctx context.Context, client CatalogClient) ([]models.RawProduct, error) {
	pager := utils.NewCursorPagination(e.cfg.PageSize, e.cfg.MaxPages)
	var products []models.RawProduct

	for {
		more, err := pager.Next()
		if errors.Is(err, utils.ErrPageLimitExceeded) {
			return nil, &models.PaginationLimitError{MaxPages: pager.MaxPages}
		}
		if !more {
			break
		}

		pageNum := pager.Fetched + 1
		page, err := e.fetchPage(ctx, client, pager.PageSize, pager.Cursor, pageNum)
		if err != nil {
			return nil, err
		}

		if page.HasNextPage && page.EndCursor == nil {
			return nil, models.NewUpstreamProtocolError(pageNum, 200, nil,
				errors.New("hasNextPage without endCursor"))
		}

		products = append(products, page.Products...)
		pager.Advance(len(page.Products), page.EndCursor, page.HasNextPage)
		metrics.PagesFetched.Inc()

		e.logger.DebugWithContext(ctx, "Получена страница каталога",
			interfaces.LogField{Key: "page", Value: pageNum},
			interfaces.LogField{Key: "products", Value: len(page.Products)},
			interfaces.LogField{Key: "has_next_page", Value: page.HasNextPage},
		)

		if pager.HasNextPage {
			if err := e.pace(ctx, page); err != nil {
				return nil, &models.TransportError{Stage: models.StageExtract, Err: err}
			}
		}
	}

	e.logger.InfoWithContext(ctx, "Каталог получен",
		interfaces.LogField{Key: "pages", Value: pager.Fetched},
		interfaces.LogField{Key: "products", Value: pager.TotalItems},
	)

	return products, nil
}

func (e *Extractor) fetchPage(ctx context.Context, client CatalogClient, first int, after *string, pageNum int) (*models.CatalogPage, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = e.cfg.RetryWaitTime
	eb.MaxInterval = e.cfg.MaxWaitTime
	eb.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(e.cfg.MaxRetries)), ctx)

	op := func() (*models.CatalogPage, error) {
		page, err := client.FetchProducts(ctx, first, after)
		if err == nil {
			return page, nil
		}

		annotatePage(err, pageNum)
		if ctx.Err() != nil || !models.IsTransient(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	notify := func(err error, wait time.Duration) {
		metrics.UpstreamRetries.Inc()
		e.logger.WarnWithContext(ctx, "Повтор запроса страницы каталога",
			interfaces.LogField{Key: "page", Value: pageNum},
			interfaces.LogField{Key: "wait", Value: wait.String()},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}

	page, err := backoff.RetryNotifyWithData(op, policy, notify)
	if err != nil {
		if models.Classify(err) == models.KindUnknown && ctx.Err() != nil {
			return nil, &models.TransportError{Stage: models.StageExtract, Err: err}
		}
		return nil, err
	}

	return page, nil
}

// pace ждет восстановления бюджета запросов перед следующей страницей
func (e *Extractor) pace(ctx context.Context, page *models.CatalogPage) error {
	wait := throttleWait(page, e.cfg.ThrottleThreshold)
	if wait <= 0 {
		return nil
	}

	e.logger.InfoWithContext(ctx, "Ожидание восстановления лимита запросов",
		interfaces.LogField{Key: "wait", Value: wait.String()},
		interfaces.LogField{Key: "available", Value: page.Throttle.CurrentlyAvailable},
	)

	return e.sleep(ctx, wait)
}

// throttleWait время, за которое бюджет восстановится до max(стоимость запроса, порог)
func throttleWait(page *models.CatalogPage, threshold float64) time.Duration {
	t := page.Throttle
	if t == nil || t.RestoreRate <= 0 {
		return 0
	}

	target := threshold
	if page.RequestedCost > target {
		target = page.RequestedCost
	}
	if t.MaximumAvailable > 0 && target > t.MaximumAvailable {
		target = t.MaximumAvailable
	}
	if t.CurrentlyAvailable >= target {
		return 0
	}

	seconds := (target - t.CurrentlyAvailable) / t.RestoreRate
	return time.Duration(seconds * float64(time.Second)).Round(time.Millisecond)
}

func annotatePage(err error, page int) {
	var protocol *models.UpstreamProtocolError
	if errors.As(err, &protocol) && protocol.Page == 0 {
		protocol.Page = page
	}

	var query *models.UpstreamQueryError
	if errors.As(err, &query) && query.Page == 0 {
		query.Page = page
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
