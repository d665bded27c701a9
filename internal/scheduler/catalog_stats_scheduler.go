package scheduler

import (
	"github.com/ikkim/shopfront-backend/internal/app/repository"
	"github.com/ikkim/shopfront-backend/internal/metrics"
	"github.com/ikkim/shopfront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CatalogStatsScheduler periodically refreshes the catalog gauges.
type CatalogStatsScheduler struct {
	cron          *cron.Cron
	schedule      string
	lowStockLevel int
	productRepo   repository.ProductRepository
}

func NewCatalogStatsScheduler(productRepo repository.ProductRepository, schedule string, lowStockLevel int) *CatalogStatsScheduler {
	return &CatalogStatsScheduler{
		cron:          cron.New(),
		schedule:      schedule,
		lowStockLevel: lowStockLevel,
		productRepo:   productRepo,
	}
}

// Start refreshes once immediately, then on every tick of the cron schedule.
func (s *CatalogStatsScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.refreshAndLog); err != nil {
		logger.Error("Failed to add cron job for catalog stats", err, logger.Fields{
			"schedule": s.schedule,
		})
		return err
	}

	s.refreshAndLog()
	s.cron.Start()
	logger.Info("Catalog stats scheduler started", logger.Fields{
		"schedule": s.schedule,
	})
	return nil
}

func (s *CatalogStatsScheduler) Stop() {
	logger.Info("Stopping catalog stats scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Catalog stats scheduler stopped")
}

// Refresh recomputes the product and low-stock gauges.
func (s *CatalogStatsScheduler) Refresh() error {
	total, err := s.productRepo.Count()
	if err != nil {
		return err
	}
	lowStock, err := s.productRepo.CountLowStock(s.lowStockLevel)
	if err != nil {
		return err
	}

	metrics.CatalogProducts.Set(float64(total))
	metrics.CatalogLowStockProducts.Set(float64(lowStock))
	return nil
}

func (s *CatalogStatsScheduler) refreshAndLog() {
	if err := s.Refresh(); err != nil {
		logger.Error("Failed to refresh catalog stats", err)
		return
	}
	logger.Debug("Catalog stats refreshed")
}
