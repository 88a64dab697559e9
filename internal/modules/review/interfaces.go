package review

import (
	"context"

	"crmcore/internal/domain"
	"crmcore/internal/repository"
)

// RequestReader serves the dashboard listing; writes go through the
// transactional store instead.
type RequestReader interface {
	List(ctx context.Context, f repository.RequestFilter) ([]domain.ConversionRequest, error)
}

// Notifier receives queue changes for the reviewer dashboard feed.
type Notifier interface {
	QueueChanged(req *domain.ConversionRequest)
}
