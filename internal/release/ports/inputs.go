package ports

import (
	"context"

	"github.com/nathantilsley/chart-publish/internal/release/domain"
)

// PublishUseCase is the driving port for running a release.
type PublishUseCase interface {
	Execute(ctx context.Context, req domain.Request) (*domain.Report, error)
}

// TagListingUseCase is the driving port for showing recent registry tags.
type TagListingUseCase interface {
	ListRecentTags(ctx context.Context) ([]string, error)
}
