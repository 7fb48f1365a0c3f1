package mock

import (
	"context"

	"github.com/fwojciec/helpkb"
)

var _ helpkb.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of helpkb.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, scope *helpkb.Scope) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, scope *helpkb.Scope) ([]string, error) {
	return s.DiscoverURLsFn(ctx, scope)
}
