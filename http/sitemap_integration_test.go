//go:build integration

package http_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/fwojciec/helpkb"
	helpkbhttp "github.com/fwojciec/helpkb/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapService_Integration_HtmxDocs(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := helpkbhttp.NewSitemapService(nil)
	scope := &helpkb.Scope{
		BaseURL: "https://htmx.org/",
		Filter:  &helpkb.URLFilter{Include: []*regexp.Regexp{regexp.MustCompile(`/docs/`)}},
	}

	urls, err := svc.DiscoverURLs(ctx, scope)
	require.NoError(t, err)
	assert.NotEmpty(t, urls)
	for _, u := range urls {
		assert.Contains(t, u, "/docs/")
	}
	t.Logf("found %d /docs/ URLs", len(urls))
}
