package helpkb

import (
	"context"
	"regexp"
	"strings"
)

// SitemapService discovers URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs returns the in-scope URLs listed in the sitemaps of the
	// scope's host. It first checks robots.txt for sitemap directives, then
	// falls back to /sitemap.xml. Sitemap indexes are resolved recursively.
	DiscoverURLs(ctx context.Context, scope *Scope) ([]string, error)
}

// URLFilter specifies patterns for including/excluding URLs.
type URLFilter struct {
	// Include patterns - if set, only URLs matching at least one pattern are included.
	Include []*regexp.Regexp

	// Exclude patterns - URLs matching any pattern are excluded.
	// Exclude is applied after Include.
	Exclude []*regexp.Regexp
}

// NewURLFilter compiles include and exclude patterns.
// It returns nil when both lists are empty.
func NewURLFilter(include, exclude []string) (*URLFilter, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return nil, nil
	}
	f := &URLFilter{}
	for _, p := range include {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid include pattern %q: %s", p, err)
		}
		f.Include = append(f.Include, re)
	}
	for _, p := range exclude {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid exclude pattern %q: %s", p, err)
		}
		f.Exclude = append(f.Exclude, re)
	}
	return f, nil
}

// Match returns true if the URL passes the filter.
// If the filter is nil, all URLs pass.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}

	if len(f.Include) > 0 {
		matched := false
		for _, re := range f.Include {
			if re.MatchString(url) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, re := range f.Exclude {
		if re.MatchString(url) {
			return false
		}
	}

	return true
}

// Scope decides which URLs belong to a knowledge base.
type Scope struct {
	// BaseURL is the prefix every in-scope URL starts with.
	BaseURL string

	// Blocklist holds URL prefixes that are never crawled.
	Blocklist []string

	// Filter optionally narrows the scope further.
	Filter *URLFilter
}

// Allows reports whether url starts with the base URL, matches no blocklist
// prefix and passes the filter.
func (s *Scope) Allows(url string) bool {
	for _, block := range s.Blocklist {
		if strings.HasPrefix(url, block) {
			return false
		}
	}
	if !strings.HasPrefix(url, s.BaseURL) {
		return false
	}
	return s.Filter.Match(url)
}
