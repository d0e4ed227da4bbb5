package scrape

import (
	"time"

	"github.com/go-shiori/go-readability"
)

// Scraper defines the interface for downloading web pages.
// This allows us to mock the "Download" step in tests.
type Scraper interface {
	Scrape(url string, timeout time.Duration) (*readability.Article, error)
}

// DefaultScraper is the real implementation that uses the internet
type DefaultScraper struct{}

func (s *DefaultScraper) Scrape(url string, timeout time.Duration) (*readability.Article, error) {
	art, err := readability.FromURL(url, timeout)
	return &art, err
}
