package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/DisaAst/chathub-bot/internal/logger"
)

const ddgEndpoint = "https://html.duckduckgo.com/html"

// DuckDuckGoBackend is a zero-cost basic-tier backend that scrapes the
// DuckDuckGo HTML results page. No API key, no model invocation; used when
// no basic search model is configured.
type DuckDuckGoBackend struct {
	client     *http.Client
	maxResults int
	logger     logger.Logger
}

func NewDuckDuckGoBackend(client *http.Client, maxResults int, log logger.Logger) *DuckDuckGoBackend {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &DuckDuckGoBackend{
		client:     client,
		maxResults: maxResults,
		logger:     log,
	}
}

type ddgResult struct {
	title string
	href  string
	body  string
}

func (b *DuckDuckGoBackend) Search(ctx context.Context, query, dateTimeContext string) (string, error) {
	results, err := b.fetch(ctx, query)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", errors.New("no results")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Web results for %q:\n\n", query)
	for i, result := range results {
		fmt.Fprintf(&sb, "%d. %s\n%s\n%s\n\n", i+1, result.title, result.body, result.href)
	}
	return strings.TrimSpace(sb.String()), nil
}

func (b *DuckDuckGoBackend) fetch(ctx context.Context, query string) ([]ddgResult, error) {
	payload := url.Values{
		"q": []string{query},
		"b": []string{""},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ddgEndpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "https://duckduckgo.com/")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if bytes.Contains(body, []byte("No results.")) {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var results []ddgResult
	doc.Find("div.result").Each(func(i int, s *goquery.Selection) {
		if len(results) >= b.maxResults {
			return
		}
		link := s.Find("a.result__a")
		href, exists := link.Attr("href")
		if !exists || href == "" || seen[href] {
			return
		}
		if strings.HasPrefix(href, "https://duckduckgo.com/y.js?ad_domain") {
			return
		}

		seen[href] = true
		results = append(results, ddgResult{
			title: collapseWhitespace(link.Text()),
			href:  href,
			body:  collapseWhitespace(s.Find("a.result__snippet").Text()),
		})
	})

	return results, nil
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
