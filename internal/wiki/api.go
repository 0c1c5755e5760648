package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient allows injecting mock HTTP clients for testing
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APISource fetches pages through the MediaWiki Action API. Redirects are
// followed server-side, so the returned title is canonical. Link lists
// longer than one batch are collected via plcontinue continuation.
type APISource struct {
	BaseURL   string
	UserAgent string
	Client    HTTPClient
}

// NewAPISource creates an API source for the given wiki language
func NewAPISource(language, userAgent string) *APISource {
	return &APISource{
		BaseURL:   fmt.Sprintf("https://%s.wikipedia.org/w/api.php", language),
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type apiResponse struct {
	Continue *struct {
		Plcontinue string `json:"plcontinue"`
	} `json:"continue"`
	Query struct {
		Pages []apiPage `json:"pages"`
	} `json:"query"`
}

type apiPage struct {
	Title   string `json:"title"`
	Missing bool   `json:"missing"`
	Extract string `json:"extract"`
	FullURL string `json:"fullurl"`
	Links   []struct {
		NS    int    `json:"ns"`
		Title string `json:"title"`
	} `json:"links"`
}

// Fetch resolves a title via the Action API
func (s *APISource) Fetch(ctx context.Context, title string) (*Page, error) {
	page := &Page{}
	seen := make(map[string]bool)
	plcontinue := ""

	for {
		response, err := s.request(ctx, title, plcontinue)
		if err != nil {
			return nil, err
		}
		if len(response.Query.Pages) == 0 {
			return nil, fmt.Errorf("%q: %w", title, ErrPageMissing)
		}

		result := response.Query.Pages[0]
		if result.Missing {
			return nil, fmt.Errorf("%q: %w", title, ErrPageMissing)
		}

		if page.Title == "" {
			page.Title = result.Title
			page.Summary = result.Extract
			page.URL = result.FullURL
		}

		for _, link := range result.Links {
			// Namespace 0 is article space; talk/file/category
			// links are not part of the article graph.
			if link.NS != 0 || seen[link.Title] {
				continue
			}
			seen[link.Title] = true
			page.Links = append(page.Links, link.Title)
		}

		if response.Continue == nil || response.Continue.Plcontinue == "" {
			break
		}
		plcontinue = response.Continue.Plcontinue
	}

	return page, nil
}

func (s *APISource) request(ctx context.Context, title, plcontinue string) (*apiResponse, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("redirects", "1")
	params.Set("prop", "extracts|info|links")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("inprop", "url")
	params.Set("pllimit", "max")
	params.Set("titles", title)
	if plcontinue != "" {
		params.Set("plcontinue", plcontinue)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build API request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%q: %w", title, ErrPageMissing)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request returned status %d", resp.StatusCode)
	}

	var response apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}
	return &response, nil
}
