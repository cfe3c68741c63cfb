package polymarket

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Profile pages render the wallet address into an embedded JSON payload;
// the precise pattern is preferred over a bare address match because the
// page also references market contract addresses.
var (
	userAddressRe = regexp.MustCompile(`(?i)"user":"(0x[a-fA-F0-9]{40})"`)
	anyAddressRe  = regexp.MustCompile(`0x[a-fA-F0-9]{40}`)
)

// ProfileScraper resolves a trader's wallet address from their public
// Polymarket profile page.
type ProfileScraper struct {
	httpClient *http.Client
}

// NewProfileScraper creates a ProfileScraper. Profile pages are slow to
// render server-side, so the timeout is kept short to fail fast.
func NewProfileScraper() *ProfileScraper {
	return &ProfileScraper{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// ScrapeAddress fetches the profile page and extracts the wallet address,
// preferring the embedded user field and falling back to the first address
// found anywhere in the page. Returns an error when no address is present.
func (s *ProfileScraper) ScrapeAddress(ctx context.Context, profileURL string) (string, error) {
	if strings.TrimSpace(profileURL) == "" {
		return "", fmt.Errorf("polymarket/profile: empty profile url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return "", fmt.Errorf("polymarket/profile: create request: %w", err)
	}
	// Polymarket serves an empty shell to unknown agents.
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("polymarket/profile: fetch %s: %w", profileURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("polymarket/profile: fetch %s: HTTP %d", profileURL, resp.StatusCode)
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("polymarket/profile: read %s: %w", profileURL, err)
	}

	if m := userAddressRe.FindSubmatch(html); m != nil {
		return string(m[1]), nil
	}
	if m := anyAddressRe.Find(html); m != nil {
		return string(m), nil
	}
	return "", fmt.Errorf("polymarket/profile: no wallet address found in %s", profileURL)
}
