package app

import (
	"net/url"
	"strings"

	"github.com/yourusername/tiktok-bulk-go/internal/domain"
)

// URLValidator normalizes and whitelists submitted URLs. It is purely
// structural: no network access happens during validation.
type URLValidator struct {
	maxURLs int
	domains []string
}

// NewURLValidator creates a validator from the batch configuration.
func NewURLValidator(config *domain.BatchConfig) *URLValidator {
	domains := make([]string, len(config.AllowedDomains))
	for i, d := range config.AllowedDomains {
		domains[i] = strings.ToLower(d)
	}
	return &URLValidator{
		maxURLs: config.MaxURLs,
		domains: domains,
	}
}

// Validate cleans a raw URL list: entries are trimmed, empty and off-domain
// entries are dropped, duplicates keep their first occurrence, and input
// order is preserved. It fails with an InvalidInputError when nothing valid
// remains or the batch ceiling is exceeded.
func (v *URLValidator) Validate(raw []string) ([]string, error) {
	cleaned := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, entry := range raw {
		u := strings.TrimSpace(entry)
		if u == "" {
			continue
		}
		if !v.isAllowed(u) {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		cleaned = append(cleaned, u)
	}

	if len(cleaned) == 0 {
		return nil, domain.NewInvalidInput("at least one TikTok URL is required")
	}
	if len(cleaned) > v.maxURLs {
		return nil, domain.NewInvalidInput("a batch may contain at most %d URLs", v.maxURLs)
	}

	return cleaned, nil
}

// isAllowed checks scheme and hostname against the domain whitelist.
// Subdomains of an allowed domain are accepted via suffix match.
func (v *URLValidator) isAllowed(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	hostname := strings.ToLower(parsed.Hostname())
	if hostname == "" {
		return false
	}
	for _, d := range v.domains {
		if hostname == d || strings.HasSuffix(hostname, "."+d) {
			return true
		}
	}
	return false
}
