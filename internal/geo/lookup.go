// Package geo resolves a ZIP code to its two-letter state when a submission
// arrives without one.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	httpclient "advisor-routing/internal/common/http"
	"advisor-routing/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

var ErrUnknownZip = errors.New("unknown zip code")

// StateResolver maps a ZIP code to a state code.
type StateResolver interface {
	StateForZip(ctx context.Context, zip string) (string, error)
}

type zippopotamResponse struct {
	Places []struct {
		StateAbbreviation string `json:"state abbreviation"`
	} `json:"places"`
}

// ZipLookup queries a zippopotam.us-compatible service and caches answers in
// Redis. The cache is optional.
type ZipLookup struct {
	baseURL  string
	http     *httpclient.Client
	cache    redis.Cmdable
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewZipLookup(baseURL string, timeout time.Duration, cache redis.Cmdable, cacheTTL time.Duration, log logger.Logger) *ZipLookup {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &ZipLookup{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpclient.NewClient(timeout),
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

func cacheKey(zip string) string {
	return "zip:state:" + zip
}

func (z *ZipLookup) StateForZip(ctx context.Context, zip string) (string, error) {
	zip = normalizeZip(zip)
	if zip == "" {
		return "", ErrUnknownZip
	}

	if z.cache != nil {
		state, err := z.cache.Get(ctx, cacheKey(zip)).Result()
		if err == nil && state != "" {
			return state, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			z.logger.Warn("zip cache read failed", map[string]interface{}{"zip": zip, "error": err})
		}
	}

	var resp zippopotamResponse
	if err := z.http.GetJSON(ctx, z.baseURL+"/"+zip, nil, &resp); err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == 404 {
			return "", ErrUnknownZip
		}
		return "", fmt.Errorf("zip lookup %s: %w", zip, err)
	}
	if len(resp.Places) == 0 || resp.Places[0].StateAbbreviation == "" {
		return "", ErrUnknownZip
	}
	state := strings.ToUpper(resp.Places[0].StateAbbreviation)

	if z.cache != nil {
		if err := z.cache.Set(ctx, cacheKey(zip), state, z.cacheTTL).Err(); err != nil {
			z.logger.Warn("zip cache write failed", map[string]interface{}{"zip": zip, "error": err})
		}
	}
	return state, nil
}

// normalizeZip keeps the five-digit prefix of a ZIP or ZIP+4.
func normalizeZip(zip string) string {
	zip = strings.TrimSpace(zip)
	if i := strings.IndexByte(zip, '-'); i > 0 {
		zip = zip[:i]
	}
	return zip
}
