// internal/words/dictionary.go
//
// Remote dictionary client.
//
// Contract of the remote service:
//   GET {base}/words/{word}          → 200 known word, 404 unknown word
//   GET {base}/random?min=..&max=..  → 200 {"word":"crane"}
//
// Validity answers are cached (they never change for a given word) and every
// outbound request waits on a shared rate limiter. The HTTP timeout lives here,
// never in the engine.

package words

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// DictionaryConfig configures a Dictionary client.
type DictionaryConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RPS       float64 // requests per second; <= 0 disables throttling
	CacheSize int
}

// Dictionary is a Provider backed by a remote HTTP service.
type Dictionary struct {
	base    string
	client  *http.Client
	limiter *rate.Limiter
	cache   *lru.Cache[string, bool]
}

// NewDictionary validates cfg and builds a client.
func NewDictionary(cfg DictionaryConfig) (*Dictionary, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("words: dictionary base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("words: dictionary base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 4096
	}
	cache, err := lru.New[string, bool](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("words: dictionary cache: %w", err)
	}
	limit := rate.Inf
	burst := 1
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
		burst = max(1, int(cfg.RPS))
	}
	return &Dictionary{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		cache:   cache,
	}, nil
}

// IsValidWord asks the service whether word exists.
func (d *Dictionary) IsValidWord(ctx context.Context, word string) (bool, error) {
	w := strings.ToLower(strings.TrimSpace(word))
	if ok, hit := d.cache.Get(w); hit {
		return ok, nil
	}

	resp, err := d.get(ctx, "/words/"+url.PathEscape(w))
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var ok bool
	switch resp.StatusCode {
	case http.StatusOK:
		ok = true
	case http.StatusNotFound:
		ok = false
	default:
		return false, fmt.Errorf("%w: lookup %q: status %d", ErrBadResponse, w, resp.StatusCode)
	}
	d.cache.Add(w, ok)
	return ok, nil
}

type randomWordRes struct {
	Word string `json:"word"`
}

// RandomWord asks the service for a word within the difficulty range.
func (d *Dictionary) RandomWord(ctx context.Context, difficulty DifficultyRange) (string, error) {
	path := "/random"
	if !difficulty.IsZero() {
		q := url.Values{}
		q.Set("min", strconv.FormatFloat(difficulty.Min, 'f', -1, 64))
		q.Set("max", strconv.FormatFloat(difficulty.Max, 'f', -1, 64))
		path += "?" + q.Encode()
	}

	resp, err := d.get(ctx, path)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: random word: status %d", ErrBadResponse, resp.StatusCode)
	}

	var body randomWordRes
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode random word: %v", ErrBadResponse, err)
	}
	w := strings.ToLower(strings.TrimSpace(body.Word))
	if len(w) != 5 || !isAlpha(w) {
		return "", fmt.Errorf("%w: random word %q is not 5 letters", ErrBadResponse, body.Word)
	}
	// A word the service handed out is by definition valid.
	d.cache.Add(w, true)
	return w, nil
}

func (d *Dictionary) get(ctx context.Context, path string) (*http.Response, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("words: rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.base+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("words: dictionary request: %w", err)
	}
	return resp, nil
}
