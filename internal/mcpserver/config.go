package mcpserver

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/erraggy/oascontract/httpvalidator"
)

// envPrefix prefixes every environment variable the server reads.
const envPrefix = "OASCONTRACT_"

// serverConfig holds the tunables of the tool server. It is read once at
// startup; tests swap it through withConfig.
type serverConfig struct {
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheURLTTL        time.Duration
	CacheContentTTL    time.Duration
	CacheSweepInterval time.Duration

	// ListLimit is the list_operations page size when none is given,
	// MaxLimit the largest page a caller may ask for.
	ListLimit int
	MaxLimit  int

	// MaxInlineSize bounds inline and fetched documents, MaxBodySize the
	// bodies handed to the validate tools. Both accept KiB/MiB suffixes.
	MaxInlineSize int64
	MaxBodySize   int64

	AllowPrivateIPs  bool
	FormatAssertions bool
}

var cfg = loadConfig()

func loadConfig() *serverConfig {
	c := &serverConfig{
		CacheEnabled:       env("CACHE_ENABLED", true, strconv.ParseBool),
		CacheMaxSize:       env("CACHE_MAX_SIZE", 10, positive(strconv.Atoi)),
		CacheFileTTL:       env("CACHE_FILE_TTL", 15*time.Minute, positive(time.ParseDuration)),
		CacheURLTTL:        env("CACHE_URL_TTL", 5*time.Minute, positive(time.ParseDuration)),
		CacheContentTTL:    env("CACHE_CONTENT_TTL", 15*time.Minute, positive(time.ParseDuration)),
		CacheSweepInterval: env("CACHE_SWEEP_INTERVAL", time.Minute, positive(time.ParseDuration)),
		ListLimit:          env("LIST_LIMIT", 100, positive(strconv.Atoi)),
		MaxLimit:           env("MAX_LIMIT", 1000, positive(strconv.Atoi)),
		MaxInlineSize:      env("MAX_INLINE_SIZE", int64(10<<20), positive(parseSize)),
		MaxBodySize:        env("MAX_BODY_SIZE", int64(httpvalidator.DefaultMaxBodySize), positive(parseSize)),
		AllowPrivateIPs:    env("ALLOW_PRIVATE_IPS", false, strconv.ParseBool),
		FormatAssertions:   env("FORMAT_ASSERTIONS", false, strconv.ParseBool),
	}
	if c.ListLimit > c.MaxLimit {
		slog.Warn("list limit above max limit, clamping", "list_limit", c.ListLimit, "max_limit", c.MaxLimit)
		c.ListLimit = c.MaxLimit
	}
	return c
}

// env reads envPrefix+name with parse. Unset variables yield fallback;
// unparsable ones log a warning and yield fallback too.
func env[T any](name string, fallback T, parse func(string) (T, error)) T {
	key := envPrefix + name
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		slog.Warn("ignoring invalid environment variable", "key", key, "value", raw, "default", fallback, "error", err)
		return fallback
	}
	return v
}

type number interface {
	~int | ~int64
}

// positive rejects zero and negative results of parse.
func positive[T number](parse func(string) (T, error)) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := parse(s)
		if err != nil {
			return v, err
		}
		if v <= 0 {
			return v, fmt.Errorf("%v is not positive", v)
		}
		return v, nil
	}
}

var sizeSuffixes = []struct {
	suffix string
	scale  int64
}{
	{"KiB", 1 << 10},
	{"MiB", 1 << 20},
	{"GiB", 1 << 30},
}

// parseSize parses a byte count with an optional binary unit suffix.
func parseSize(s string) (int64, error) {
	scale := int64(1)
	for _, u := range sizeSuffixes {
		if trimmed, ok := strings.CutSuffix(s, u.suffix); ok {
			s, scale = strings.TrimSpace(trimmed), u.scale
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return n * scale, nil
}
