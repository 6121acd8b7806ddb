package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/erraggy/oascontract/contract"
	"github.com/erraggy/oascontract/parser"
)

// specInput represents the ways a contract can be provided to a tool.
// Exactly one field must be set.
type specInput struct {
	File       string `json:"file,omitempty"        jsonschema:"Path to an OpenAPI 3.0/3.1 file on disk"`
	URL        string `json:"url,omitempty"         jsonschema:"URL to fetch an OpenAPI 3.0/3.1 document from"`
	Content    string `json:"content,omitempty"     jsonschema:"Inline OpenAPI document content (JSON or YAML)"`
	ContractID string `json:"contract_id,omitempty" jsonschema:"Handle returned by an earlier call; reuses the cached contract"`
}

// makeCacheKey creates a cache key for the given spec input, or "" when
// the input cannot be cached.
func makeCacheKey(s specInput) string {
	switch {
	case s.File != "":
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case s.Content != "":
		h := sha256.Sum256([]byte(s.Content))
		return "content:" + hex.EncodeToString(h[:])
	case s.URL != "":
		return "url:" + s.URL
	default:
		return ""
	}
}

// resolve returns the contract for whichever input was provided together
// with its contract_id. The id is empty when caching is disabled.
func (s specInput) resolve(ctx context.Context) (*contract.Contract, string, error) {
	count := 0
	for _, v := range []string{s.File, s.URL, s.Content, s.ContractID} {
		if v != "" {
			count++
		}
	}
	if count != 1 {
		return nil, "", fmt.Errorf("exactly one of file, url, content, or contract_id must be provided (got %d)", count)
	}

	if s.ContractID != "" {
		e := specCache.byID(s.ContractID)
		if e == nil {
			return nil, "", fmt.Errorf("unknown or expired contract_id %q; provide the spec again", s.ContractID)
		}
		return e.contract, e.id, nil
	}

	if s.Content != "" && int64(len(s.Content)) > cfg.MaxInlineSize {
		return nil, "", fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set OASCONTRACT_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}

	var key string
	var ttl time.Duration
	if cfg.CacheEnabled {
		key = makeCacheKey(s)
		switch {
		case s.File != "":
			ttl = cfg.CacheFileTTL
		case s.URL != "":
			ttl = cfg.CacheURLTTL
		default:
			ttl = cfg.CacheContentTTL
		}
	}
	if key != "" {
		if e := specCache.get(key); e != nil {
			return e.contract, e.id, nil
		}
	}

	var opts []parser.Option
	switch {
	case s.File != "":
		opts = append(opts, parser.WithFilePath(s.File))
	case s.URL != "":
		data, err := newSpecFetcher(cfg.AllowPrivateIPs, cfg.MaxInlineSize).fetch(ctx, s.URL)
		if err != nil {
			return nil, "", err
		}
		opts = append(opts, parser.WithBytes(data))
	default:
		opts = append(opts, parser.WithBytes([]byte(s.Content)))
	}
	opts = append(opts, parser.WithLogger(logger))

	res, err := parser.ParseWithOptions(opts...)
	if err != nil {
		return nil, "", err
	}
	ct, err := contract.FromParseResult(res,
		contract.WithLogger(logger),
		contract.WithFormatAssertions(cfg.FormatAssertions))
	if err != nil {
		return nil, "", err
	}

	if key == "" {
		return ct, "", nil
	}
	e := specCache.put(key, ct, ttl)
	return ct, e.id, nil
}
