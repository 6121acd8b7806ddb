package parser

import (
	"fmt"
	"io"
)

// Option is a function that configures a parse operation
type Option func(*parseConfig) error

type parseConfig struct {
	// Input source (exactly one must be set)
	filePath *string
	reader   io.Reader
	bytes    []byte

	logger      Logger
	maxFileSize int64
}

// ParseWithOptions parses an OpenAPI document using functional options.
//
//	result, err := parser.ParseWithOptions(
//	    parser.WithFilePath("openapi.yaml"),
//	    parser.WithLogger(logger),
//	)
func ParseWithOptions(opts ...Option) (*ParseResult, error) {
	cfg := &parseConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("parser: invalid options: %w", err)
		}
	}

	sources := 0
	if cfg.filePath != nil {
		sources++
	}
	if cfg.reader != nil {
		sources++
	}
	if cfg.bytes != nil {
		sources++
	}
	if sources != 1 {
		return nil, fmt.Errorf("parser: exactly one input source must be specified (got %d)", sources)
	}

	p := &Parser{Logger: cfg.logger, MaxFileSize: cfg.maxFileSize}
	switch {
	case cfg.filePath != nil:
		return p.Parse(*cfg.filePath)
	case cfg.reader != nil:
		return p.ParseReader(cfg.reader)
	default:
		return p.ParseBytes(cfg.bytes)
	}
}

// WithFilePath reads the document from a file.
func WithFilePath(path string) Option {
	return func(c *parseConfig) error {
		c.filePath = &path
		return nil
	}
}

// WithReader reads the document from r.
func WithReader(r io.Reader) Option {
	return func(c *parseConfig) error {
		if r == nil {
			return fmt.Errorf("reader cannot be nil")
		}
		c.reader = r
		return nil
	}
}

// WithBytes decodes the document from memory.
func WithBytes(data []byte) Option {
	return func(c *parseConfig) error {
		if data == nil {
			return fmt.Errorf("bytes cannot be nil")
		}
		c.bytes = data
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(c *parseConfig) error {
		c.logger = l
		return nil
	}
}

// WithMaxFileSize limits the document size in bytes.
func WithMaxFileSize(n int64) Option {
	return func(c *parseConfig) error {
		if n < 0 {
			return fmt.Errorf("max file size cannot be negative")
		}
		c.maxFileSize = n
		return nil
	}
}
