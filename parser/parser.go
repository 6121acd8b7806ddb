package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oascontract/oaserrors"
)

// DefaultMaxFileSize is the default limit on the size of a contract document.
const DefaultMaxFileSize int64 = 64 << 20

// Parser loads OpenAPI documents from files, readers or bytes.
type Parser struct {
	// Logger receives structured diagnostics. Defaults to NopLogger.
	Logger Logger

	// MaxFileSize limits the size of a document in bytes (0 = DefaultMaxFileSize).
	MaxFileSize int64
}

// New creates a new Parser with default settings.
func New() *Parser {
	return &Parser{}
}

func (p *Parser) log() Logger {
	if p.Logger == nil {
		return NopLogger{}
	}
	return p.Logger
}

func (p *Parser) maxFileSize() int64 {
	if p.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return p.MaxFileSize
}

// SourceFormat represents the format of the source document.
type SourceFormat string

const (
	// SourceFormatYAML indicates a YAML document
	SourceFormatYAML SourceFormat = "yaml"
	// SourceFormatJSON indicates a JSON document
	SourceFormatJSON SourceFormat = "json"
	// SourceFormatUnknown indicates the format could not be determined
	SourceFormatUnknown SourceFormat = "unknown"
)

// ParseResult holds a loaded document and its metadata.
type ParseResult struct {
	// SourcePath is the file the document was read from, or a synthetic name
	SourcePath string
	// SourceFormat is the detected input format
	SourceFormat SourceFormat
	// Version is the raw "openapi" field
	Version string
	// OASVersion is the detected version family
	OASVersion OASVersion
	// Data is the decoded document with JSON-compatible values only
	Data map[string]any
	// LoadTime is how long reading the source took
	LoadTime time.Duration
	// SourceSize is the size of the source in bytes
	SourceSize int64
}

// Parse reads and decodes the document at specPath.
func (p *Parser) Parse(specPath string) (*ParseResult, error) {
	start := time.Now()
	info, err := os.Stat(specPath)
	if err != nil {
		return nil, fmt.Errorf("parser: failed to read file: %w", err)
	}
	if info.Size() > p.maxFileSize() {
		return nil, fmt.Errorf("parser: file %s is %d bytes, exceeding the %d byte limit", specPath, info.Size(), p.maxFileSize())
	}
	data, err := os.ReadFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("parser: failed to read file: %w", err)
	}
	loadTime := time.Since(start)

	res, err := p.parseBytes(data)
	if err != nil {
		return nil, err
	}
	res.SourcePath = specPath
	res.LoadTime = loadTime
	if f := detectFormatFromPath(specPath); f != SourceFormatUnknown {
		res.SourceFormat = f
	}
	p.log().Debug("loaded contract document", "path", specPath, "bytes", res.SourceSize, "version", res.Version)
	return res, nil
}

// ParseReader reads and decodes a document from r.
func (p *Parser) ParseReader(r io.Reader) (*ParseResult, error) {
	start := time.Now()
	data, err := io.ReadAll(io.LimitReader(r, p.maxFileSize()+1))
	if err != nil {
		return nil, fmt.Errorf("parser: failed to read data: %w", err)
	}
	if int64(len(data)) > p.maxFileSize() {
		return nil, fmt.Errorf("parser: input exceeds the %d byte limit", p.maxFileSize())
	}
	res, err := p.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	res.LoadTime = time.Since(start)
	return res, nil
}

// ParseBytes decodes a document held in memory.
// SourcePath is set to ParseBytes.json or ParseBytes.yaml.
func (p *Parser) ParseBytes(data []byte) (*ParseResult, error) {
	res, err := p.parseBytes(data)
	if err != nil {
		return nil, err
	}
	if res.SourceFormat == SourceFormatJSON {
		res.SourcePath = "ParseBytes.json"
	} else {
		res.SourcePath = "ParseBytes.yaml"
	}
	return res, nil
}

func (p *Parser) parseBytes(data []byte) (*ParseResult, error) {
	// YAML is a superset of JSON, one decoder serves both.
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, oaserrors.Wrap(oaserrors.KindInvalidSpec, "", err, "failed to parse YAML/JSON")
	}
	doc, ok := Normalize(raw).(map[string]any)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, "", "document root must be an object")
	}

	version, oasVersion, err := DetectVersion(doc)
	if err != nil {
		return nil, err
	}

	return &ParseResult{
		SourceFormat: detectFormatFromContent(data),
		Version:      version,
		OASVersion:   oasVersion,
		Data:         doc,
		SourceSize:   int64(len(data)),
	}, nil
}

// Normalize converts YAML-decoded values into their JSON equivalents:
// mappings with non-string keys (e.g. unquoted status codes) become
// map[string]any, integer types become int64 and timestamps become strings.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = Normalize(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = Normalize(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = Normalize(e)
		}
		return t
	case int:
		return int64(t)
	case uint64:
		return float64(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return v
	}
}

func detectFormatFromContent(data []byte) SourceFormat {
	trimmed := bytes.TrimLeft(data, " \t\n\r")
	if len(trimmed) == 0 {
		return SourceFormatUnknown
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return SourceFormatJSON
	}
	return SourceFormatYAML
}

func detectFormatFromPath(path string) SourceFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SourceFormatJSON
	case ".yaml", ".yml":
		return SourceFormatYAML
	default:
		return SourceFormatUnknown
	}
}
