package parser

import (
	"strings"

	"github.com/erraggy/oascontract/oaserrors"
)

// OASVersion identifies the supported OpenAPI version families.
type OASVersion int

const (
	// Unknown represents an unrecognized version
	Unknown OASVersion = iota
	// OASVersion30x covers 3.0.0 through 3.0.4
	OASVersion30x
	// OASVersion31x covers 3.1.0 through 3.1.2
	OASVersion31x
)

// String returns the family as "3.0" or "3.1".
func (v OASVersion) String() string {
	switch v {
	case OASVersion30x:
		return "3.0"
	case OASVersion31x:
		return "3.1"
	default:
		return "unknown"
	}
}

// DetectVersion reads the "openapi" field of a decoded document.
// A missing or non-string field is INVALID_SPEC; a value that is neither
// 3.0.x nor 3.1.x is UNSUPPORTED_SPEC.
func DetectVersion(data map[string]any) (string, OASVersion, error) {
	raw, present := data["openapi"]
	if !present {
		if _, swagger := data["swagger"]; swagger {
			return "", Unknown, oaserrors.New(oaserrors.KindUnsupportedSpec, "openapi", "swagger 2.0 documents are not supported")
		}
		return "", Unknown, oaserrors.New(oaserrors.KindInvalidSpec, "openapi", "document must contain an 'openapi' field at the root level")
	}
	version, ok := raw.(string)
	if !ok {
		return "", Unknown, oaserrors.New(oaserrors.KindInvalidSpec, "openapi", "'openapi' must be a string, got %T", raw)
	}
	switch {
	case strings.HasPrefix(version, "3.0."):
		return version, OASVersion30x, nil
	case strings.HasPrefix(version, "3.1."):
		return version, OASVersion31x, nil
	default:
		return version, Unknown, oaserrors.New(oaserrors.KindUnsupportedSpec, "openapi", "unsupported OpenAPI version %q", version)
	}
}
