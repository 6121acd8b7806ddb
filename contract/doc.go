// Package contract builds the immutable in-memory model of an OpenAPI
// 3.0.x or 3.1.x document.
//
// New resolves the document through a schema.Repository and walks it once:
// paths are parsed and put in mount order (concrete paths first, then
// templated ones sorted by shape), operations are derived from the method
// keys, path and operation parameters are merged, and every schema is
// compiled. Structural problems are INVALID_SPEC; constructs that are valid
// OpenAPI but not implemented (server variables, content parameters,
// unsupported media types) are UNSUPPORTED_FEATURE.
//
//	c, err := contract.Load("openapi.yaml", contract.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	op, err := c.FindOperation("/pets/42", "GET")
//
// A Contract never changes after construction and may be shared freely
// between goroutines.
package contract
