// Package validation checks live request and response data against a
// contract and converts it into typed values.
//
// An Engine takes raw wire values (the path, the undecoded query string,
// multi-valued headers, cookies and the body buffer), routes the request
// to its operation, runs every declared parameter through its style codec
// and the body through the content registry, and submits each decoded
// value to the schema engine:
//
//	c, _ := contract.Load("openapi.yaml")
//	engine := validation.New(c)
//
//	req, err := engine.ValidateRequest(&validation.RawRequest{
//		Method: "GET",
//		Path:   "/pets/42",
//		Query:  "color=blue,black",
//	}, "")
//	if err != nil {
//		// err is an *oaserrors.Error; the first failure wins
//	}
//	petID, _ := req.Path("petId") // int64(42)
//
// Validation is fail-fast: the first failing parameter or body aborts the
// call with a single typed error. Schema failures are INVALID_VALUE and
// carry the engine's diagnostics.
//
// An Engine holds no mutable state and may be used from many goroutines.
package validation
