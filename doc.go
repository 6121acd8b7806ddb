// Package oascontract routes and validates HTTP traffic against OpenAPI 3.0
// and 3.1 documents.
//
// A document is loaded once into an immutable contract, which is then safe
// to share across goroutines. The contract routes runtime paths to
// operations, decodes parameters from their declared serialization style
// and validates request and response bodies by media type.
//
// # Packages
//
//   - parser: read JSON or YAML documents into plain JSON values
//   - schema: resolve references and compile JSON Schemas
//   - router: match runtime paths against path templates
//   - style: decode and render parameter styles (simple, label, matrix, form, deepObject)
//   - content: parse media types and analyze bodies (JSON, text, form, multipart)
//   - contract: the resolved OpenAPI model and its lookups
//   - validation: the request and response validation engine
//   - httpvalidator: net/http adapter and middleware
//   - oaserrors: the typed error shared by every package
//
// # Quick Start
//
//	c, err := contract.Load("openapi.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	engine := validation.New(c)
//	req, err := engine.ValidateRequest(&validation.RawRequest{
//		Method: "GET",
//		Path:   "/v1/pets/42",
//	}, "")
//	if err != nil {
//		var oe *oaserrors.Error
//		if errors.As(err, &oe) {
//			fmt.Println(oe.Kind, oe.Location)
//		}
//		return
//	}
//	petID, _ := req.Path("petId") // int64(42)
//
// # Errors
//
// Every failure is an *oaserrors.Error carrying a Kind. Construction fails
// with INVALID_SPEC, UNSUPPORTED_SPEC or UNSUPPORTED_FEATURE; validation
// fails with one of the request or response kinds. Each kind has a sentinel
// for errors.Is.
//
// # Command line
//
// The oascontract command exposes the same engine: inspect, route,
// validate-request, validate-response, render, transform and an MCP server
// over stdio.
package oascontract
