// Package httpvalidator adapts the validation engine to net/http.
//
// It extracts the method, escaped path, raw query, headers, cookies and
// body from an *http.Request and hands them to a validation.Engine. The
// body is read once, bounded by a size limit, and put back so handlers can
// read it again.
//
// # Basic Usage
//
//	c, err := contract.Load("openapi.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := httpvalidator.New(c)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	validated, err := v.ValidateRequest(req)
//	if err != nil {
//	    // *oaserrors.Error, e.g. INVALID_VALUE at "query.limit"
//	}
//	petID, _ := validated.Path("petId")
//
// # Middleware
//
// Middleware rejects invalid requests with an RFC 9457 problem document:
// 404 for unknown operations, 415 for undeclared media types, 413 for
// oversized bodies and 400 for everything else. It stamps an X-Request-Id
// header when the client sent none and makes the validated request
// available to the handler:
//
//	http.Handle("/", v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	    validated, _ := httpvalidator.FromContext(r.Context())
//	    ...
//	})))
//
// With WithResponseValidation the middleware also buffers and checks
// responses. Failures are logged at Warn and answered with a 500 problem
// document. WithResponseErrorHandler reports them instead and lets the
// original response through.
//
// # Functional Options
//
// For one-off validations, use the functional options API:
//
//	validated, err := httpvalidator.ValidateRequestWithOptions(
//	    req,
//	    httpvalidator.WithFilePath("openapi.yaml"),
//	)
package httpvalidator
