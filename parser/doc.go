// Package parser loads OpenAPI 3.0.x and 3.1.x documents from JSON or YAML
// into JSON-compatible Go values and detects their version.
//
// The result's Data map is the raw, unresolved document. It is handed to
// [github.com/erraggy/oascontract/schema.Repository.Resolve] and then to
// [github.com/erraggy/oascontract/contract.New].
//
//	result, err := parser.ParseWithOptions(parser.WithFilePath("openapi.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Version, result.OASVersion)
//
// The package also defines the [Logger] interface shared by the rest of the
// module, with [NopLogger] and [SlogAdapter] implementations.
package parser
