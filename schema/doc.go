// Package schema is the contract's bridge to the JSON Schema engine.
//
// A Repository is created per contract with the draft matching the OpenAPI
// version (draft 4 for 3.0.x, 2020-12 for 3.1.x). Resolve inlines every
// structural $ref of the document, rewrites schema references to absolute
// URIs and registers the result, after which Validator compiles individual
// schemas that may reference any component:
//
//	repo := schema.NewRepository(parser.OASVersion31x)
//	resolved, err := repo.Resolve(doc)
//	if err != nil {
//		return err
//	}
//	v, err := repo.Validator(map[string]any{"type": "integer"})
//	if err != nil {
//		return err
//	}
//	res := v.Validate(int64(42)) // res.Valid == true
//
// The package also carries small helpers that read schema keywords
// (TypeOf, ShapeOf, IsBinary) used when building the contract model.
package schema
