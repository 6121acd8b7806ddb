// Package router maps runtime request paths onto OpenAPI path templates.
//
// Templates are bucketed by segment count. A concrete template matching
// the path literally is returned immediately. Otherwise each templated
// candidate is scored from the left: a literal segment at index i that
// matches adds len-i, a placeholder adds nothing, and any literal mismatch
// disqualifies the candidate. The highest score wins, and ties go to the
// candidate that comes first in mount order.
//
//	r := router.New(templates, router.WithBasePath("/v1"))
//	m, err := r.Route("/v1/pets/42")
//	// m.Template.String() == "/pets/{petId}", m.Params["petId"] == "42"
package router
