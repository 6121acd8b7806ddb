// Package oaserrors provides structured error types for the oascontract library.
//
// Import path: github.com/erraggy/oascontract/oaserrors
//
// All failures are reported as [*Error] values. The [Kind] field is a stable
// discriminant split into two families:
//
// Contract construction (fatal, surfaced once when the contract is built):
//
//   - [KindInvalidSpec]: malformed, contradictory or ambiguous document
//   - [KindUnsupportedSpec]: unrecognized "openapi" version
//   - [KindUnsupportedFeature]: recognized construct that is not implemented
//
// Validation (surfaced per request or response, first failure wins):
//
//   - [KindMissingRequiredParameter]
//   - [KindInvalidValueFormat]: wire text does not match the style grammar
//   - [KindUnsupportedValueFormat]: style or media type combination not implemented
//   - [KindIllegalValue]: present but undecodable
//   - [KindInvalidValue]: decoded but rejected by the schema; carries [Diagnostic] values
//   - [KindMissingOperation] and [KindMissingResponse]
//
// # Sentinel Errors
//
// Each kind has a sentinel for errors.Is():
//
//	_, err := engine.ValidateRequest(raw, "showPetById")
//	if errors.Is(err, oaserrors.ErrInvalidValue) {
//	    var e *oaserrors.Error
//	    errors.As(err, &e)
//	    for _, d := range e.Diagnostics {
//	        fmt.Println(d)
//	    }
//	}
package oaserrors
