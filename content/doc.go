// Package content negotiates request and response bodies.
//
// ParseMediaType turns a Content-Type header into a MediaTypeInfo, and
// Includes decides whether a concrete media type is acceptable for a
// (possibly wildcarded) declared one. A Registry maps media types to
// analysers; each analyser is used in two steps, Check then Transform,
// and only the *Checked value returned by Check can be transformed:
//
//	reg := content.DefaultRegistry()
//	info, err := content.ParseMediaType(r.Header.Get("Content-Type"))
//	if err != nil {
//		return err
//	}
//	factory, ok := reg.Lookup(info)
//	if !ok {
//		return errUnsupported
//	}
//	checked, err := factory(content.Input{Info: info, Body: body, Logger: logger}).Check()
//	if err != nil {
//		return err
//	}
//	value, err := checked.Transform()
//
// Built-in analysers cover JSON (including application/vnd.*+json),
// application/octet-stream, text/plain with charset decoding,
// application/x-www-form-urlencoded and multipart/form-data.
package content
