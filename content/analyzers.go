package content

import (
	"bytes"
	"net/url"
	"strings"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/style"
)

// decodeJSON decodes a complete JSON document with integral numbers as
// int64.
func decodeJSON(data []byte, loc string) (any, error) {
	if !gojson.Valid(data) {
		return nil, oaserrors.New(oaserrors.KindIllegalValue, loc, "malformed JSON")
	}
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, oaserrors.Wrap(oaserrors.KindIllegalValue, loc, err, "malformed JSON")
	}
	return style.NormalizeNumbers(v), nil
}

type jsonAnalyzer struct{ in Input }

func newJSON(in Input) Analyzer { return jsonAnalyzer{in: in} }

func (a jsonAnalyzer) Check() (*Checked, error) {
	v, err := decodeJSON(a.in.Body, "body")
	if err != nil {
		return nil, err
	}
	return NewChecked(func() (any, error) { return v, nil }), nil
}

type binaryAnalyzer struct{ in Input }

func newBinary(in Input) Analyzer { return binaryAnalyzer{in: in} }

func (a binaryAnalyzer) Check() (*Checked, error) {
	body := a.in.Body
	return NewChecked(func() (any, error) { return body, nil }), nil
}

type textAnalyzer struct{ in Input }

func newText(in Input) Analyzer { return textAnalyzer{in: in} }

func (a textAnalyzer) Check() (*Checked, error) {
	s, err := decodeText(a.in.Info, a.in.Body, "body")
	if err != nil {
		return nil, err
	}
	return NewChecked(func() (any, error) { return s, nil }), nil
}

// decodeText converts body to UTF-8 according to the charset parameter.
// No charset means UTF-8.
func decodeText(info MediaTypeInfo, body []byte, loc string) (string, error) {
	charset, ok := info.Param("charset")
	if !ok || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "utf8") || strings.EqualFold(charset, "us-ascii") {
		if !utf8.Valid(body) {
			return "", oaserrors.New(oaserrors.KindIllegalValue, loc, "text is not valid UTF-8")
		}
		return string(body), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", oaserrors.Wrap(oaserrors.KindUnsupportedValueFormat, loc, err, "unsupported charset %q", charset)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", oaserrors.Wrap(oaserrors.KindIllegalValue, loc, err, "text is not valid %s", charset)
	}
	return string(decoded), nil
}

// urlEncodedAnalyzer reads application/x-www-form-urlencoded bodies as an
// exploded form object. Repeated keys collect into an array.
type urlEncodedAnalyzer struct{ in Input }

func newURLEncoded(in Input) Analyzer { return urlEncodedAnalyzer{in: in} }

func (a urlEncodedAnalyzer) Check() (*Checked, error) {
	values, err := url.ParseQuery(string(a.in.Body))
	if err != nil {
		return nil, oaserrors.Wrap(oaserrors.KindIllegalValue, "body", err, "malformed form body")
	}
	return NewChecked(func() (any, error) {
		out := make(map[string]any, len(values))
		for k, vs := range values {
			items := make([]any, len(vs))
			for i, v := range vs {
				decoded, err := style.DecodeValue(v, "")
				if err != nil {
					return nil, oaserrors.Wrap(oaserrors.KindIllegalValue, "body."+k, err, "undecodable form value")
				}
				items[i] = decoded
			}
			if len(items) == 1 {
				out[k] = items[0]
			} else {
				out[k] = items
			}
		}
		return out, nil
	}), nil
}
