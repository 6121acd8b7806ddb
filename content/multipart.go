package content

import (
	"bytes"
	"mime"
	"net/textproto"
	"strings"

	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/style"
)

// Part is one decoded multipart/form-data part.
type Part struct {
	Name        string
	Filename    string
	ContentType MediaTypeInfo
	Body        []byte
}

type multipartAnalyzer struct{ in Input }

func newMultipart(in Input) Analyzer { return multipartAnalyzer{in: in} }

func (a multipartAnalyzer) Check() (*Checked, error) {
	boundary, ok := a.in.Info.Param("boundary")
	if !ok || boundary == "" {
		return nil, oaserrors.New(oaserrors.KindInvalidValue, "body", "multipart body without boundary")
	}
	parts, err := SplitMultipart(a.in.Body, boundary)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		if p.ContentType.Type == "" {
			a.in.Logger.Warn("multipart part without content type, assuming text/plain", "part", p.Name)
		}
	}
	return NewChecked(func() (any, error) { return transformParts(parts) }), nil
}

// SplitMultipart splits a multipart/form-data body into its parts. Both a
// bare and a CRLF-prefixed first delimiter are accepted. At least one part
// and the closing "--" delimiter are required, and each part must be named
// in its Content-Disposition; anything else is INVALID_VALUE.
func SplitMultipart(body []byte, boundary string) ([]Part, error) {
	delim := []byte("--" + boundary)
	start := bytes.Index(body, delim)
	if start < 0 {
		return nil, oaserrors.New(oaserrors.KindInvalidValue, "body", "multipart body has no parts")
	}
	rest := body[start+len(delim):]

	var parts []Part
	for {
		if bytes.HasPrefix(rest, []byte("--")) {
			break
		}
		rest = skipLineEnd(rest)
		end, next := nextDelimiter(rest, delim)
		if end < 0 {
			return nil, oaserrors.New(oaserrors.KindInvalidValue, "body", "multipart body is missing the closing delimiter")
		}
		p, err := parsePart(rest[:end])
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
		rest = rest[next:]
	}
	if len(parts) == 0 {
		return nil, oaserrors.New(oaserrors.KindInvalidValue, "body", "multipart body has no parts")
	}
	return parts, nil
}

// skipLineEnd drops transport padding and the line break after a delimiter.
func skipLineEnd(b []byte) []byte {
	b = bytes.TrimLeft(b, " \t")
	if bytes.HasPrefix(b, []byte("\r\n")) {
		return b[2:]
	}
	return bytes.TrimPrefix(b, []byte("\n"))
}

// nextDelimiter finds the line break and delimiter ending the current part.
// It returns the end of the part body and the offset just past the
// delimiter, or -1.
func nextDelimiter(b, delim []byte) (int, int) {
	if i := bytes.Index(b, append([]byte("\r\n"), delim...)); i >= 0 {
		return i, i + 2 + len(delim)
	}
	if i := bytes.Index(b, append([]byte("\n"), delim...)); i >= 0 {
		return i, i + 1 + len(delim)
	}
	return -1, -1
}

func parsePart(raw []byte) (Part, error) {
	head, body, ok := bytes.Cut(raw, []byte("\r\n\r\n"))
	if !ok {
		head, body, ok = bytes.Cut(raw, []byte("\n\n"))
	}
	if !ok {
		return Part{}, oaserrors.New(oaserrors.KindInvalidValue, "body", "multipart part has no header block")
	}

	var p Part
	for _, line := range strings.Split(strings.ReplaceAll(string(head), "\r\n", "\n"), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(key)) {
		case "Content-Disposition":
			_, params, err := mime.ParseMediaType(value)
			if err != nil {
				return Part{}, oaserrors.Wrap(oaserrors.KindInvalidValue, "body", err, "malformed Content-Disposition")
			}
			p.Name = params["name"]
			p.Filename = params["filename"]
		case "Content-Type":
			info, err := ParseMediaType(value)
			if err != nil {
				return Part{}, err
			}
			p.ContentType = info
		}
	}
	if p.Name == "" {
		return Part{}, oaserrors.New(oaserrors.KindInvalidValue, "body", "multipart part without a name")
	}
	p.Body = body
	return p, nil
}

// transformParts builds an object keyed by part name. Repeated names
// collect into an array in body order.
func transformParts(parts []Part) (map[string]any, error) {
	out := make(map[string]any, len(parts))
	for _, p := range parts {
		v, err := partValue(p)
		if err != nil {
			return nil, err
		}
		switch existing := out[p.Name].(type) {
		case nil:
			if _, seen := out[p.Name]; seen {
				out[p.Name] = repeated{nil, v}
			} else {
				out[p.Name] = v
			}
		case repeated:
			out[p.Name] = append(existing, v)
		default:
			out[p.Name] = repeated{existing, v}
		}
	}
	for k, v := range out {
		if r, ok := v.(repeated); ok {
			out[k] = []any(r)
		}
	}
	return out, nil
}

// repeated marks values collected from parts sharing a name, so they are
// not confused with a JSON array part.
type repeated []any

func partValue(p Part) (any, error) {
	loc := "body." + p.Name
	ct := p.ContentType
	if ct.Type == "" {
		ct = MediaTypeInfo{Type: "text", Subtype: "plain"}
	}
	switch {
	case ct.Type == "text" && ct.Subtype == "plain":
		s, err := decodeText(ct, p.Body, loc)
		if err != nil {
			return nil, err
		}
		v, err := style.DecodeValue(s, "")
		if err != nil {
			// A stray leading quote: keep the text as a string.
			return s, nil
		}
		return v, nil
	case ct.Type == "application" && (ct.Subtype == "json" || ct.Suffix == "json"):
		return decodeJSON(p.Body, loc)
	case ct.Type == "application" && ct.Subtype == "octet-stream":
		return p.Body, nil
	default:
		return nil, oaserrors.New(oaserrors.KindUnsupportedValueFormat, loc, "unsupported part media type %s", ct.Essence())
	}
}
