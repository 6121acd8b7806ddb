package contract

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/erraggy/oascontract/content"
	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/router"
	"github.com/erraggy/oascontract/schema"
	"github.com/erraggy/oascontract/style"
)

// builder walks the resolved document once, top-down.
type builder struct {
	c *Contract
}

func (b *builder) build() error {
	doc := b.c.raw

	servers, err := b.servers(doc["servers"], "servers")
	if err != nil {
		return err
	}
	b.c.servers = servers

	if err := b.securitySchemes(doc); err != nil {
		return err
	}
	globalSecurity, err := b.security(doc["security"], "security")
	if err != nil {
		return err
	}

	rawPaths, ok := doc["paths"].(map[string]any)
	if !ok {
		return oaserrors.New(oaserrors.KindInvalidSpec, at("paths"), "document must contain a 'paths' object")
	}
	var paths []*Path
	for _, key := range sortedKeys(rawPaths) {
		if strings.HasPrefix(key, "x-") {
			continue
		}
		p, err := b.path(key, rawPaths[key], globalSecurity)
		if err != nil {
			return err
		}
		paths = append(paths, p)
	}

	ordered, err := mountOrder(paths)
	if err != nil {
		return err
	}
	b.c.paths = ordered
	for _, p := range ordered {
		b.c.byTemplate[p.String()] = p
		for _, op := range p.Operations() {
			if existing, dup := b.c.byID[op.ID]; dup {
				return oaserrors.New(oaserrors.KindInvalidSpec, at("paths", op.Path, op.Method, "operationId"),
					"duplicate operationId %q (also used by %s %s)", op.ID, strings.ToUpper(existing.Method), existing.Path)
			}
			b.c.byID[op.ID] = op
			b.c.operations = append(b.c.operations, op)
		}
	}
	return nil
}

func (b *builder) path(key string, raw any, globalSecurity []SecurityRequirement) (*Path, error) {
	loc := at("paths", key)
	item, ok := raw.(map[string]any)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "path item must be an object")
	}
	tpl, err := router.ParseTemplate(key)
	if err != nil {
		return nil, relocate(err, loc)
	}
	if _, err := b.servers(item["servers"], "paths", key, "servers"); err != nil {
		return nil, err
	}

	p := &Path{Template: tpl, operations: make(map[string]*Operation)}
	p.Parameters, err = b.parameters(item["parameters"], "paths", key, "parameters")
	if err != nil {
		return nil, err
	}
	for _, param := range p.Parameters {
		if param.In == InPath && !slices.Contains(tpl.ParamNames(), param.Name) {
			return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "path parameter %q does not appear in %s", param.Name, key)
		}
	}

	for _, method := range Methods {
		rawOp, present := item[method]
		if !present {
			continue
		}
		op, err := b.operation(p, key, method, rawOp, globalSecurity)
		if err != nil {
			return nil, err
		}
		p.operations[method] = op
	}
	return p, nil
}

func (b *builder) operation(p *Path, key, method string, raw any, globalSecurity []SecurityRequirement) (*Operation, error) {
	loc := at("paths", key, method)
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "operation must be an object")
	}

	op := &Operation{
		Method:    method,
		Path:      p.String(),
		Responses: make(map[string]*Response),
		Security:  globalSecurity,
	}
	op.ID, _ = m["operationId"].(string)
	if op.ID == "" {
		op.ID = method + " " + p.String()
	}
	op.Summary, _ = m["summary"].(string)
	op.Deprecated, _ = m["deprecated"].(bool)
	if tags, ok := m["tags"].([]any); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok {
				op.Tags = append(op.Tags, s)
			}
		}
	}
	if _, err := b.servers(m["servers"], "paths", key, method, "servers"); err != nil {
		return nil, err
	}

	own, err := b.parameters(m["parameters"], "paths", key, method, "parameters")
	if err != nil {
		return nil, err
	}
	op.Parameters = mergeParameters(p.Parameters, own)
	if err := checkOperationParameters(op, p.Template, loc); err != nil {
		return nil, err
	}

	if rawBody, present := m["requestBody"]; present {
		op.RequestBody, err = b.requestBody(rawBody, "paths", key, method, "requestBody")
		if err != nil {
			return nil, err
		}
	}

	if rawResponses, present := m["responses"]; present {
		responses, ok := rawResponses.(map[string]any)
		if !ok {
			return nil, oaserrors.New(oaserrors.KindInvalidSpec, at("paths", key, method, "responses"), "responses must be an object")
		}
		for _, status := range sortedKeys(responses) {
			if strings.HasPrefix(status, "x-") {
				continue
			}
			resp, err := b.response(status, responses[status], "paths", key, method, "responses", status)
			if err != nil {
				return nil, err
			}
			if resp.Status == "default" {
				op.Default = resp
			} else {
				op.Responses[resp.Status] = resp
			}
		}
	}

	if rawSecurity, present := m["security"]; present {
		op.Security, err = b.security(rawSecurity, "paths", key, method, "security")
		if err != nil {
			return nil, err
		}
	}
	return op, nil
}

// mergeParameters overlays operation parameters on path parameters by
// name and location.
func mergeParameters(pathLevel, own []*Parameter) []*Parameter {
	out := make([]*Parameter, 0, len(pathLevel)+len(own))
	for _, p := range pathLevel {
		overridden := slices.ContainsFunc(own, func(o *Parameter) bool {
			return o.In == p.In && o.Name == p.Name
		})
		if !overridden {
			out = append(out, p)
		}
	}
	return append(out, own...)
}

func checkOperationParameters(op *Operation, tpl *router.Template, loc string) error {
	for _, name := range tpl.ParamNames() {
		if _, ok := op.Parameter(InPath, name); !ok {
			return oaserrors.New(oaserrors.KindInvalidSpec, loc, "path parameter %q is not declared", name)
		}
	}
	explodedObjects := 0
	for _, p := range op.Parameters {
		if p.In == InPath && !slices.Contains(tpl.ParamNames(), p.Name) {
			return oaserrors.New(oaserrors.KindInvalidSpec, loc, "path parameter %q does not appear in %s", p.Name, tpl)
		}
		if p.In == InQuery && p.Style == style.Form && p.Explode && p.Shape == schema.ShapeObject {
			explodedObjects++
		}
	}
	if explodedObjects > 1 {
		return oaserrors.New(oaserrors.KindInvalidSpec, loc, "at most one exploded form-style object query parameter is allowed, found %d", explodedObjects)
	}
	return nil
}

func (b *builder) requestBody(raw any, path ...string) (*RequestBody, error) {
	loc := at(path...)
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "request body must be an object")
	}
	rb := &RequestBody{}
	rb.Required, _ = m["required"].(bool)
	rawContent, present := m["content"]
	if !present {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "request body must declare content")
	}
	var err error
	rb.Content, err = b.content(rawContent, append(path, "content")...)
	if err != nil {
		return nil, err
	}
	if rb.Content.Len() == 0 {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "request body must declare at least one media type")
	}
	return rb, nil
}

var statusKey = regexp.MustCompile(`^[1-5](?:[0-9]{2}|XX)$`)

func (b *builder) response(status string, raw any, path ...string) (*Response, error) {
	loc := at(path...)
	key := strings.ToUpper(status)
	if key == "DEFAULT" {
		key = "default"
	} else if !statusKey.MatchString(key) {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "invalid response status %q", status)
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "response must be an object")
	}
	resp := &Response{Status: key}
	resp.Description, _ = m["description"].(string)

	if rawHeaders, present := m["headers"]; present {
		headers, ok := rawHeaders.(map[string]any)
		if !ok {
			return nil, oaserrors.New(oaserrors.KindInvalidSpec, at(append(path, "headers")...), "headers must be an object")
		}
		for _, name := range sortedKeys(headers) {
			if strings.EqualFold(name, "Content-Type") {
				continue
			}
			h, err := b.header(name, headers[name], append(path, "headers", name)...)
			if err != nil {
				return nil, err
			}
			resp.Headers = append(resp.Headers, h)
		}
	}

	if rawContent, present := m["content"]; present {
		var err error
		resp.Content, err = b.content(rawContent, append(path, "content")...)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (b *builder) content(raw any, path ...string) (*Content, error) {
	loc := at(path...)
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "content must be an object")
	}
	c := &Content{}
	for _, name := range sortedKeys(m) {
		mloc := at(append(path, name)...)
		info, err := content.ParseMediaType(name)
		if err != nil {
			return nil, oaserrors.Wrap(oaserrors.KindInvalidSpec, mloc, err, "invalid media type %q", name)
		}
		if !b.c.registry.Supports(info) {
			return nil, oaserrors.New(oaserrors.KindUnsupportedFeature, mloc, "media type %q is not supported", name)
		}
		media, ok := m[name].(map[string]any)
		if !ok {
			return nil, oaserrors.New(oaserrors.KindInvalidSpec, mloc, "media type object must be an object")
		}
		rawSchema, present := media["schema"]
		if !present {
			return nil, oaserrors.New(oaserrors.KindUnsupportedFeature, mloc, "media type %q has no schema", name)
		}
		v, err := b.c.repo.Validator(rawSchema)
		if err != nil {
			return nil, relocate(err, mloc+"/schema")
		}
		resolved := v.Resolved()
		if _, isMap := rawSchema.(map[string]any); isMap && schema.IsEmpty(resolved) {
			return nil, oaserrors.New(oaserrors.KindUnsupportedFeature, mloc, "media type %q has an empty schema", name)
		}
		c.entries = append(c.entries, &MediaType{
			Name:   name,
			Info:   info,
			Schema: v,
			Binary: resolved != nil && schema.IsBinary(resolved),
		})
	}
	return c, nil
}

func (b *builder) servers(raw any, path ...string) ([]Server, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, at(path...), "servers must be an array")
	}
	out := make([]Server, 0, len(list))
	for i, e := range list {
		loc := at(append(path, strconv.Itoa(i))...)
		m, ok := e.(map[string]any)
		if !ok {
			return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "server must be an object")
		}
		u, ok := m["url"].(string)
		if !ok {
			return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "server url must be a string")
		}
		if strings.ContainsAny(u, "{}") {
			return nil, oaserrors.New(oaserrors.KindUnsupportedFeature, loc, "server variables are not supported: %s", u)
		}
		s := Server{URL: u}
		s.Description, _ = m["description"].(string)
		out = append(out, s)
	}
	return out, nil
}

// serverBasePath is the path component of a server URL, "" for the root.
func serverBasePath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	p := router.NormalizePath(u.Path)
	if p == "/" {
		return ""
	}
	return p
}

func (b *builder) securitySchemes(doc map[string]any) error {
	components, _ := doc["components"].(map[string]any)
	schemes, _ := components["securitySchemes"].(map[string]any)
	for _, name := range sortedKeys(schemes) {
		loc := at("components", "securitySchemes", name)
		m, ok := schemes[name].(map[string]any)
		if !ok {
			return oaserrors.New(oaserrors.KindInvalidSpec, loc, "security scheme must be an object")
		}
		s := SecurityScheme{Name: name}
		s.Type, _ = m["type"].(string)
		if s.Type == "" {
			return oaserrors.New(oaserrors.KindInvalidSpec, loc, "security scheme must declare a type")
		}
		s.Description, _ = m["description"].(string)
		s.In, _ = m["in"].(string)
		s.ParamName, _ = m["name"].(string)
		s.Scheme, _ = m["scheme"].(string)
		s.BearerFormat, _ = m["bearerFormat"].(string)
		b.c.schemes[name] = s
	}
	return nil
}

func (b *builder) security(raw any, path ...string) ([]SecurityRequirement, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, at(path...), "security must be an array")
	}
	out := make([]SecurityRequirement, 0, len(list))
	for i, e := range list {
		loc := at(append(path, strconv.Itoa(i))...)
		m, ok := e.(map[string]any)
		if !ok {
			return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "security requirement must be an object")
		}
		req := make(SecurityRequirement, len(m))
		for name, scopes := range m {
			if _, known := b.c.schemes[name]; !known {
				return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "unknown security scheme %q", name)
			}
			scopeList, _ := scopes.([]any)
			names := make([]string, 0, len(scopeList))
			for _, s := range scopeList {
				names = append(names, fmt.Sprint(s))
			}
			req[name] = names
		}
		out = append(out, req)
	}
	return out, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// relocate points a construction error at loc.
func relocate(err error, loc string) error {
	var oe *oaserrors.Error
	if errors.As(err, &oe) {
		return oe.WithLocation(loc)
	}
	return oaserrors.Wrap(oaserrors.KindInvalidSpec, loc, err, "invalid definition")
}
