package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oascontract/oaserrors"
)

const petstore = "../../../testdata/petstore-3.0.yaml"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeJSON(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m), s)
	return m
}

func TestValidateOutputFormat(t *testing.T) {
	for _, f := range []string{FormatText, FormatJSON, FormatYAML} {
		assert.NoError(t, ValidateOutputFormat(f))
	}
	assert.Error(t, ValidateOutputFormat("xml"))

	_, err := run(t, "", "inspect", petstore, "--format", "xml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestOutputStructured(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, OutputStructured(&buf, map[string]int{"a": 1}, FormatJSON))
	assert.JSONEq(t, `{"a":1}`, buf.String())

	buf.Reset()
	require.NoError(t, OutputStructured(&buf, map[string]int{"a": 1}, FormatYAML))
	assert.Equal(t, "a: 1\n", buf.String())

	assert.Error(t, OutputStructured(&buf, 1, FormatText))
}

func TestFormatSpecPath(t *testing.T) {
	assert.Equal(t, "<stdin>", FormatSpecPath(StdinFilePath))
	assert.True(t, filepath.IsAbs(FormatSpecPath("spec.yaml")))
}

func TestParsePairs(t *testing.T) {
	pairs, err := parsePairs("header", ":=", []string{"X-Flags: a=b", "Accept=text/plain"})
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"X-Flags", "a=b"}, {"Accept", "text/plain"}}, pairs)

	_, err = parsePairs("cookie", "=", []string{"novalue"})
	assert.ErrorContains(t, err, "--cookie")
	_, err = parsePairs("cookie", "=", []string{"=x"})
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	out, err := run(t, "", "inspect", petstore)
	require.NoError(t, err)
	assert.Contains(t, out, "OpenAPI:  3.0.3")
	assert.Contains(t, out, "https://petstore.example.com/v1 (Production)")
	assert.Contains(t, out, "GET     showPetById")
	assert.Contains(t, out, "path.petId  simple explode=false required")
	assert.Contains(t, out, "body  application/json, multipart/form-data")
	assert.Contains(t, out, "Security schemes: apiKey")
	// concrete /pets/mine is mounted before /pets/{petId}
	assert.Less(t, strings.Index(out, "/pets/mine"), strings.Index(out, "/pets/{petId}"))
}

func TestInspect_JSON(t *testing.T) {
	out, err := run(t, "", "inspect", petstore, "-f", "json")
	require.NoError(t, err)

	var got inspectOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "3.0.3", got.Version)
	require.Len(t, got.Paths, 3)
	assert.Equal(t, []string{"/pets", "/pets/mine", "/pets/{petId}"},
		[]string{got.Paths[0].Template, got.Paths[1].Template, got.Paths[2].Template})
	list := got.Paths[0].Operations[0]
	assert.Equal(t, "listPets", list.ID)
	assert.Equal(t, []string{"200", "default"}, list.Responses)
	require.Len(t, list.Parameters, 2)
	types := map[string]string{}
	for _, p := range list.Parameters {
		types[p.Name] = p.Type
	}
	assert.Equal(t, map[string]string{"limit": "integer", "color": "array"}, types)
}

func TestInspect_Stdin(t *testing.T) {
	data, err := os.ReadFile(petstore)
	require.NoError(t, err)
	out, err := run(t, string(data), "inspect", "-", "--format", "yaml")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "<stdin>", got["source"])
}

func TestInspect_InvalidContract(t *testing.T) {
	_, err := run(t, `{"openapi":"2.0","paths":{}}`, "inspect", "-")
	require.Error(t, err)
	assert.True(t, oaserrors.HasKind(err, oaserrors.KindUnsupportedSpec), "%v", err)
}

func TestRoute(t *testing.T) {
	out, err := run(t, "", "route", petstore, "get", "/v1/pets/42")
	require.NoError(t, err)
	assert.Equal(t, "GET /pets/{petId} -> showPetById\n  petId = 42 (int64)\n", out)

	out, err = run(t, "", "route", petstore, "GET", "/pets/mine", "-f", "json")
	require.NoError(t, err)
	got := decodeJSON(t, out)
	assert.Equal(t, "listMyPets", got["operationId"])
	assert.Nil(t, got["pathParams"])
}

func TestRoute_NoOperation(t *testing.T) {
	_, err := run(t, "", "route", petstore, "DELETE", "/pets")
	assert.ErrorIs(t, err, oaserrors.ErrMissingOperation)

	_, err = run(t, "", "route", petstore, "GET", "/owners")
	assert.ErrorIs(t, err, oaserrors.ErrMissingOperation)
}

func TestValidateRequest(t *testing.T) {
	out, err := run(t, "", "validate-request", petstore,
		"--path", "/v1/pets", "--query", "limit=5", "-q", "color=black,white", "-f", "json")
	require.NoError(t, err)
	got := decodeJSON(t, out)
	assert.Equal(t, true, got["valid"])
	assert.Equal(t, "listPets", got["operationId"])
	assert.Equal(t, map[string]any{"limit": float64(5), "color": []any{"black", "white"}}, got["query"])
}

func TestValidateRequest_QueryInPath(t *testing.T) {
	out, err := run(t, "", "validate-request", petstore, "--path", "/pets?limit=7")
	require.NoError(t, err)
	assert.Contains(t, out, "valid: listPets\n")
	assert.Contains(t, out, "query.limit = 7 (int64)")
	assert.Contains(t, out, "query.color absent\n")
}

func TestValidateRequest_Body(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pet.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"name":"Rex","tag":"dog"}`), 0o600))

	out, err := run(t, "", "validate-request", petstore, "-X", "post", "--path", "/pets",
		"-H", "Content-Type: application/json", "--body", "@"+file, "-f", "yaml")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "createPet", got["operationId"])
	assert.Equal(t, "application/json", got["mediaType"])
	assert.Equal(t, map[string]any{"name": "Rex", "tag": "dog"}, got["body"])
}

func TestValidateRequest_Failures(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		kind     string
		location string
	}{
		{
			name:     "schema violation",
			args:     []string{"--path", "/pets", "--query", "limit=500"},
			kind:     "INVALID_VALUE",
			location: "query.limit",
		},
		{
			name:     "path parameter not an integer",
			args:     []string{"--path", "/pets/abc"},
			kind:     "INVALID_VALUE",
			location: "path.petId",
		},
		{
			name:     "missing body",
			args:     []string{"-X", "POST", "--path", "/pets"},
			kind:     "MISSING_REQUIRED_PARAMETER",
			location: "requestBody",
		},
		{
			name: "undeclared media type",
			args: []string{"-X", "POST", "--path", "/pets", "--content-type", "text/csv", "--body", "a,b"},
			kind: "UNSUPPORTED_VALUE_FORMAT",
		},
		{
			name:     "unknown path",
			args:     []string{"--path", "/owners"},
			kind:     "MISSING_OPERATION",
			location: "/owners",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"validate-request", petstore, "--format", "json"}, tt.args...)
			out, err := run(t, "", args...)
			require.ErrorIs(t, err, ErrValidationFailed)
			got := decodeJSON(t, out)
			assert.Equal(t, false, got["valid"])
			assert.Equal(t, tt.kind, got["kind"])
			if tt.location != "" {
				assert.Equal(t, tt.location, got["location"])
			}
		})
	}
}

func TestValidateRequest_FailureText(t *testing.T) {
	out, err := run(t, "", "validate-request", petstore, "--path", "/pets", "--query", "limit=500")
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.True(t, strings.HasPrefix(out, "INVALID_VALUE\n  location: query.limit\n"), out)
	assert.Contains(t, out, "/maximum")
}

func TestValidateRequest_BodyFileMissing(t *testing.T) {
	_, err := run(t, "", "validate-request", petstore, "-X", "POST", "--path", "/pets", "--body", "@/nonexistent/pet.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidationFailed)
	assert.ErrorContains(t, err, "reading body")
}

func TestValidateResponse(t *testing.T) {
	out, err := run(t, "", "validate-response", petstore, "--operation", "showPetById",
		"--status", "200", "--content-type", "application/json", "--body", `{"id":1,"name":"Rex","tag":null}`)
	require.NoError(t, err)
	assert.Contains(t, out, "valid: showPetById 200 (declared 200)")

	out, err = run(t, "", "validate-response", petstore, "--operation", "createPet",
		"--status", "422", "--content-type", "application/json", "--body", `{"code":422,"message":"bad"}`, "-f", "json")
	require.NoError(t, err)
	got := decodeJSON(t, out)
	assert.Equal(t, "4XX", got["response"])
}

func TestValidateResponse_Failures(t *testing.T) {
	out, err := run(t, "", "validate-response", petstore, "--operation", "showPetById",
		"--status", "200", "--content-type", "application/json", "--body", `{"id":"x"}`, "-f", "json")
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, "INVALID_VALUE", decodeJSON(t, out)["kind"])

	out, err = run(t, "", "validate-response", petstore, "--operation", "createPet", "--status", "500", "-f", "json")
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, "MISSING_RESPONSE", decodeJSON(t, out)["kind"])

	_, err = run(t, "", "validate-response", petstore, "--status", "200")
	assert.ErrorContains(t, err, "operation")
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"query array defaults to exploded form", []string{"--name", "color", `["blue","black"]`}, "color=blue&color=black"},
		{"query array unexploded", []string{"--name", "color", "--explode=false", `["blue","black"]`}, "color=blue,black"},
		{"path label", []string{"--name", "id", "--in", "path", "--style", "label", `[3,4,5]`}, ".3,4,5"},
		{"path matrix exploded object", []string{"--name", "id", "--in", "path", "--style", "matrix", "--explode", `{"role":"admin","x":1}`}, ";role=admin;x=1"},
		{"deepObject", []string{"--name", "filter", "--style", "deepObject", "--explode", `{"a":"b"}`}, "filter[a]=b"},
		{"query escaping", []string{"--name", "q", `"a b&c"`}, "q=a+b%26c"},
		{"header primitive", []string{"--name", "X-Rate", "--in", "header", `42`}, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", append([]string{"render"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestRender_Errors(t *testing.T) {
	_, err := run(t, "", "render", "--name", "x", "not json")
	assert.ErrorContains(t, err, "value must be JSON")

	_, err = run(t, "", "render", "--name", "x", "--in", "body", `1`)
	assert.ErrorContains(t, err, "invalid --in")

	_, err = run(t, "", "render", "--name", "x", "--style", "pipeDelimited", `[1]`)
	assert.ErrorIs(t, err, oaserrors.ErrUnsupportedFeature)

	_, err = run(t, "", "render", `1`)
	assert.ErrorContains(t, err, "name")
}

func TestTransform(t *testing.T) {
	out, err := run(t, "", "transform", "--name", "color", "--shape", "array", "color=blue&color=black")
	require.NoError(t, err)
	assert.JSONEq(t, `["blue","black"]`, out)

	out, err = run(t, "", "transform", "--name", "id", "--in", "path", "--style", "matrix", "--explode", "--shape", "object", ";role=admin;n=5", "-f", "json")
	require.NoError(t, err)
	got := decodeJSON(t, out)
	assert.Equal(t, map[string]any{"role": "admin", "n": float64(5)}, got["value"])
	assert.Equal(t, "matrix", got["style"])

	_, err = run(t, "", "transform", "--name", "x", "--shape", "tuple", "x=1")
	assert.ErrorContains(t, err, "invalid --shape")
}

func TestRenderTransform_RoundTrip(t *testing.T) {
	wire, err := run(t, "", "render", "--name", "f", "--style", "form", "--explode=false", `{"k1":"v1","k2":"v2"}`)
	require.NoError(t, err)
	out, err := run(t, "", "transform", "--name", "f", "--style", "form", "--explode=false", "--shape", "object", strings.TrimSpace(wire))
	require.NoError(t, err)
	assert.JSONEq(t, `{"k1":"v1","k2":"v2"}`, out)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "oascontract "), out)
	assert.Contains(t, out, "Go Version:")

	out, err = run(t, "", "version", "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, decodeJSON(t, out), "goVersion")
}
