package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oascontract/oaserrors"
)

func TestParseMediaType(t *testing.T) {
	tests := []struct {
		raw     string
		typ     string
		subtype string
		suffix  string
		params  []MediaParam
	}{
		{"application/json", "application", "json", "", nil},
		{"Application/JSON; Charset=UTF-8", "application", "json", "", []MediaParam{{"charset", "UTF-8"}}},
		{"application/vnd.api+json", "application", "vnd.api", "json", nil},
		{"application/problem+json", "application", "problem", "json", nil},
		{`multipart/form-data; boundary="a;b"; x=1`, "multipart", "form-data", "", []MediaParam{{"boundary", "a;b"}, {"x", "1"}}},
		{`text/plain; q="a\"b"`, "text", "plain", "", []MediaParam{{"q", `a"b`}}},
		{"*/*", "*", "*", "", nil},
		{"application/*+json", "application", "*", "json", nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			info, err := ParseMediaType(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, info.Type)
			assert.Equal(t, tt.subtype, info.Subtype)
			assert.Equal(t, tt.suffix, info.Suffix)
			assert.Equal(t, tt.params, info.Params)
		})
	}
}

func TestParseMediaType_Invalid(t *testing.T) {
	for _, raw := range []string{"", "json", "application/", "/json", "application/json; =x", "app lication/json"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseMediaType(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, oaserrors.ErrInvalidValueFormat))
		})
	}
}

func TestMediaTypeInfo_String(t *testing.T) {
	info := MustParseMediaType(`multipart/form-data; boundary="a b"; charset=utf-8`)
	assert.Equal(t, `multipart/form-data; boundary="a b"; charset=utf-8`, info.String())
	assert.Equal(t, "application/vnd.api+json", MustParseMediaType("application/vnd.api+json; v=1").Essence())
}

func TestMediaTypeInfo_Includes(t *testing.T) {
	tests := []struct {
		registered string
		candidate  string
		want       bool
	}{
		{"application/json", "application/json", true},
		{"application/json", "application/json; charset=utf-8", true},
		{"application/json; charset=utf-8", "application/json", false},
		{"application/json; charset=utf-8", "application/json; charset=UTF-8", true},
		{"application/json; version=1", "application/json; version=2", false},
		{"application/json", "text/json", false},
		{"application/*", "application/xml", true},
		{"application/*", "application/vnd.api+json", true},
		{"application/*+json", "application/vnd.api+json", true},
		{"application/*+json", "application/vnd.api+xml", false},
		{"application/vnd.api+json", "application/vnd.api", false},
		{"application/vnd.api", "application/vnd.api+json", true},
		{"*/*", "image/png", true},
	}
	for _, tt := range tests {
		t.Run(tt.registered+" vs "+tt.candidate, func(t *testing.T) {
			reg := MustParseMediaType(tt.registered)
			cand := MustParseMediaType(tt.candidate)
			assert.Equal(t, tt.want, reg.Includes(cand))
		})
	}
}

func TestMustParseMediaType_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseMediaType("nope") })
}
