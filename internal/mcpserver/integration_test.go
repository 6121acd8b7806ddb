package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"slices"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestSession creates an in-process MCP server/client pair and returns
// the connected client session. The server is shut down when the test ends.
func startTestSession(t *testing.T) *mcp.ClientSession {
	t.Helper()

	server := mcp.NewServer(
		&mcp.Implementation{Name: "oascontract-test", Version: "test"},
		nil,
	)
	registerAllTools(server)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(
		&mcp.Implementation{Name: "test-client", Version: "test"},
		nil,
	)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		<-done
	})

	return session
}

func petstoreContent(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(petstorePath)
	require.NoError(t, err)
	return string(data)
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func TestIntegration_ListTools(t *testing.T) {
	session := startTestSession(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, "tool %q has empty description", tool.Name)
		assert.NotNil(t, tool.InputSchema, "tool %q has no input schema", tool.Name)
	}
	slices.Sort(names)
	assert.Equal(t, []string{"list_operations", "route", "validate_request", "validate_response"}, names)
}

func TestIntegration_ListOperations(t *testing.T) {
	specCache.reset()
	session := startTestSession(t)

	result := callTool(t, session, "list_operations", map[string]any{
		"spec": map[string]any{"content": petstoreContent(t)},
	})
	require.False(t, result.IsError, "%v", result.Content)

	out := unmarshalStructured(t, result)
	assert.Equal(t, "3.0.3", out["version"])
	assert.Equal(t, float64(4), out["total"])
	ops := out["operations"].([]any)
	var ids []string
	for _, op := range ops {
		ids = append(ids, op.(map[string]any)["operation_id"].(string))
	}
	assert.Equal(t, []string{"listPets", "createPet", "listMyPets", "showPetById"}, ids)
	require.NotEmpty(t, out["contract_id"])

	// The handle replaces the document on later calls.
	result = callTool(t, session, "list_operations", map[string]any{
		"spec":   map[string]any{"contract_id": out["contract_id"]},
		"method": "post",
	})
	require.False(t, result.IsError)
	out = unmarshalStructured(t, result)
	assert.Equal(t, float64(1), out["total"])
	create := out["operations"].([]any)[0].(map[string]any)
	assert.Equal(t, "createPet", create["operation_id"])
	assert.Equal(t, []any{"application/json", "multipart/form-data"}, create["request_body"])
	assert.Equal(t, []any{"201", "4XX"}, create["responses"])
}

func TestIntegration_Route(t *testing.T) {
	session := startTestSession(t)

	result := callTool(t, session, "route", map[string]any{
		"spec":   map[string]any{"file": petstorePath},
		"method": "GET",
		"path":   "/v1/pets/42",
	})
	require.False(t, result.IsError, "%v", result.Content)
	out := unmarshalStructured(t, result)
	assert.Equal(t, "showPetById", out["operation_id"])
	assert.Equal(t, "/pets/{petId}", out["template"])
	assert.Equal(t, map[string]any{"petId": float64(42)}, out["path_params"])
	assert.Equal(t, map[string]any{"petId": "42"}, out["raw_params"])

	result = callTool(t, session, "route", map[string]any{
		"spec":   map[string]any{"file": petstorePath},
		"method": "DELETE",
		"path":   "/pets",
	})
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].(*mcp.TextContent).Text, "MISSING_OPERATION")
}

func TestIntegration_ValidateRequest(t *testing.T) {
	session := startTestSession(t)

	result := callTool(t, session, "validate_request", map[string]any{
		"spec":         map[string]any{"file": petstorePath},
		"method":       "POST",
		"path":         "/pets",
		"content_type": "application/json",
		"body":         `{"name":"Rex"}`,
	})
	require.False(t, result.IsError, "%v", result.Content)
	out := unmarshalStructured(t, result)
	assert.Equal(t, true, out["valid"])
	assert.Equal(t, "createPet", out["operation_id"])
	assert.Equal(t, map[string]any{"name": "Rex"}, out["body"])

	result = callTool(t, session, "validate_request", map[string]any{
		"spec":   map[string]any{"file": petstorePath},
		"method": "GET",
		"path":   "/pets?limit=500",
	})
	require.False(t, result.IsError, "validation failures are results, not tool errors")
	out = unmarshalStructured(t, result)
	assert.Equal(t, false, out["valid"])
	issue := out["error"].(map[string]any)
	assert.Equal(t, "INVALID_VALUE", issue["kind"])
	assert.Equal(t, "query.limit", issue["location"])
	assert.NotEmpty(t, issue["diagnostics"])
}

func TestIntegration_ValidateResponse(t *testing.T) {
	session := startTestSession(t)

	result := callTool(t, session, "validate_response", map[string]any{
		"spec":         map[string]any{"file": petstorePath},
		"operation_id": "listPets",
		"status":       200,
		"headers":      map[string]any{"Content-Type": "application/json", "X-Next": "abc"},
		"body":         `[{"id":1,"name":"Rex"}]`,
	})
	require.False(t, result.IsError, "%v", result.Content)
	out := unmarshalStructured(t, result)
	assert.Equal(t, true, out["valid"])
	assert.Equal(t, "200", out["response"])
	assert.Equal(t, map[string]any{"X-Next": "abc"}, out["header"])

	result = callTool(t, session, "validate_response", map[string]any{
		"spec":         map[string]any{"file": petstorePath},
		"operation_id": "showPetById",
		"status":       404,
		"content_type": "application/json",
		"body":         `{"code":"nope"}`,
	})
	require.False(t, result.IsError)
	out = unmarshalStructured(t, result)
	assert.Equal(t, false, out["valid"])
	assert.Equal(t, "INVALID_VALUE", out["error"].(map[string]any)["kind"])
}

func TestIntegration_BadSpecIsToolError(t *testing.T) {
	session := startTestSession(t)

	result := callTool(t, session, "list_operations", map[string]any{
		"spec": map[string]any{"content": `{"openapi":"3.0.3","paths":{"/a":{"get":{"parameters":[{"name":"x","in":"query","style":"pipeDelimited","schema":{"type":"array"}}],"responses":{"200":{"description":"ok"}}}}}}`},
	})
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].(*mcp.TextContent).Text, "UNSUPPORTED_FEATURE")
}

// unmarshalStructured extracts the structured output of a tool result as a map.
func unmarshalStructured(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	if result.StructuredContent != nil {
		data, err := json.Marshal(result.StructuredContent)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	}

	require.NotEmpty(t, result.Content, "expected at least one content item")
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &m), "failed to parse text content as JSON")
	return m
}
