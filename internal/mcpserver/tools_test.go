package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleListOperations_Filters(t *testing.T) {
	spec := specInput{File: petstorePath}

	res, out, err := handleListOperations(context.Background(), nil, listOperationsInput{Spec: spec, Tag: "pets"})
	require.NoError(t, err)
	require.Nil(t, res)
	assert.Equal(t, 3, out.Total, "listMyPets has no tags")

	_, out, err = handleListOperations(context.Background(), nil, listOperationsInput{Spec: spec, Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Total)
	assert.Equal(t, 2, out.Returned)
	assert.Equal(t, 3, out.NextOffset)
	require.Len(t, out.Operations, 2)
	assert.Equal(t, "createPet", out.Operations[0].OperationID)
	assert.Equal(t, "/pets/mine", out.Operations[1].Path)

	_, out, err = handleListOperations(context.Background(), nil, listOperationsInput{Spec: spec, Tag: "owners"})
	require.NoError(t, err)
	assert.Zero(t, out.Total)
	assert.Empty(t, out.Operations)
}

func TestSummarizeOperation(t *testing.T) {
	c, _, err := specInput{File: petstorePath}.resolve(context.Background())
	require.NoError(t, err)
	op, err := c.Operation("showPetById")
	require.NoError(t, err)

	s := summarizeOperation(op)
	assert.Equal(t, "GET", s.Method)
	assert.Equal(t, []string{"path.petId"}, s.Parameters)
	assert.Equal(t, []string{"200", "404"}, s.Responses)
	assert.Nil(t, s.RequestBody)
}

func TestHandleRoute(t *testing.T) {
	res, out, err := handleRoute(context.Background(), nil, routeInput{
		Spec:   specInput{File: petstorePath},
		Method: "get",
		Path:   "/pets/mine?verbose=1",
	})
	require.NoError(t, err)
	require.Nil(t, res)
	assert.Equal(t, "listMyPets", out.OperationID)
	assert.Nil(t, out.PathParams)

	res, _, err = handleRoute(context.Background(), nil, routeInput{Spec: specInput{}, Method: "GET", Path: "/"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleValidateRequest_Parameters(t *testing.T) {
	res, out, err := handleValidateRequest(context.Background(), nil, validateRequestInput{
		Spec:   specInput{File: petstorePath},
		Method: "get",
		Path:   "/v1/pets?limit=5",
		Query:  "color=black,white",
	})
	require.NoError(t, err)
	require.Nil(t, res)
	assert.True(t, out.Valid)
	assert.Equal(t, map[string]any{"limit": int64(5), "color": []any{"black", "white"}}, out.Query)
}

func TestHandleValidateRequest_ByOperationID(t *testing.T) {
	_, out, err := handleValidateRequest(context.Background(), nil, validateRequestInput{
		Spec:        specInput{File: petstorePath},
		OperationID: "showPetById",
		Method:      "GET",
		Path:        "/pets/x",
	})
	require.NoError(t, err)
	assert.False(t, out.Valid)
	require.NotNil(t, out.Error)
	assert.Equal(t, "INVALID_VALUE", out.Error.Kind)
	assert.Equal(t, "path.petId", out.Error.Location)
	assert.Equal(t, "showPetById", out.OperationID)
}

func TestHandleValidateRequest_BodyTooLarge(t *testing.T) {
	withConfig(t, func(c *serverConfig) { c.MaxBodySize = 4 })
	res, _, err := handleValidateRequest(context.Background(), nil, validateRequestInput{
		Spec:   specInput{File: petstorePath},
		Method: "POST",
		Path:   "/pets",
		Body:   `{"name":"Rex"}`,
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.IsError)
}

func TestHandleValidateResponse_RequiresOperationID(t *testing.T) {
	res, _, err := handleValidateResponse(context.Background(), nil, validateResponseInput{
		Spec:   specInput{File: petstorePath},
		Status: 200,
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleValidateResponse_MissingResponse(t *testing.T) {
	res, out, err := handleValidateResponse(context.Background(), nil, validateResponseInput{
		Spec:        specInput{File: petstorePath},
		OperationID: "createPet",
		Status:      500,
	})
	require.NoError(t, err)
	require.Nil(t, res)
	assert.False(t, out.Valid)
	assert.Equal(t, "MISSING_RESPONSE", out.Error.Kind)
	assert.Equal(t, 500, out.Status)
}

func TestHandleValidateResponse_UnknownOperation(t *testing.T) {
	_, out, err := handleValidateResponse(context.Background(), nil, validateResponseInput{
		Spec:        specInput{File: petstorePath},
		OperationID: "deletePet",
		Status:      200,
	})
	require.NoError(t, err)
	assert.Equal(t, "MISSING_OPERATION", out.Error.Kind)
}
