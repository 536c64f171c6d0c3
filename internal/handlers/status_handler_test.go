package handlers

import (
	"encoding/json"
	"testing"

	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusHandler_ListStatuses(t *testing.T) {
	handler := NewStatusHandler()

	ctx := setupTestContext("GET", "/statuses", nil)
	handler.ListStatuses(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var catalog []model.StatusInfo
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &catalog))
	assert.Len(t, catalog, len(model.StatusCatalog()))
	assert.Equal(t, string(model.StatusPending), catalog[0].Value)
}
