package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerInfoBasic(t *testing.T) {
	require.NotNil(t, SwaggerInfo)
	assert.NotEmpty(t, SwaggerInfo.Title)
	assert.Equal(t, "/api/v1", SwaggerInfo.BasePath)
	assert.Contains(t, SwaggerInfo.SwaggerTemplate, "paths")
}

func TestSwaggerDocumentIsValidJSON(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Paths               map[string]map[string]json.RawMessage `json:"paths"`
		SecurityDefinitions map[string]json.RawMessage            `json:"securityDefinitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Contains(t, doc.Paths, "/services")
	assert.Contains(t, doc.Paths["/services"], "get")
	assert.Contains(t, doc.Paths["/customers/{customer_id}/booking/{supplier_id}"], "post")
	assert.Contains(t, doc.SecurityDefinitions, "BearerAuth")
}
