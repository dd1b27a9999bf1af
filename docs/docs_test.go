package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestRegisteredDocListsRoutes(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Paths map[string]map[string]struct {
			Parameters []struct {
				Name string `json:"name"`
				In   string `json:"in"`
			} `json:"parameters"`
		} `json:"paths"`
		Definitions map[string]json.RawMessage `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	for _, p := range []string{"/auth/login", "/clients/register", "/v1/properties", "/v1/uploads", "/v1/sync", "/health/ready"} {
		assert.Contains(t, doc.Paths, p)
	}
	assert.Contains(t, doc.Definitions, "handler.Envelope")

	var names []string
	for _, param := range doc.Paths["/v1/properties"]["get"].Parameters {
		if param.In == "query" {
			names = append(names, param.Name)
		}
	}
	assert.Contains(t, names, "sortBy")
	assert.Contains(t, names, "sortOrder")
}
