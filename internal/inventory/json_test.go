package inventory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeFlatJSON_EmptyRegistry(t *testing.T) {
	out, err := NewRegistry().serializeFlatJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"all": []}`, out)
}

func TestSerializeFlatJSON_HostsAppearUnderEachGroupAndOnceUnderAll(t *testing.T) {
	reg := NewRegistry()
	rec := reg.AddHost("host1", []string{"web", "db", "cache"}, "")
	rec.SetVariable("a", "1")
	reg.AddHost("host2", nil, "")

	out, err := reg.serializeFlatJSON()
	require.NoError(t, err)

	var doc map[string][]map[string]struct {
		Groups    []string       `json:"groups"`
		Variables map[string]any `json:"variables"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	require.Len(t, doc["all"], 2)
	require.Len(t, doc["web"], 1)
	require.Len(t, doc["db"], 1)
	require.Len(t, doc["cache"], 1)
	require.Len(t, doc["ungrouped"], 1)

	entry := doc["web"][0]["host1"]
	require.Equal(t, []string{"web", "db", "cache"}, entry.Groups)
	require.Equal(t, map[string]any{"a": "1"}, entry.Variables)

	// A host with no variables renders an empty object, not null.
	require.Contains(t, out, `"host2":{"groups":["ungrouped"],"variables":{}}`)
}
