package inventory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStructured_GroupsHostsVariables(t *testing.T) {
	input := `
web:
  hosts:
    host1:
      http_port: 8080
      tls: true
    host2:
db:
  hosts:
    host1:
      role: primary
`
	reg, err := parseStructured([]byte(input))
	require.NoError(t, err)

	require.Equal(t, []string{"host1", "host2"}, reg.Hostnames())

	host1, _ := reg.GetHost("host1")
	require.Equal(t, []string{"web", "db"}, host1.Groups())
	require.Equal(t, map[string]any{"http_port": 8080, "tls": true, "role": "primary"}, host1.Variables())
	require.Empty(t, host1.User)

	host2, _ := reg.GetHost("host2")
	require.Equal(t, []string{"web"}, host2.Groups())
	require.Empty(t, host2.Variables())
}

func TestParseStructured_EmptyDocument(t *testing.T) {
	reg, err := parseStructured(nil)
	require.NoError(t, err)
	require.Equal(t, 0, reg.Len())
}

func TestParseStructured_MissingHostsKeyIsStrict(t *testing.T) {
	for name, input := range map[string]string{
		"absent": "web:\n  vars:\n    a: 1\n",
		"null":   "web:\n  hosts:\n",
		"empty":  "web:\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseStructured([]byte(input))
			require.ErrorIs(t, err, ErrMissingHostsKey)
		})
	}
}

func TestSerializeStructured_EmptyBagRendersAsEmptyObject(t *testing.T) {
	reg := NewRegistry()
	rec := reg.AddHost("host1", []string{"web"}, "")
	rec.User = "" // no injection, no variables

	out, err := reg.serializeStructured()
	require.NoError(t, err)
	require.Contains(t, out, "host1: {}")
	require.NotContains(t, out, "null", "the no-variables case must render structurally, never as a null token")
}

func TestSerializeStructured_InjectsUser(t *testing.T) {
	reg := NewRegistry()
	reg.AddHost("host1", []string{"web"}, "deploy")

	out, err := reg.serializeStructured()
	require.NoError(t, err)
	require.Contains(t, out, "ansible_user: deploy")

	// An explicit ansible_user variable wins over the user field.
	rec, _ := reg.GetHost("host1")
	rec.SetVariable("ansible_user", "override")
	out, err = reg.serializeStructured()
	require.NoError(t, err)
	require.Contains(t, out, "ansible_user: override")
	require.Equal(t, 1, strings.Count(out, "ansible_user:"))
}

func TestStructured_RoundTrip(t *testing.T) {
	input := "web:\n  hosts:\n    host1:\n      a: 1\n    host2:\ndb:\n  hosts:\n    host1:\n"
	first, err := parseStructured([]byte(input))
	require.NoError(t, err)

	out, err := first.serializeStructured()
	require.NoError(t, err)

	second, err := parseStructured([]byte(out))
	require.NoError(t, err)

	require.ElementsMatch(t, first.Hostnames(), second.Hostnames())
	for _, rec := range first.Hosts() {
		got, ok := second.GetHost(rec.Hostname)
		require.True(t, ok)
		require.ElementsMatch(t, rec.Groups(), got.Groups())
		require.Equal(t, rec.Variables(), got.Variables())
	}
}
