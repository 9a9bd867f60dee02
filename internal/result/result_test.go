package result

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRollup(t *testing.T) {
	pass := Leaf("p", StatusPassed, "")
	fail := Leaf("f", StatusFailed, "boom")
	skip := Leaf("s", StatusSkipped, "")
	empty := Group("e", nil)

	cases := []struct {
		name     string
		children []Node
		want     Status
	}{
		{"no children", nil, StatusUnknown},
		{"all passed", []Node{pass, pass}, StatusPassed},
		{"one failed", []Node{pass, fail}, StatusFailed},
		{"failed beats skipped", []Node{skip, fail, pass}, StatusFailed},
		{"skipped beats passed", []Node{pass, skip}, StatusSkipped},
		{"skipped beats unknown", []Node{empty, skip}, StatusSkipped},
		{"passed with empty sibling", []Node{pass, empty}, StatusUnknown},
		{"only empty", []Node{empty}, StatusUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Rollup(tc.children))
		})
	}
}

func TestNewDerivesSummaryAndPassed(t *testing.T) {
	suite := Group("suite", []Node{
		Group("Core", []Node{
			Leaf("a", StatusPassed, ""),
			Leaf("b", StatusFailed, "missing link"),
		}),
		Group("GeoJSON", []Node{
			Leaf("c", StatusSkipped, ""),
		}),
		Group("Empty", nil),
	})

	res := New(suite)

	assert.Equal(t, StatusFailed, res.Status())
	assert.False(t, res.Passed())
	assert.Equal(t, Summary{Total: 3, Passed: 1, Failed: 1, Skipped: 1}, res.Summary)
}

func TestEmptySuiteIsUnknown(t *testing.T) {
	res := New(Group("suite", nil))

	assert.Equal(t, StatusUnknown, res.Status())
	assert.False(t, res.Passed())
	assert.Equal(t, 0, res.Summary.Total)
}

func TestPassedMatchesRootStatus(t *testing.T) {
	res := New(Group("suite", []Node{Leaf("a", StatusPassed, "")}))

	assert.True(t, res.Passed())
	assert.Equal(t, StatusPassed, res.Status())
}

func TestStatusTextCodec(t *testing.T) {
	for _, s := range []Status{StatusPassed, StatusFailed, StatusSkipped, StatusUnknown} {
		data, err := json.Marshal(s)
		require.NoError(t, err)

		var decoded Status
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, s, decoded)

		out, err := yaml.Marshal(s)
		require.NoError(t, err)
		var fromYAML Status
		require.NoError(t, yaml.Unmarshal(out, &fromYAML))
		assert.Equal(t, s, fromYAML)
	}

	var s Status
	assert.Error(t, json.Unmarshal([]byte(`"MAYBE"`), &s))
}
