package parser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgricker/cite-runner/internal/citeerr"
	"github.com/bgricker/cite-runner/internal/result"
)

func TestParseFileTeamEngineReport(t *testing.T) {
	res, err := NewParser(false).ParseFile(filepath.Join("testdata", "ogcapi-features-1.0.xml"))
	require.NoError(t, err)

	suite := res.Suite
	assert.Equal(t, "ogcapi-features-1.0", suite.Name)
	assert.Equal(t, result.StatusFailed, suite.Status)
	assert.False(t, res.Passed())
	assert.Equal(t, result.Summary{Total: 5, Passed: 3, Failed: 1, Skipped: 1}, res.Summary)

	require.Len(t, suite.Children, 2)
	core, geojson := suite.Children[0], suite.Children[1]
	assert.Equal(t, "Core", core.Name)
	assert.Equal(t, result.StatusFailed, core.Status)
	assert.Equal(t, "GeoJSON", geojson.Name)
	assert.Equal(t, result.StatusSkipped, geojson.Status)

	// the preconditions class only held a configuration method
	require.Len(t, core.Children, 2)
	landing := core.Children[0]
	assert.Equal(t, "org.opengis.cite.ogcapifeatures10.conformance.core.general.LandingPage", landing.Name)
	require.Len(t, landing.Children, 2)
	assert.Equal(t, result.Leaf("landingPageRetrieval", result.StatusPassed, ""), landing.Children[0])
	assert.Equal(t, result.Leaf("landingPageValidation", result.StatusFailed,
		`Landing page is missing a link with rel "conformance"`), landing.Children[1])

	skipped := geojson.Children[0].Children[1]
	assert.Equal(t, "geojsonFeature", skipped.Name)
	assert.Equal(t, result.StatusSkipped, skipped.Status)
	assert.Equal(t, "No feature ids available", skipped.Message)
}

func TestParseSkipAsFailure(t *testing.T) {
	res, err := NewParser(true).ParseFile(filepath.Join("testdata", "ogcapi-features-1.0.xml"))
	require.NoError(t, err)

	geojson := res.Suite.Children[1]
	assert.Equal(t, result.StatusFailed, geojson.Status)
	assert.Equal(t, result.StatusFailed, geojson.Children[0].Children[1].Status)
	assert.Equal(t, result.Summary{Total: 5, Passed: 3, Failed: 2}, res.Summary)
}

func TestParsePassingSuiteKeepsDuplicates(t *testing.T) {
	res, err := NewParser(true).ParseFile(filepath.Join("testdata", "passing.xml"))
	require.NoError(t, err)

	assert.True(t, res.Passed())
	assert.Equal(t, result.StatusPassed, res.Status())
	methods := res.Suite.Children[0].Children[0].Children
	require.Len(t, methods, 2)
	assert.Equal(t, methods[0].Name, methods[1].Name)
}

func TestParseRollup(t *testing.T) {
	cases := []struct {
		name          string
		doc           string
		skipAsFailure bool
		want          result.Status
	}{
		{
			name: "one passed one failed assertion",
			doc: suiteDoc(`
				<test name="first"><class name="A"><test-method status="PASS" name="a"/></class></test>
				<test name="second"><class name="B">
					<test-method status="PASS" name="b1"/>
					<test-method status="FAIL" name="b2"/>
				</class></test>`),
			want: result.StatusFailed,
		},
		{
			name: "skipped kept as skipped",
			doc: suiteDoc(`
				<test name="first"><test-method status="PASS" name="a"/></test>
				<test name="second"><test-method status="SKIP" name="b"/></test>`),
			want: result.StatusSkipped,
		},
		{
			name: "skipped turned into failure",
			doc: suiteDoc(`
				<test name="first"><test-method status="PASS" name="a"/></test>
				<test name="second"><test-method status="SKIP" name="b"/></test>`),
			skipAsFailure: true,
			want:          result.StatusFailed,
		},
		{
			name: "empty group makes the parent unknown",
			doc: suiteDoc(`
				<test name="first"><test-method status="PASS" name="a"/></test>
				<test name="second"></test>`),
			want: result.StatusUnknown,
		},
		{
			name: "unrecognized nesting is another level",
			doc: suiteDoc(`
				<test name="Core"><section name="requirements"><class name="A">
					<test-method status="pass" name="a"/>
				</class></section></test>`),
			want: result.StatusPassed,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := NewParser(tc.skipAsFailure).Parse([]byte(tc.doc))
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Status())
			assert.Equal(t, tc.want == result.StatusPassed, res.Passed())
		})
	}
}

func TestParseUnrecognizedNestingDepth(t *testing.T) {
	res, err := NewParser(false).Parse([]byte(suiteDoc(`
		<test name="Core"><section name="requirements"><class name="A">
			<test-method status="PASS" name="a"/>
		</class></section></test>`)))
	require.NoError(t, err)

	section := res.Suite.Children[0].Children[0]
	assert.Equal(t, "requirements", section.Name)
	assert.Equal(t, "A", section.Children[0].Name)
}

func TestParseEmptySuite(t *testing.T) {
	for _, doc := range []string{
		suiteDoc(""),
		suiteDoc(`<groups/>`),
		suiteDoc(`<test-method status="PASS" name="setUp" is-config="true"/>`),
	} {
		res, err := NewParser(true).Parse([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, "suite", res.Suite.Name)
		assert.Equal(t, result.StatusUnknown, res.Status())
		assert.False(t, res.Passed())
		assert.Empty(t, res.Suite.Children)
	}
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"empty document":     "",
		"not xml":            "teamengine is starting",
		"wrong root element": `<html><body>Login</body></html>`,
		"no suite":           `<testng-results></testng-results>`,
		"two suites":         `<testng-results><suite name="a"/><suite name="b"/></testng-results>`,
		"missing status": suiteDoc(`
			<test name="Core"><test-method status="PASS" name="a"/><test-method name="b"/></test>`),
		"unrecognized status": suiteDoc(`<test name="Core"><test-method status="MAYBE" name="a"/></test>`),
		"empty status":        suiteDoc(`<test name="Core"><test-method status="" name="a"/></test>`),
		"truncated":           `<testng-results><suite name="a"><test name="Core"><test-method status="PASS" name="a"/>`,
		"mismatched tags":     `<testng-results><suite name="a"></test></testng-results>`,
		"trailing garbage":    suiteDoc(`<test name="Core"><test-method status="PASS" name="a"/></test>`) + "<<<",
		"trailing text":       suiteDoc(`<test name="Core"><test-method status="PASS" name="a"/></test>`) + "done",
		"second document": suiteDoc(`<test name="Core"><test-method status="PASS" name="a"/></test>`) +
			`<testng-results><suite name="x"><test name="t"><test-method status="FAIL" name="b"/></test></suite></testng-results>`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := NewParser(false).Parse([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, citeerr.ErrMalformedResult)
			assert.Equal(t, result.TestSuiteResult{}, res)
		})
	}
}

func TestParseAllowsTrailingMisc(t *testing.T) {
	doc := suiteDoc(`<test name="Core"><test-method status="PASS" name="a"/></test>`) + "\n<!-- generated -->\n  "
	res, err := NewParser(false).Parse([]byte(doc))
	require.NoError(t, err)
	assert.True(t, res.Passed())
}

func TestParseStatusAttributeOnGroupIsIgnored(t *testing.T) {
	res, err := NewParser(false).Parse([]byte(`<testng-results><suite name="s" status="PASS">
		<test name="t" status="PASS"><class name="A" status="PASS">
			<test-method name="m" status="FAIL"><exception class="java.lang.AssertionError"/></test-method>
		</class></test>
	</suite></testng-results>`))
	require.NoError(t, err)

	assert.Equal(t, result.StatusFailed, res.Status())
	assert.False(t, res.Passed())
	assert.Equal(t, result.Summary{Total: 1, Failed: 1}, res.Summary)

	class := res.Suite.Children[0].Children[0]
	assert.Equal(t, "A", class.Name)
	assert.Equal(t, result.StatusFailed, class.Status)
	require.Len(t, class.Children, 1)
	assert.Equal(t, result.Leaf("m", result.StatusFailed, "java.lang.AssertionError"), class.Children[0])
}

func TestParseSuiteWithStatusIsAlwaysAGroup(t *testing.T) {
	res, err := NewParser(false).Parse([]byte(`<testng-results><suite name="s" status="PASS"/></testng-results>`))
	require.NoError(t, err)
	assert.Equal(t, result.StatusUnknown, res.Status())
	assert.False(t, res.Passed())
	assert.Empty(t, res.Suite.Children)
}

func TestParseLeafIgnoresEmptyNestedElements(t *testing.T) {
	res, err := NewParser(false).Parse([]byte(suiteDoc(`<test name="Core">
		<test-method status="PASS" name="a"><instance name="x"></instance></test-method>
	</test>`)))
	require.NoError(t, err)
	assert.Equal(t, result.Leaf("a", result.StatusPassed, ""), res.Suite.Children[0].Children[0])
}

func TestParseMalformedNamesExpectation(t *testing.T) {
	_, err := NewParser(false).Parse([]byte(suiteDoc(`<test name="Core"><test-method name="b"/></test>`)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `<test-method name="b"> is missing the status attribute`)

	_, err = NewParser(false).Parse(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing root element <testng-results>")
}

func TestParseFileMissing(t *testing.T) {
	_, err := NewParser(false).ParseFile(filepath.Join(t.TempDir(), "absent.xml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, citeerr.ErrMalformedResult)
}

func suiteDoc(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><testng-results><suite name="suite">` + body + `</suite></testng-results>`
}
