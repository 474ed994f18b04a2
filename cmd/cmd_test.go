// File: cmd/cmd_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digoaraujo/Testy/internal/locator"
)

const probePage = `<html><body>
<form class="login">
  <label>User name</label><span><input id="user" name="user" type="text" value="bob"></span>
  <label class="checkbox"><input type="checkbox" checked>Remember me</label>
  <button id="go" type="submit"> Sign in </button>
</form>
</body></html>`

// run executes the command tree with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TESTY_LOGGER_LEVEL", "fatal")
	t.Setenv("TESTY_LOCATOR_RETRY_PAUSE", "1ms")
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writePage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(probePage), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "testy version "+Version+"\n", out)

	out, err = run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestXPathCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "any element",
			args: nil,
			want: "//*",
		},
		{
			name: "checkbox in label",
			args: []string{"--tag", "input", "--type", "checkbox", "--label", "Stop the process", "--search", "contains", "--label-position", "ancestor"},
			want: "//label[text()[contains(.,'Stop the process')]]//input[@type='checkbox']",
		},
		{
			name: "container and position",
			args: []string{"--container-id", "main", "--class", "row", "--position", "2"},
			want: "//*[@id='main']//*[contains(concat(' ', normalize-space(@class), ' '), ' row ')][2]",
		},
		{
			name: "attributes",
			args: []string{"--tag", "input", "--attr-eq", "name=user", "--attr-eq", "data-x=a=b"},
			want: "//input[@name='user' and @data-x='a=b']",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"xpath"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestXPathCmdRejectsBadFlags(t *testing.T) {
	tests := []struct {
		args []string
		msg  string
	}{
		{[]string{"--label", "x", "--search", "fuzzy"}, "invalid --search"},
		{[]string{"--label", "x", "--label-position", "parent"}, "invalid --label-position"},
		{[]string{"--attr-eq", "novalue"}, "invalid --attr-eq"},
		{[]string{"--position", "-1"}, "invalid --position"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			_, err := run(t, append([]string{"xpath"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestProbeFile(t *testing.T) {
	page := writePage(t)

	out, err := run(t, "probe", "--file", page,
		"--tag", "input", "--label", "User name", "--search", "equals,trim", "--label-position", "sibling-descendant",
		"--attr", "name", "--attr", "missing")
	require.NoError(t, err)

	var report probeReport
	require.NoError(t, jsonCodec.Unmarshal([]byte(out), &report))
	assert.True(t, report.Found)
	assert.Equal(t, 1, report.Matches)
	assert.Equal(t, "input", report.Tag)
	assert.Equal(t, "user", report.ID)
	assert.True(t, report.Displayed)
	assert.True(t, report.Enabled)
	assert.Equal(t, map[string]string{"name": "user"}, report.Attributes)
	assert.Equal(t, "User name", report.Locator)
}

func TestProbeFileSelectedState(t *testing.T) {
	page := writePage(t)
	out, err := run(t, "probe", "--file", page,
		"--container-class", "login", "--tag", "input", "--type", "checkbox",
		"--label", "Remember", "--search", "contains", "--label-position", "ancestor")
	require.NoError(t, err)
	assert.Contains(t, out, `"selected": true`)
}

func TestProbeNotFound(t *testing.T) {
	page := writePage(t)
	out, err := run(t, "probe", "--file", page, "--id", "nope", "--timeout", "20ms")
	require.Error(t, err)

	var notFound *locator.ElementNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "//*[@id='nope']", notFound.Selector)
	assert.Contains(t, out, `"found": false`)
}

func TestProbeNeedsExactlyOneSource(t *testing.T) {
	_, err := run(t, "probe", "--id", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of --file or --url")

	_, err = run(t, "probe", "--id", "x", "--file", "a.html", "--url", "http://localhost")
	require.Error(t, err)
}

func TestProbeMissingFile(t *testing.T) {
	_, err := run(t, "probe", "--file", filepath.Join(t.TempDir(), "absent.html"), "--id", "x")
	require.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "testy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locator:\n  poll_interval: 0s\n"), 0o600))

	_, err := run(t, "--config", path, "xpath", "--id", "a")
	require.Error(t, err, "an invalid config file fails before the command runs")
	assert.Contains(t, err.Error(), "poll_interval must be a positive duration")

	_, err = run(t, "--config", filepath.Join(dir, "absent.yaml"), "xpath")
	require.Error(t, err, "an explicit config file must exist")
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestInitializeConfigReadsEnvironment(t *testing.T) {
	t.Setenv("TESTY_LOCATOR_MIN_CHARS_TO_TYPE", "12")
	v := viper.New()
	require.NoError(t, initializeConfig(v, ""))
	assert.Equal(t, "12", strings.TrimSpace(v.GetString("locator.min_chars_to_type")))
}

func TestGetConfigFromContext(t *testing.T) {
	_, err := getConfigFromContext(context.Background())
	assert.Error(t, err)
}
