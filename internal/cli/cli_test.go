package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TABULA_CONFIG", "")
	t.Setenv("TABULA_ENV", "test")

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "tabula", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"serve", "validate", "explain", "ask", "tables"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	portFlag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, portFlag)
	assert.Equal(t, "p", portFlag.Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "tables")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

// ─── validate / explain ───────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", "SELECT * FROM sales")
	require.NoError(t, err)
	assert.Equal(t, "Valid SQL query.\n", out)

	out, err = execute(t, "validate", "SELECT * sales")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Invalid SQL query.\n", out)
}

func TestValidateEmpty(t *testing.T) {
	_, err := execute(t, "validate", "  ")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExplainJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "explain", "DELETE x FROM sales")
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"DELETE x FROM sales","explanation":"This query deletes records from the specified table."}`, out)
}

func TestExplainInvalid(t *testing.T) {
	_, err := execute(t, "explain", "DROP TABLE sales")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Invalid SQL query. Cannot explain.", err.Error())
}

// ─── ask ──────────────────────────────────────────────────────────────────────

func TestAskCount(t *testing.T) {
	out, err := execute(t, "ask", "How many laptops in North?")
	require.NoError(t, err)
	assert.Contains(t, out, "Query:  SELECT COUNT FROM sales WHERE region IN ('north') AND product = 'laptop'\n")
	assert.Contains(t, out, "Answer: Found 9 records matching your criteria\n")
	assert.Contains(t, out, "Count:  9\n")
}

func TestAskJoinsArguments(t *testing.T) {
	out, err := execute(t, "--format", "json", "ask", "how", "many", "phones")
	require.NoError(t, err)

	var resp struct {
		Question string `json:"question"`
		Result   struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "how many phones", resp.Question)
	assert.Equal(t, 33, resp.Result.Count)
}

func TestAskYAML(t *testing.T) {
	out, err := execute(t, "--format", "yaml", "ask", "total sales in south")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT SUM FROM sales WHERE region IN ('south')")
	assert.Contains(t, out, "matched_count: 25\n")
	assert.Contains(t, out, "operation: SUM\n")
}

func TestAskRows(t *testing.T) {
	out, err := execute(t, "ask", "show tablets in east")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "PRODUCT")
	assert.Contains(t, out, "Tablet")
	assert.Contains(t, out, "East")
}

func TestAskAverageNote(t *testing.T) {
	out, err := execute(t, "ask", "average laptop sales")
	require.NoError(t, err)
	assert.Contains(t, out, "Note:   average_not_implemented\n")
}

// ─── tables / config ──────────────────────────────────────────────────────────

func TestTablesFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabula.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset_table: orders\ndataset_rows: 12\n"), 0o600))

	out, err := execute(t, "--config", path, "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "TABLE")
	assert.Regexp(t, `orders\s+12`, out)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "tables")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
