package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(dir, "fintrack.db"))
	t.Setenv("STATE_KEY", "")
	t.Setenv("EXPORT_PATH", filepath.Join(dir, "export.csv"))
	t.Setenv("API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OFFLINE", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func exec(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

var idPattern = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)

func TestUsage(t *testing.T) {
	code, _, stderr := exec(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: fintrack")

	code, stdout, _ := exec(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "dark-mode")

	code, _, stderr = exec(t, "fly")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "fly"`)
}

func TestLedgerWorkflow(t *testing.T) {
	dir := setupEnv(t)

	code, out, errOut := exec(t, "add", "-type", "income", "-amount", "3000", "-category", "Salary", "-date", "2024-02-01")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Added income $3,000 Salary")

	code, out, errOut = exec(t, "add", "-amount", "42.5", "-category", "Food", "-date", "2024-02-03", "-note", `team "lunch"`)
	require.Equal(t, 0, code, errOut)
	m := idPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	foodID := m[1]

	code, out, _ = exec(t, "summary")
	require.Equal(t, 0, code)
	assert.Regexp(t, `Income\s+\$3,000`, out)
	assert.Regexp(t, `Expenses\s+\$42\.5`, out)
	assert.Regexp(t, `Balance\s+\$2,957\.5`, out)

	code, out, _ = exec(t, "list", "-type", "expense")
	require.Equal(t, 0, code)
	assert.Contains(t, out, foodID)
	assert.NotContains(t, out, "Salary")

	code, out, _ = exec(t, "list", "-to", "2024-02-01")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Salary")
	assert.NotContains(t, out, "Food")

	code, out, errOut = exec(t, "edit", "-id", foodID, "-amount", "50")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Updated expense $50 Food")

	code, out, _ = exec(t, "categories")
	require.Equal(t, 0, code)
	assert.Regexp(t, `Food\s+\$50\s+#F87171`, out)

	code, out, errOut = exec(t, "user", "-currency", "eur", "-name", "Ana")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Currency: EUR")
	code, out, _ = exec(t, "summary")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "€2,950")

	code, out, errOut = exec(t, "export")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Exported 2 transactions")
	b, err := os.ReadFile(filepath.Join(dir, "export.csv"))
	require.NoError(t, err)
	lines := strings.Split(string(b), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Type,Category,Amount,Note", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], `,expense,Food,50,"team ""lunch"""`), lines[1])

	code, out, _ = exec(t, "delete", foodID)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Deleted "+foodID)
	code, out, _ = exec(t, "delete", "-id", foodID)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "No transaction with id")
}

func TestValidationErrorsExitNonZero(t *testing.T) {
	setupEnv(t)

	code, _, errOut := exec(t, "add", "-amount", "10", "-category", "Yachts")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid input: unknown category")

	code, _, errOut = exec(t, "add", "-amount", "-3", "-category", "Food")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid amount")

	code, _, errOut = exec(t, "user", "-currency", "ZZZ")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid input")

	code, _, _ = exec(t, "list", "-bogus")
	assert.Equal(t, 2, code)
}

func TestDarkModeAndTips(t *testing.T) {
	setupEnv(t)

	code, out, _ := exec(t, "dark-mode")
	require.Equal(t, 0, code)
	assert.Equal(t, "Theme: dark\n", out)
	_, out, _ = exec(t, "dark-mode")
	assert.Equal(t, "Theme: light\n", out)

	code, out, _ = exec(t, "tips")
	require.Equal(t, 0, code)
	assert.Equal(t, "- Start adding transactions to get smart insights!\n", out)

	exec(t, "add", "-amount", "5", "-category", "Food")
	_, out, _ = exec(t, "tips")
	assert.Equal(t, 3, strings.Count(out, "- "))
}

func TestReset(t *testing.T) {
	setupEnv(t)
	exec(t, "add", "-amount", "5", "-category", "Food")

	code, _, errOut := exec(t, "reset")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "-yes")

	code, out, _ := exec(t, "reset", "-yes")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "All data deleted.")

	_, out, _ = exec(t, "list")
	assert.Equal(t, "No transactions.\n", out)
}
