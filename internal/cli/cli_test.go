package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/ledger-reconcile/internal/application/service"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/reconciler"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

type fixture struct {
	dir    string
	config string
	pathA  string
	pathB  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		config: filepath.Join(dir, "config.yaml"),
		pathA:  filepath.Join(dir, "books.csv"),
		pathB:  filepath.Join(dir, "bank.csv"),
	}

	cfg := fmt.Sprintf("storage:\n  database_path: %q\nobservability:\n  logging:\n    level: error\n", filepath.Join(dir, "runs.db"))
	require.NoError(t, os.WriteFile(f.config, []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(f.pathA, []byte("2024-01-05,Sales,100,Acme\n2024-01-09,Ops,7.50,Bob\n"), 0o644))
	require.NoError(t, os.WriteFile(f.pathB, []byte("2024-01-06,Sales,100,Acme\n2024-01-20,HR,3,Eve\n"), 0o644))
	return f
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Execute("test", args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun_JSON(t *testing.T) {
	f := newFixture(t)

	out, _, err := execute(t, "run", f.pathA, f.pathB, "--config", f.config, "--format", "json")

	require.NoError(t, err)
	var report service.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, reconciler.Ledger{
		{"2024-01-05", "Sales", "100", "Acme", "FOUND"},
		{"2024-01-09", "Ops", "7.50", "Bob", "MISSING"},
	}, report.A)
	assert.Equal(t, reconciler.StatusMissing, reconciler.StatusOf(report.B[1]))
	assert.Equal(t, 1, report.Summary.Matched)
	assert.Empty(t, report.RunID)
}

func TestRun_CSV(t *testing.T) {
	f := newFixture(t)

	out, _, err := execute(t, "run", f.pathA, f.pathB, "--config", f.config, "--format", "csv")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"side,row,date,department,amount,beneficiary,status,match",
		"a,0,2024-01-05,Sales,100,Acme,FOUND,B0 (+1d)",
		"a,1,2024-01-09,Ops,7.50,Bob,MISSING,-",
		"b,0,2024-01-06,Sales,100,Acme,FOUND,A0 (-1d)",
		"b,1,2024-01-20,HR,3,Eve,MISSING,-",
	}, lines)
}

func TestRun_Table(t *testing.T) {
	f := newFixture(t)

	out, _, err := execute(t, "run", f.pathA, f.pathB, "--config", f.config, "--format", "table")

	require.NoError(t, err)
	assert.Contains(t, out, "Ledger A: "+f.pathA)
	assert.Contains(t, out, "MISSING")
	assert.Contains(t, out, "Summary: Matched=1")
	assert.Contains(t, out, "A: 2 rows, 1 missing (7.50)")
}

func TestRun_ToleranceFlag(t *testing.T) {
	f := newFixture(t)

	out, _, err := execute(t, "run", f.pathA, f.pathB, "--config", f.config, "--format", "json", "--tolerance", "0")

	require.NoError(t, err)
	var report service.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 0, report.Summary.Matched)
	assert.Equal(t, 0, report.Summary.DateTolerance)
}

func TestRun_WritesAnnotatedFiles(t *testing.T) {
	f := newFixture(t)
	outA := filepath.Join(f.dir, "books.out.csv")
	outB := filepath.Join(f.dir, "bank.out.xlsx")

	_, _, err := execute(t, "run", f.pathA, f.pathB, "--config", f.config, "--format", "json", "--out-a", outA, "--out-b", outB)

	require.NoError(t, err)
	data, err := os.ReadFile(outA)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05,Sales,100,Acme,FOUND\n2024-01-09,Ops,7.50,Bob,MISSING\n", string(data))
	assert.FileExists(t, outB)
}

func TestRun_FailOnMissing(t *testing.T) {
	f := newFixture(t)

	_, _, err := execute(t, "run", f.pathA, f.pathB, "--config", f.config, "--format", "json", "--fail-on-missing")

	assert.True(t, errors.Is(err, ErrUnbalanced))
}

func TestRun_Errors(t *testing.T) {
	f := newFixture(t)
	badDate := filepath.Join(f.dir, "bad.csv")
	require.NoError(t, os.WriteFile(badDate, []byte("05/01/2024,Sales,100,Acme\n"), 0o644))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "malformed date", args: []string{"run", badDate, f.pathB}, wantErr: "does not match layout"},
		{name: "unsupported file", args: []string{"run", filepath.Join(f.dir, "x.pdf"), f.pathB}, wantErr: "unsupported ledger format"},
		{name: "bad format", args: []string{"run", f.pathA, f.pathB, "--format", "yaml"}, wantErr: "unknown format"},
		{name: "negative tolerance", args: []string{"run", f.pathA, f.pathB, "--tolerance", "-1"}, wantErr: "invalid flags"},
		{name: "missing argument", args: []string{"run", f.pathA}, wantErr: "accepts 2 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, append(tt.args, "--config", f.config)...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRuns_ListAndShow(t *testing.T) {
	// Arrange - persist one run
	f := newFixture(t)
	out, _, err := execute(t, "run", f.pathA, f.pathB, "--config", f.config, "--format", "json", "--persist")
	require.NoError(t, err)
	var report service.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotEmpty(t, report.RunID)

	// Act
	listOut, _, err := execute(t, "runs", "list", "--config", f.config, "--format", "json")
	require.NoError(t, err)
	showOut, _, err := execute(t, "runs", "show", report.RunID, "--config", f.config, "--format", "csv", "--status", "MISSING")
	require.NoError(t, err)

	// Assert
	var runs []*storage.Run
	require.NoError(t, json.Unmarshal([]byte(listOut), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, report.RunID, runs[0].ID)
	assert.Equal(t, storage.RunStatusCompleted, runs[0].Status)

	assert.Equal(t,
		"Side,#,Fields,Status,Match,Days\nA,1,2024-01-09 | Ops | 7.50 | Bob,MISSING,-,\nB,1,2024-01-20 | HR | 3 | Eve,MISSING,-,\n",
		showOut)

	_, _, err = execute(t, "runs", "show", "nope", "--config", f.config)
	assert.ErrorContains(t, err, "not found")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "reconcile test"))
}

func TestRoot_BadConfigPath(t *testing.T) {
	_, _, err := execute(t, "version", "--config", filepath.Join(t.TempDir(), "missing.yaml"))

	assert.ErrorContains(t, err, "failed to load config")
}

func TestRoot_BrokenDefaultConfigIsReported(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("reconcile: ["), 0o644))
	t.Chdir(dir)

	_, _, err := execute(t, "version")

	assert.ErrorContains(t, err, "failed to parse config")
}

func TestRoot_MissingDefaultConfigUsesEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RECONCILE_CSV_DELIMITER", "::")

	_, _, err := execute(t, "version")

	assert.ErrorContains(t, err, "invalid environment config")
}
