package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/solushipx/logisynapse/shared/identity"
)

// useSQLite points the store flags at a fresh database for one test.
func useSQLite(t *testing.T) {
	t.Helper()
	logger = zap.NewNop()
	driver = "sqlite"
	sqlitePath = filepath.Join(t.TempDir(), "matchctl.db")
	configFile = ""
	t.Cleanup(func() {
		driver, sqlitePath, userID, companyID, remoteAddr = "", "", "", "", ""
	})
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestVariantsCmd(t *testing.T) {
	logger = zap.NewNop()
	cmd, out := newTestCmd()

	require.NoError(t, runVariants(cmd, []string{"shp-0"}))
	assert.Equal(t, "SHP-0\n5HP-0\nSHP-O\nSHP-Q\nSHP-D\n", out.String())
}

func TestImportThenSearch(t *testing.T) {
	useSQLite(t)

	file := filepath.Join(t.TempDir(), "docs.json")
	docs := `[
		{"id": "doc-1", "shipmentID": "SHP-001", "carrier": "UPS", "totalCharges": 42.5,
		 "shipFrom": {"city": "Austin"}, "shipTo": {"city": "Denver"}},
		{"id": "doc-2", "shipmentID": "SHP-002", "trackingNumber": "1Z999",
		 "shipFrom": {"city": "Reno"}, "shipTo": {"city": "Boise"}},
		{"id": "doc-3"}
	]`
	require.NoError(t, os.WriteFile(file, []byte(docs), 0o644))

	cmd, out := newTestCmd()
	require.NoError(t, runImport(cmd, []string{file}))
	assert.Contains(t, out.String(), "imported 2, skipped 1")

	cmd, out = newTestCmd()
	require.NoError(t, runSearch(cmd, []string{"shp-0o1"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "doc-1")
	assert.Contains(t, lines[1], "UPS")
	assert.Contains(t, lines[1], "42.50")
	assert.Contains(t, lines[1], "0.7")

	cmd, out = newTestCmd()
	require.NoError(t, runSearch(cmd, []string{"NOTHING-HERE"}))
	assert.Equal(t, "no matches\n", out.String())
}

func TestSearchCmd_RejectsBadUser(t *testing.T) {
	useSQLite(t)
	userID = "not-a-uuid"

	cmd, _ := newTestCmd()
	assert.ErrorContains(t, runSearch(cmd, []string{"SHP-001"}), "invalid --user")
}

func TestMigrateCmd(t *testing.T) {
	useSQLite(t)

	cmd, out := newTestCmd()
	require.NoError(t, runMigrate(cmd, nil))
	// a second run finds the schema in place
	require.NoError(t, runMigrate(cmd, nil))
	assert.Equal(t, "schema up to date\nschema up to date\n", out.String())
}

func TestHashKeyCmd(t *testing.T) {
	logger = zap.NewNop()
	keyID, keyRole, userID = "ops-1", identity.RoleOperator, "9b2f5f0e-5a5c-4bb1-9a53-5a7b2c1b7e10"
	t.Cleanup(func() { keyID, keyRole, userID = "", "", "" })

	cmd, out := newTestCmd()
	require.NoError(t, runHashKey(cmd, []string{"s3cret"}))

	var kf struct {
		Keys []identity.APIKey `yaml:"keys"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &kf))
	require.Len(t, kf.Keys, 1)
	assert.Equal(t, "ops-1", kf.Keys[0].ID)

	ok, err := identity.VerifySecret("s3cret", kf.Keys[0].Hash)
	require.NoError(t, err)
	assert.True(t, ok)
}
