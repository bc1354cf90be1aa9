package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogurasousui/hr-records/internal/core/apperr"
)

func writeConfig(t *testing.T) string {
	t.Helper()

	for _, key := range []string{"DB_PATH", "DATABASE_URL", "HR_RELATIONAL_DRIVER", "MONGO_URI", "MONGO_DB", "HR_LOG_LEVEL", "CONFIG_PATH"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "hrctl.yaml")
	content := "relational:\n" +
		"  driver: sqlite\n" +
		"  sqlite:\n" +
		"    path: " + filepath.Join(dir, "company.db") + "\n" +
		"documents:\n" +
		"  uri: invalid://nowhere\n" +
		"  fallback: memory\n" +
		"log:\n" +
		"  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, cfgPath string, args ...string) ([]byte, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	err := run(context.Background(), append([]string{"--config", cfgPath}, args...), &out, &errOut)
	return out.Bytes(), err
}

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()

	var v map[string]any
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestHrctl_EmployeeProjectAssignmentFlow(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, "employee", "add",
		"--first-name", "Ada", "--last-name", "Lovelace", "--email", "ada@example.com",
		"--hire-date", "2020-04-01", "--department", "Engineering")
	require.NoError(t, err)
	emp := decode(t, out)
	assert.Equal(t, float64(1), emp["id"])
	assert.Equal(t, "Ada", emp["first_name"])

	_, err = execute(t, cfg, "employee", "add",
		"--first-name", "Other", "--last-name", "Person", "--email", "ADA@example.com",
		"--hire-date", "2021-01-01", "--department", "Sales")
	require.ErrorIs(t, err, apperr.ErrDuplicateKey)
	assert.Equal(t, 4, exitCode(err))

	out, err = execute(t, cfg, "project", "add", "--name", "Engine", "--start-date", "2025-01-01", "--status", "active")
	require.NoError(t, err)
	assert.Equal(t, "Active", decode(t, out)["status"])

	out, err = execute(t, cfg, "assignment", "add", "--employee", "1", "--project", "1", "--role", "Lead", "--date", "2025-02-01")
	require.NoError(t, err)
	assert.Equal(t, "Lead", decode(t, out)["role"])

	_, err = execute(t, cfg, "assignment", "add", "--employee", "1", "--project", "1", "--role", "Again")
	require.ErrorIs(t, err, apperr.ErrDuplicateAssignment)

	out, err = execute(t, cfg, "report", "team", "1")
	require.NoError(t, err)
	team := decode(t, out)
	members, ok := team["members"].([]any)
	require.True(t, ok, string(out))
	assert.Len(t, members, 1)

	_, err = execute(t, cfg, "employee", "delete", "1")
	require.ErrorIs(t, err, apperr.ErrStoreUnavailable)
	assert.Equal(t, 5, exitCode(err))

	_, err = execute(t, cfg, "project", "delete", "1")
	require.ErrorIs(t, err, apperr.ErrHasDependents)

	out, err = execute(t, cfg, "employee", "delete", "1", "--cascade")
	require.NoError(t, err)
	assert.Equal(t, float64(1), decode(t, out)["removed_assignments"])

	_, err = execute(t, cfg, "employee", "get", "1")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 3, exitCode(err))
}

func TestHrctl_UpdateOnlyChangesGivenFlags(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, cfg, "employee", "add",
		"--first-name", "Alan", "--last-name", "Turing", "--email", "alan@example.com",
		"--hire-date", "2019-06-23", "--department", "Research")
	require.NoError(t, err)

	out, err := execute(t, cfg, "employee", "update", "1", "--department", "Cryptanalysis")
	require.NoError(t, err)
	updated := decode(t, out)
	assert.Equal(t, "Cryptanalysis", updated["department"])
	assert.Equal(t, "Alan", updated["first_name"])
	assert.Equal(t, "alan@example.com", updated["email"])
}

func TestHrctl_ReviewForMissingEmployeeIsRejected(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, cfg, "review", "submit", "--employee", "42", "--date", "2025-03-01", "--reviewer", "Grace", "--rating", "4")
	require.Error(t, err)
	assert.True(t, apperr.Resolvable(err))
}

func TestHrctl_Status(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, "status")
	require.NoError(t, err)
	status := decode(t, out)
	assert.Equal(t, "sqlite", status["relational_driver"])
	assert.Equal(t, true, status["reviews_degraded"])
}

func TestHrctl_InvalidID(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, cfg, "project", "get", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project id")
}
