//go:build unix

package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tfevents/internal/errors"
	"tfevents/internal/journal"
	"tfevents/internal/models"
)

const fakeTerraform = `#!/bin/sh
printf '%s\n' "$*" >> "$(pwd)/args.log"
case "$1" in
init)
  echo "Terraform has been successfully initialized!"
  ;;
plan)
  echo "  # null_resource.a will be created"
  echo "  # null_resource.b will be created"
  echo "Plan: 2 to add, 0 to change, 0 to destroy."
  ;;
apply)
  echo "null_resource.a: Creating..."
  echo "null_resource.b: Creating..."
  echo "null_resource.a: Creation complete after 0s [id=1]"
  echo "null_resource.b: Creation complete after 0s [id=2]"
  echo "Apply complete! Resources: 2 added, 0 changed, 0 destroyed."
  ;;
destroy)
  echo "null_resource.a: Destroying... [id=1]"
  echo "null_resource.a: Destruction complete after 0s"
  echo "Destroy complete! Resources: 1 destroyed."
  ;;
esac
exit "${FAKE_TF_EXIT:-0}"
`

type testEnv struct {
	dir     string
	binary  string
	config  string
	journal string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		dir:     filepath.Join(root, "infra"),
		binary:  filepath.Join(root, "terraform"),
		config:  filepath.Join(root, "config", "config.yaml"),
		journal: filepath.Join(root, "state", "journal.db"),
	}
	require.NoError(t, os.Mkdir(env.dir, 0755))
	require.NoError(t, os.WriteFile(env.binary, []byte(fakeTerraform), 0755))
	return env
}

func (e *testEnv) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	full := append([]string{
		"--config", e.config,
		"--binary", e.binary,
		"--chdir", e.dir,
		"--journal", e.journal,
	}, args...)

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(full)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func (e *testEnv) args(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dir, "args.log"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func decodeLines[T any](t *testing.T, out string) []T {
	t.Helper()
	var values []T
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var v T
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &v), scanner.Text())
		values = append(values, v)
	}
	require.NoError(t, scanner.Err())
	return values
}

func TestRun_FullLifecycleAsJSON(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.execute(t, "--json", "--yes", "run", "--destroy")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"init -force-copy -no-color",
		"plan -input=false -out=tfevents.tfplan -no-color",
		"apply -auto-approve -input=false -no-color tfevents.tfplan",
		"destroy -auto-approve -no-color",
	}, env.args(t))

	events := decodeLines[models.TerraformEvent](t, out)
	require.Len(t, events, 1+3+5+3)

	assert.Equal(t, models.CommandInit, events[0].Command)
	assert.False(t, events[0].HasStatus())

	planSummary := events[3]
	assert.Equal(t, models.CommandPlan, planSummary.Command)
	assert.Equal(t, models.StatusCompleted, planSummary.Status)
	assert.Equal(t, uint32(2), *planSummary.CreateCount)

	applyDone := events[6]
	assert.Equal(t, models.StatusDone, applyDone.Status)
	assert.Equal(t, "null_resource.a", applyDone.ResourcePath)
	assert.Equal(t, "1", applyDone.IDValue)

	last := events[len(events)-1]
	assert.Equal(t, models.CommandDestroy, last.Command)
	assert.Equal(t, uint32(1), *last.DeleteCount)
	assert.Nil(t, last.CreateCount)
}

func TestHistory_ListsAndReplaysRuns(t *testing.T) {
	env := newTestEnv(t)

	runOut, err := env.execute(t, "--json", "--yes", "run")
	require.NoError(t, err)
	ran := decodeLines[models.TerraformEvent](t, runOut)

	out, err := env.execute(t, "--json", "history")
	require.NoError(t, err)
	runs := decodeLines[journal.Run](t, out)
	require.Len(t, runs, 1)
	assert.Equal(t, len(ran), runs[0].Events)
	assert.Equal(t, env.dir, runs[0].WorkingDir)
	require.Len(t, runs[0].Commands, 3)
	for _, rec := range runs[0].Commands {
		assert.Equal(t, "success", rec.Outcome, rec.Command)
	}
	assert.False(t, runs[0].FinishedAt.IsZero())

	out, err = env.execute(t, "--json", "history", runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, ran, decodeLines[models.TerraformEvent](t, out))

	out, err = env.execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, runs[0].ID)
	assert.Contains(t, out, "init:success plan:success apply:success")
}

func TestRun_StopsAtFailingCommand(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.execute(t, "--json", "--yes", "--env", "FAKE_TF_EXIT=1", "run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "terraform init exited with status 1")
	assert.Equal(t, []string{"init -force-copy -no-color"}, env.args(t))
}

func TestApply_RequiresConfirmationWithoutTerminal(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.execute(t, "apply")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Empty(t, env.args(t))
}

func TestPlan_PlainOutput(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.execute(t, "--no-journal", "plan")

	require.NoError(t, err)
	assert.Contains(t, out, "  # null_resource.a will be created\n")
	assert.Contains(t, out, "Plan: 2 to add, 0 to change, 0 to destroy.\n")
	assert.Contains(t, out, "plan finished in")
	assert.NotContains(t, out, "\033[")
	assert.NoFileExists(t, env.journal)
}

func TestFlags_InvalidEnv(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.execute(t, "--env", "NOEQUALS", "init")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.True(t, apperrors.IsErrInvalidInput(err))
}

func TestFlags_MissingBinary(t *testing.T) {
	env := newTestEnv(t)
	env.binary = filepath.Join(t.TempDir(), "no-terraform-here")

	_, err := env.execute(t, "init")

	require.Error(t, err)
	assert.True(t, apperrors.IsConfigurationError(err))
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "tfevents 0.1.0")
}

func TestInit_WithMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.execute(t, "--json", "--metrics-addr", "127.0.0.1:0", "init")

	require.NoError(t, err)
	events := decodeLines[models.TerraformEvent](t, out)
	require.Len(t, events, 1)
	assert.Equal(t, "Terraform has been successfully initialized!", events[0].Source)
}

func TestHistory_PickNeedsTerminal(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.execute(t, "history", "--pick")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}
