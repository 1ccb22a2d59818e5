package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcode-engine/engine/cli"
)

func TestRunCommandDemoDictionaryScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.gcode")
	require.NoError(t, writeFile(path, "M104 S{foo.bar.biz}\n"))

	var out bytes.Buffer
	h := cli.NewHarness(cli.WithOutput(&out))
	require.NoError(t, h.ExecuteArgs([]string{"run", path}))

	assert.Equal(t, "M104 Sbaz\n", out.String())
}

func TestRunCommandBlankAndCommentLinesProduceNoCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.gcode")
	require.NoError(t, writeFile(path, "; comment only\n\nG28\n"))

	var out bytes.Buffer
	h := cli.NewHarness(cli.WithOutput(&out))
	require.NoError(t, h.ExecuteArgs([]string{"run", path}))

	assert.Equal(t, "G28\n", out.String())
}

func TestRunCommandReportsEvalErrorsWithoutHaltingSubsequentStatements(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.gcode")
	require.NoError(t, writeFile(path, "G1 X{1/0}\nG1 X2\n"))

	var out bytes.Buffer
	h := cli.NewHarness(cli.WithOutput(&out))
	require.NoError(t, h.ExecuteArgs([]string{"run", path}))

	assert.Contains(t, out.String(), "error:")
	assert.Contains(t, out.String(), "G1 X2\n")
}

func TestRunCommandWithCustomJSONEnvironment(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "env.json")
	require.NoError(t, writeFile(envPath, `{"SPEED": 1500}`))

	gcodePath := filepath.Join(dir, "demo.gcode")
	require.NoError(t, writeFile(gcodePath, "G1 X{speed}\n"))

	var out bytes.Buffer
	h := cli.NewHarness(cli.WithOutput(&out))
	require.NoError(t, h.ExecuteArgs([]string{"--env", envPath, "run", gcodePath}))

	assert.Equal(t, "G1 X1500\n", out.String())
}

func TestRunCommandWithRecordFlagWritesReplayableTrace(t *testing.T) {
	dir := t.TempDir()
	gcodePath := filepath.Join(dir, "demo.gcode")
	require.NoError(t, writeFile(gcodePath, "G28\n"))
	tracePath := filepath.Join(dir, "trace.cbor")

	var out bytes.Buffer
	h := cli.NewHarness(cli.WithOutput(&out))
	require.NoError(t, h.ExecuteArgs([]string{"--record", tracePath, "run", gcodePath}))

	require.FileExists(t, tracePath)
}

func TestRunCommandM112FiresAtParseTimeAndStillDrainsNormally(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.gcode")
	require.NoError(t, writeFile(path, "M112\nG1 X1\n"))

	var out bytes.Buffer
	h := cli.NewHarness(cli.WithOutput(&out))
	require.NoError(t, h.ExecuteArgs([]string{"run", path}))

	assert.Equal(t, "M112\nG1 X1\n", out.String())
}

func TestWatchCommandPicksUpNewAndModifiedFiles(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	h := cli.NewHarness(cli.WithOutput(&out))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- h.ExecuteArgsContext(ctx, []string{"watch", dir})
	}()

	// Give the watcher a moment to start before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, writeFile(filepath.Join(dir, "boot.gcode"), "G28\n"))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch command did not stop when context was cancelled")
	}

	assert.Contains(t, out.String(), "G28\n")
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
