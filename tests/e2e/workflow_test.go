package e2e

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const (
	TEST_SWEEP_TIMEOUT = 30 * time.Second
	TEST_MCP_TIMEOUT   = 30 * time.Second
)

// setupEnv returns the cadence binary and an environment isolated to a temp home.
func setupEnv(t *testing.T) (string, []string, string) {
	t.Helper()

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get cwd: %v", err)
	}

	binDir := os.Getenv("CADENCE_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)

	cliPath := filepath.Join(binDir, "cadence")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s. Build it first or set CADENCE_BIN_DIR.", cliPath)
	}

	tempDir := t.TempDir()
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "HOME=") || strings.HasPrefix(e, "CADENCE_") {
			continue
		}
		env = append(env, e)
	}
	dbPath := filepath.Join(tempDir, "cadence", "cadence.db")
	env = append(env, fmt.Sprintf("HOME=%s", tempDir), fmt.Sprintf("CADENCE_DB=%s", dbPath))

	return cliPath, env, dbPath
}

func TestEndToEndWorkflow(t *testing.T) {
	cliPath, env, _ := setupEnv(t)

	t.Log("Initializing storage...")
	runCmd(t, cliPath, env, "init")

	t.Log("Adding category...")
	runCmd(t, cliPath, env, "category", "add", "Coffee", "--emoji", "☕")

	// ten mornings at 07:30 make a high confidence habit
	now := time.Now()
	for day := 1; day <= 10; day++ {
		at := time.Date(now.Year(), now.Month(), now.Day()-day, 7, 30, 0, 0, time.Local)
		runCmd(t, cliPath, env, "event", "record", "Coffee", "--at", at.Format(time.RFC3339))
	}

	out := runCmd(t, cliPath, env, "predict", "Coffee")
	if !strings.Contains(out, "07:30") || !strings.Contains(out, "HIGH") {
		t.Errorf("predict output = %q, want 07:30 with HIGH confidence", out)
	}

	out = runCmd(t, cliPath, env, "clusters", "Coffee")
	if !strings.Contains(out, "07:30") {
		t.Errorf("clusters output = %q, want a cluster at 07:30", out)
	}

	t.Log("Sweeping...")
	out = runCmd(t, cliPath, env, "sweep")
	if !strings.Contains(out, "1 ready") {
		t.Errorf("sweep output = %q, want one ready prediction", out)
	}

	out = runCmd(t, cliPath, env, "doctor")
	if !strings.Contains(out, "All diagnostics passed") {
		t.Errorf("doctor output = %q", out)
	}
}

func TestSweepWatch(t *testing.T) {
	cliPath, env, _ := setupEnv(t)
	runCmd(t, cliPath, env, "init")
	runCmd(t, cliPath, env, "category", "add", "Walk")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, cliPath, "sweep", "--watch")
	cmd.Env = env
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.Fatalf("Failed to get stdout pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start sweeper: %v", err)
	}
	defer func() {
		cancel()
		_ = cmd.Wait()
	}()

	waitForLine(t, stdout, "Predictions:", TEST_SWEEP_TIMEOUT)
}

func TestServeMCP(t *testing.T) {
	cliPath, env, _ := setupEnv(t)
	runCmd(t, cliPath, env, "init")
	runCmd(t, cliPath, env, "category", "add", "Coffee")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, cliPath, "serve", "--no-sweep")
	cmd.Env = env
	stdin, err := cmd.StdinPipe()
	if err != nil {
		t.Fatalf("Failed to get stdin pipe: %v", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.Fatalf("Failed to get stdout pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer func() {
		stdin.Close()
		cancel()
		_ = cmd.Wait()
	}()

	requests := []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"e2e","version":"0.0.0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"list_categories","arguments":{}}}`,
	}
	for _, req := range requests {
		if _, err := io.WriteString(stdin, req+"\n"); err != nil {
			t.Fatalf("Failed to write request: %v", err)
		}
	}

	waitForLine(t, stdout, "Coffee", TEST_MCP_TIMEOUT)
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}

func waitForLine(t *testing.T, r io.Reader, substr string, timeout time.Duration) {
	t.Helper()
	found := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if line := scanner.Text(); strings.Contains(line, substr) {
				found <- line
				return
			}
		}
	}()

	select {
	case line := <-found:
		t.Logf("Found line: %s", line)
	case <-time.After(timeout):
		t.Fatalf("Timed out waiting for output containing %q", substr)
	}
}
