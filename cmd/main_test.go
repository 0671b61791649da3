package main

import (
	"flag"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestMainHelper is executed in a separate subprocess to call main() safely.
// It resets the default flag set and reconstructs os.Args based on the env var
// GO_HELPER_ARGS to avoid interference with the testing package's flags.
func TestMainHelper(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	// Reset the global flag set so our app's flags can parse cleanly
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	helperArgs := os.Getenv("GO_HELPER_ARGS")
	if helperArgs != "" {
		os.Args = append([]string{"cmd"}, strings.Fields(helperArgs)...)
	} else {
		os.Args = []string{"cmd"}
	}

	// Call the real main; it will call os.Exit(...) on failure
	main()
	os.Exit(0)
}

// runMain is a helper to spawn the current test binary and execute TestMainHelper
// which in turn calls the program's main().
func runMain(t *testing.T, args []string, extraEnv map[string]string) (output string, exitCode int) {
	t.Helper()

	cmd := exec.Command(os.Args[0], "-test.run", "TestMainHelper")

	env := os.Environ()
	env = append(env,
		"GO_WANT_HELPER_PROCESS=1",
		"GO_HELPER_ARGS="+strings.Join(args, " "),
		// Disable godotenv so tests don't pick up a local .env file
		"GODOTENV_DISABLE=1",
		"PIPEFY_TOKEN=",
		"TABLES_FILE=",
		"CONFIG_SHEET_ID=",
		"SCHEDULE=",
		"LOG_FORMAT=",
	)
	for k, v := range extraEnv {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	out, err := cmd.CombinedOutput()
	output = string(out)

	if err == nil {
		return output, 0
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		return output, exitErr.ExitCode()
	}

	return output, -1
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const authorizedUser = `{
  "type": "authorized_user",
  "client_id": "client.apps.googleusercontent.com",
  "client_secret": "secret",
  "refresh_token": "refresh"
}`

func TestMain_HelpFlag_ExitsZeroAndPrintsUsage(t *testing.T) {
	out, code := runMain(t, []string{"--help"}, nil)

	if code != 0 {
		t.Fatalf("expected exit code 0 for --help, got %d. Output: %s", code, out)
	}
	if !strings.Contains(out, "Pipefy Exporter") || !strings.Contains(out, "VERWENDUNG:") {
		t.Fatalf("expected usage text in output, got: %s", out)
	}
}

func TestMain_ParseFlagsError_ExitsOneAndPrintsMessage(t *testing.T) {
	out, code := runMain(t, nil, nil)

	if code != 1 {
		t.Fatalf("expected exit code 1 for parse error, got %d. Output: %s", code, out)
	}
	if !strings.Contains(out, "Fehler beim Parsen der Flags") {
		t.Fatalf("expected parse error message, got: %s", out)
	}
}

func TestMain_InvalidLogFormat_ExitsOne(t *testing.T) {
	env := map[string]string{
		"PIPEFY_TOKEN": "dummy-token",
		"TABLES_FILE":  "tables.json",
		"LOG_FORMAT":   "xml",
	}

	out, code := runMain(t, nil, env)

	if code != 1 {
		t.Fatalf("expected exit code 1, got %d. Output: %s", code, out)
	}
	if !strings.Contains(out, "Logger konnte nicht erstellt werden") {
		t.Fatalf("expected logger error message, got: %s", out)
	}
}

func TestMain_MissingCredentials_ExitsOne(t *testing.T) {
	env := map[string]string{
		"PIPEFY_TOKEN":       "dummy-token",
		"TABLES_FILE":        "tables.json",
		"GOOGLE_CREDENTIALS": filepath.Join(t.TempDir(), "missing.json"),
	}

	out, code := runMain(t, nil, env)

	if code != 1 {
		t.Fatalf("expected exit code 1, got %d. Output: %s", code, out)
	}
	if !strings.Contains(out, "Initialisierung fehlgeschlagen") {
		t.Fatalf("expected init error message, got: %s", out)
	}
}

func TestMain_ExportError_ExitsOneAndPrintsMessage(t *testing.T) {
	// Gültige Konfiguration, aber Pipefy ist nicht erreichbar
	env := map[string]string{
		"PIPEFY_TOKEN":       "dummy-token",
		"PIPEFY_URL":         "http://127.0.0.1:9/graphql",
		"GOOGLE_CREDENTIALS": writeFile(t, "credentials.json", authorizedUser),
		"TABLES_FILE":        writeFile(t, "tables.json", `{"clientes": [301, "sheet-a"]}`),
		"HTTP_TIMEOUT":       "2s",
	}

	out, code := runMain(t, nil, env)

	if code != 1 {
		t.Fatalf("expected exit code 1 for export error, got %d. Output: %s", code, out)
	}
	if !strings.Contains(out, "Export fehlgeschlagen") {
		t.Fatalf("expected export error message, got: %s", out)
	}
}
