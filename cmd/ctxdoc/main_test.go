package main_test

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// #nosec G204
func buildBinary(testSetup *testing.T) string {
	testSetup.Helper()
	if testing.Short() {
		testSetup.Skip("integration test builds the binary")
	}
	binaryName := "ctxdoc_integration_test_binary"
	if runtime.GOOS == "windows" {
		binaryName += ".exe"
	}
	binaryPath := filepath.Join(testSetup.TempDir(), binaryName)

	currentDirectory, directoryError := os.Getwd()
	if directoryError != nil {
		testSetup.Fatalf("Failed to get current working directory: %v", directoryError)
	}
	buildCommand := exec.Command("go", "build", "-o", binaryPath, ".")
	buildCommand.Dir = currentDirectory
	if outputData, buildErr := buildCommand.CombinedOutput(); buildErr != nil {
		testSetup.Fatalf("Failed to build binary: %v\nBuild Output:\n%s", buildErr, string(outputData))
	}
	return binaryPath
}

// #nosec G204
func runBinary(testSetup *testing.T, binaryPath string, workingDirectory string, arguments ...string) (string, int) {
	testSetup.Helper()
	command := exec.Command(binaryPath, arguments...)
	command.Dir = workingDirectory
	command.Env = append(os.Environ(), "HOME="+workingDirectory, "USERPROFILE="+workingDirectory)
	var combinedOutput bytes.Buffer
	command.Stdout = &combinedOutput
	command.Stderr = &combinedOutput
	runError := command.Run()
	if runError == nil {
		return combinedOutput.String(), 0
	}
	var exitError *exec.ExitError
	if !errors.As(runError, &exitError) {
		testSetup.Fatalf("Command failed to start: %v", runError)
	}
	return combinedOutput.String(), exitError.ExitCode()
}

func TestBinaryEndToEnd(testSetup *testing.T) {
	binaryPath := buildBinary(testSetup)
	workingDirectory := testSetup.TempDir()
	projectDirectory := filepath.Join(workingDirectory, "widget")
	if err := os.MkdirAll(filepath.Join(projectDirectory, ".git"), 0o755); err != nil {
		testSetup.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(projectDirectory, ".git", "HEAD"), []byte("ref"), 0o644); err != nil {
		testSetup.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(projectDirectory, "app.py"), []byte("print(\"hi\")\n"), 0o644); err != nil {
		testSetup.Fatalf("write: %v", err)
	}

	combinedOutput, exitCode := runBinary(testSetup, binaryPath, workingDirectory, "widget", "--format", "md")
	if exitCode != 0 {
		testSetup.Fatalf("expected success, got exit code %d:\n%s", exitCode, combinedOutput)
	}
	written, readError := os.ReadFile(filepath.Join(workingDirectory, "widget_context.md"))
	if readError != nil {
		testSetup.Fatalf("expected default output file: %v\n%s", readError, combinedOutput)
	}
	if !strings.Contains(string(written), "### app.py") || strings.Contains(string(written), "HEAD") {
		testSetup.Fatalf("unexpected document:\n%s", written)
	}

	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "missing root", arguments: []string{"absent"}},
		{name: "unsupported format", arguments: []string{"widget", "--format", "html"}},
		{name: "unwritable output", arguments: []string{"widget", "--output", filepath.Join("widget", "app.py", "out.md")}},
	}
	for _, testCase := range testCases {
		testSetup.Run(testCase.name, func(subTest *testing.T) {
			if combinedOutput, exitCode := runBinary(subTest, binaryPath, workingDirectory, testCase.arguments...); exitCode == 0 {
				subTest.Fatalf("expected non-zero exit code:\n%s", combinedOutput)
			}
		})
	}
}
