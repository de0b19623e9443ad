// Package utils contains the internal test utils for module tests.
package utils

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	pam "github.com/thetorpedodog/gopam"
)

// TestSetup is a playground for loading generated PAM test modules through
// service files in a private configuration directory.
type TestSetup struct {
	t       *testing.T
	workDir string
}

// NewTestSetup creates a new TestSetup with its own work directory.
func NewTestSetup(t *testing.T) *TestSetup {
	t.Helper()
	return &TestSetup{t: t, workDir: t.TempDir()}
}

// WorkDir returns the test setup work directory.
func (ts *TestSetup) WorkDir() string {
	return ts.workDir
}

// GenerateModule runs go generate in the given module package, which both
// regenerates its entry points and builds the shared library, and moves the
// result into the work directory.
func (ts *TestSetup) GenerateModule(testModulePath string, moduleName string) string {
	ts.t.Helper()

	cmd := exec.Command("go", "generate", "-C", testModulePath)
	out, err := cmd.CombinedOutput()
	require.NoError(ts.t, err, "can't build pam module: %s", out)

	builtFile := filepath.Join(cmd.Dir, testModulePath, moduleName)
	modulePath := filepath.Join(ts.workDir, filepath.Base(builtFile))
	require.NoError(ts.t, os.Rename(builtFile, modulePath),
		"can't move module to work directory")

	return modulePath
}

// CreateService writes a service file for the provided module stack and
// returns the service name to use with StartConfDir.
func (ts *TestSetup) CreateService(serviceName string, services []ServiceLine) string {
	ts.t.Helper()

	if !pam.CheckPamHasStartConfdir() {
		ts.t.Skip("PAM has no support for custom service directories")
		return ""
	}

	serviceName = strings.ToLower(serviceName)
	var contents []string
	for _, s := range services {
		contents = append(contents, strings.TrimRight(strings.Join([]string{
			s.Action.String(), s.Control.String(), s.Module,
			strings.Join(s.Args, " "),
		}, "\t"), "\t"))
	}

	serviceFile := filepath.Join(ts.workDir, serviceName)
	require.NoError(ts.t, os.WriteFile(serviceFile,
		[]byte(strings.Join(contents, "\n")), 0600),
		"can't create service file %v", serviceFile)

	return serviceName
}
