package main

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entryPoints = []string{
	"pam_sm_authenticate",
	"pam_sm_setcred",
	"pam_sm_acct_mgmt",
	"pam_sm_open_session",
	"pam_sm_close_session",
	"pam_sm_chauthtok",
}

func defaultOptions() modulerOptions {
	return modulerOptions{
		libName: "pam_go.so",
		output:  "pam_module.go",
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	source, err := generate(defaultOptions(), nil)
	require.NoError(t, err)
	content := string(source)

	for _, entryPoint := range entryPoints {
		assert.Contains(t, content, "//export "+entryPoint)
		assert.Contains(t, content, "func "+entryPoint+"(pamh unsafe.Pointer")
	}

	assert.Contains(t, content,
		`//go:generate go build "-ldflags=-s -w" -buildmode=c-shared -o pam_go.so`)
	assert.Contains(t, content, "func main() {}")
	assert.True(t, strings.HasPrefix(content,
		`// Code generated by "pam-moduler"; DO NOT EDIT.`))

	fset := token.NewFileSet()
	_, err = parser.ParseFile(fset, "pam_module.go", source, parser.AllErrors)
	require.NoError(t, err, "generated source must parse")
}

func TestGenerateNoMain(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()
	opts.noMain = true
	source, err := generate(opts, []string{"--no-main"})
	require.NoError(t, err)

	content := string(source)
	assert.NotContains(t, content, "func main()")
	assert.True(t, strings.HasPrefix(content,
		`// Code generated by "pam-moduler --no-main"; DO NOT EDIT.`))
}

func TestGenerateLibName(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()
	opts.libName = "pam_authtest.so"
	source, err := generate(opts, nil)
	require.NoError(t, err)
	assert.Contains(t, string(source), "-buildmode=c-shared -o pam_authtest.so")
}

func TestGenerateBuildTags(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()
	opts.buildTags = []string{"linux", "!integration"}
	source, err := generate(opts, nil)
	require.NoError(t, err)
	assert.Contains(t, string(source), "//go:build linux && !integration")
}

func TestModulerCommand(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "pam_module.go")
	cmd := newModulerCmd()
	cmd.SetArgs([]string{"--output", output, "--libname", "pam_cmd.so"})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "-o pam_cmd.so")
	for _, entryPoint := range entryPoints {
		assert.Contains(t, string(content), "//export "+entryPoint)
	}
}
