// Package main implements pam-moduler, a generator for the native entry
// points a PAM service module must export.
//
// A module author writes a package main with a pamModuleHandler variable
// implementing pam.ModuleHandler and runs pam-moduler (normally through
// go:generate) to produce the cgo exports file. Building the package with
// -buildmode=c-shared then yields a module loadable by any PAM application.
package main

import (
	"fmt"
	"go/format"
	"os"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
)

type modulerOptions struct {
	libName   string
	output    string
	buildTags []string
	noMain    bool
}

func main() {
	if err := newModulerCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newModulerCmd() *cobra.Command {
	var opts modulerOptions

	cmd := &cobra.Command{
		Use:           "pam-moduler",
		Short:         "generate the PAM entry points for a Go module package",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := generate(opts, os.Args[1:])
			if err != nil {
				return err
			}
			if err := os.WriteFile(opts.output, source, 0644); err != nil {
				return fmt.Errorf("can't write %s: %w", opts.output, err)
			}
			cmd.Printf("generated %s\n", opts.output)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.libName, "libname", "pam_go.so",
		"name of the built module library")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "pam_module.go",
		"name of the generated file")
	cmd.Flags().StringSliceVar(&opts.buildTags, "build-tags", nil,
		"extra build tags for the generated file")
	cmd.Flags().BoolVar(&opts.noMain, "no-main", false,
		"don't generate the main() stub (the package provides its own)")

	return cmd
}

type templateData struct {
	Args       string
	LibName    string
	BuildTags  string
	PamPackage string
	NoMain     bool
}

// generate renders the exports file. The output goes through go/format, so
// a generation that succeeds is guaranteed to be valid Go.
func generate(opts modulerOptions, args []string) ([]byte, error) {
	data := templateData{
		LibName:    opts.libName,
		PamPackage: "github.com/thetorpedodog/gopam",
		NoMain:     opts.noMain,
	}
	if len(args) > 0 {
		data.Args = " " + strings.Join(args, " ")
	}
	if len(opts.buildTags) > 0 {
		data.BuildTags = strings.Join(opts.buildTags, " && ")
	}

	var out strings.Builder
	if err := moduleTemplate.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("can't render module template: %w", err)
	}

	source, err := format.Source([]byte(out.String()))
	if err != nil {
		return nil, fmt.Errorf("generated source does not compile: %w", err)
	}
	return source, nil
}

var moduleTemplate = template.Must(template.New("pam_module").Parse(
	`// Code generated by "pam-moduler{{.Args}}"; DO NOT EDIT.

{{- if .BuildTags}}

//go:build {{.BuildTags}}
{{- end}}

package main

/*
#cgo CFLAGS: -Wall -std=c99
#cgo LDFLAGS: -lpam -fPIC

#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"unsafe"

	pam "{{.PamPackage}}"
)

//go:generate go build "-ldflags=-s -w" -buildmode=c-shared -o {{.LibName}}

// sliceFromArgv reconstructs the module arguments. The native array and its
// strings stay owned by the calling application.
func sliceFromArgv(argc C.int, argv **C.char) []string {
	args := make([]string, 0, argc)
	for _, arg := range unsafe.Slice(argv, int64(argc)) {
		args = append(args, C.GoString(arg))
	}
	return args
}

// handlePamCall adapts one native entry point invocation into a handler
// method call and folds the result back into a PAM status integer. The
// deferred recover is the outermost barrier: no panic may ever unwind into
// the native caller.
func handlePamCall(pamh unsafe.Pointer, flags C.int, argc C.int,
	argv **C.char, operation func(pam.ModuleHandler, pam.ModuleTransaction,
		pam.Flags, []string) error) (status C.int) {
	defer func() {
		if r := recover(); r != nil {
			status = C.int(pam.ErrService)
		}
	}()

	if pamModuleHandler == nil {
		return C.int(pam.ErrIgnore)
	}

	mt := pam.NewModuleTransactionInvoker(pam.NativeHandle(pamh))
	err := mt.InvokeHandler(func(tx pam.ModuleTransaction, flags pam.Flags,
		args []string) error {
		return operation(pamModuleHandler, tx, flags, args)
	}, pam.Flags(flags), sliceFromArgv(argc, argv))
	if err == nil {
		return 0
	}
	var pamErr pam.Error
	if errors.As(err, &pamErr) {
		return C.int(pamErr)
	}
	return C.int(pam.ErrSystem)
}

//export pam_sm_authenticate
func pam_sm_authenticate(pamh unsafe.Pointer, flags C.int, argc C.int,
	argv **C.char) C.int {
	return handlePamCall(pamh, flags, argc, argv,
		pam.ModuleHandler.Authenticate)
}

//export pam_sm_setcred
func pam_sm_setcred(pamh unsafe.Pointer, flags C.int, argc C.int,
	argv **C.char) C.int {
	return handlePamCall(pamh, flags, argc, argv, pam.ModuleHandler.SetCred)
}

//export pam_sm_acct_mgmt
func pam_sm_acct_mgmt(pamh unsafe.Pointer, flags C.int, argc C.int,
	argv **C.char) C.int {
	return handlePamCall(pamh, flags, argc, argv, pam.ModuleHandler.AcctMgmt)
}

//export pam_sm_open_session
func pam_sm_open_session(pamh unsafe.Pointer, flags C.int, argc C.int,
	argv **C.char) C.int {
	return handlePamCall(pamh, flags, argc, argv,
		pam.ModuleHandler.OpenSession)
}

//export pam_sm_close_session
func pam_sm_close_session(pamh unsafe.Pointer, flags C.int, argc C.int,
	argv **C.char) C.int {
	return handlePamCall(pamh, flags, argc, argv,
		pam.ModuleHandler.CloseSession)
}

//export pam_sm_chauthtok
func pam_sm_chauthtok(pamh unsafe.Pointer, flags C.int, argc C.int,
	argv **C.char) C.int {
	return handlePamCall(pamh, flags, argc, argv,
		pam.ModuleHandler.ChangeAuthTok)
}
{{- if not .NoMain}}

func main() {}
{{- end}}
`))
