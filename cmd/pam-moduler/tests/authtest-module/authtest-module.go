// These go:generate directives allow to rebuild the module by just using
// `go generate` once in the module directory.

//go:generate go run github.com/thetorpedodog/gopam/cmd/pam-moduler --libname pam_authtest.so
//go:generate go generate --skip="pam_module.go"

// Package main provides a password-checking module used by the
// integration tests.
package main

import (
	"crypto/subtle"
	"fmt"
	"slices"
	"strings"

	pam "github.com/thetorpedodog/gopam"
	"github.com/thetorpedodog/gopam/cmd/pam-moduler/tests/internal/utils"
)

var pamModuleHandler pam.ModuleHandler = &authTestModule{}
var _ = pamModuleHandler

const authenticatedUserKey = "authtest/authenticated-user"

// authTestModule authenticates against a password given as a module
// argument ("correct" if none), asking for it over the conversation.
type authTestModule struct {
	utils.BaseModule
}

func argValue(args []string, key string) (string, bool) {
	for _, arg := range args {
		if value, found := strings.CutPrefix(arg, key+"="); found {
			return value, true
		}
	}
	return "", false
}

// Authenticate is a PAM handler.
func (m *authTestModule) Authenticate(mt pam.ModuleTransaction, flags pam.Flags, args []string) error {
	if slices.Contains(args, "panic") {
		panic("simulating an unexpected module failure")
	}

	user, err := mt.GetUser("login: ")
	if err != nil {
		return err
	}
	if user == "" {
		return pam.ErrUserUnknown
	}

	password, ok := argValue(args, "password")
	if !ok {
		password = "correct"
	}

	response, err := mt.PromptEchoOff("Password: ")
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(response), []byte(password)) != 1 {
		return pam.ErrAuth
	}

	return mt.SetData(authenticatedUserKey, user)
}

// AcctMgmt is a PAM handler.
func (m *authTestModule) AcctMgmt(mt pam.ModuleTransaction, flags pam.Flags, args []string) error {
	data, err := mt.GetData(authenticatedUserKey)
	if err != nil {
		// Only account management statuses may cross the module
		// boundary here.
		return fmt.Errorf("%w: %w", pam.ErrPermDenied, err)
	}
	user, err := mt.GetItem(pam.User)
	if err != nil {
		return err
	}
	if data != user {
		return fmt.Errorf("%w: account %v did not authenticate here",
			pam.ErrPermDenied, user)
	}
	return nil
}

// OpenSession is a PAM handler.
func (m *authTestModule) OpenSession(mt pam.ModuleTransaction, flags pam.Flags, args []string) error {
	user, err := mt.GetItem(pam.User)
	if err != nil {
		return err
	}
	if err := mt.SetEnv("AUTHTEST_USER", user); err != nil {
		return err
	}
	return mt.InfoMessage("session opened for " + user)
}

// SetCred is a PAM handler.
func (m *authTestModule) SetCred(mt pam.ModuleTransaction, flags pam.Flags, args []string) error {
	return pam.ErrIgnore
}
