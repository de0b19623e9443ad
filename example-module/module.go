// These go:generate directives allow to rebuild the module by just using
// `go generate` once in the module directory.

//go:generate go run github.com/thetorpedodog/gopam/cmd/pam-moduler
//go:generate go generate --skip="pam_module.go"

// Package main is an example PAM module checking the conversation password
// against a bcrypt hash from the service file.
//
// The module arguments are:
//
//	hash=<bcrypt hash>  the credential to check against (required)
//	user=<name>         restrict the module to a single account
//
// A service line for it looks like:
//
//	auth requisite pam_go.so hash=$2a$10$Ff3...
package main

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	pam "github.com/thetorpedodog/gopam"
)

var pamModuleHandler pam.ModuleHandler = &exampleModule{}
var _ = pamModuleHandler

type exampleModule struct{}

type moduleArgs struct {
	hash string
	user string
}

func parseArgs(args []string) (moduleArgs, error) {
	var parsed moduleArgs
	for _, arg := range args {
		key, value, _ := strings.Cut(arg, "=")
		switch key {
		case "hash":
			parsed.hash = value
		case "user":
			parsed.user = value
		default:
			return parsed, fmt.Errorf("%w: unknown argument %q",
				pam.ErrService, key)
		}
	}
	if parsed.hash == "" {
		return parsed, fmt.Errorf("%w: the hash argument is required",
			pam.ErrService)
	}
	return parsed, nil
}

// Authenticate asks for the password over the conversation and compares it
// with the configured bcrypt hash.
func (m *exampleModule) Authenticate(mt pam.ModuleTransaction, flags pam.Flags, args []string) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return err
	}

	user, err := mt.GetUser("login: ")
	if err != nil {
		return err
	}
	if parsed.user != "" && parsed.user != user {
		return pam.ErrUserUnknown
	}

	password, err := mt.GetAuthTok("Password: ")
	if err != nil {
		return err
	}
	if flags&pam.DisallowNullAuthtok != 0 && password == "" {
		return pam.ErrAuth
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(parsed.hash), []byte(password)); err != nil {
		return fmt.Errorf("%w: %w", pam.ErrAuth, err)
	}
	return nil
}

// AcctMgmt always accepts the account, authentication is the only concern
// of this module.
func (m *exampleModule) AcctMgmt(pam.ModuleTransaction, pam.Flags, []string) error {
	return nil
}

// SetCred has no credentials to establish.
func (m *exampleModule) SetCred(pam.ModuleTransaction, pam.Flags, []string) error {
	return pam.ErrIgnore
}

// OpenSession has no session state to prepare.
func (m *exampleModule) OpenSession(pam.ModuleTransaction, pam.Flags, []string) error {
	return pam.ErrIgnore
}

// CloseSession has no session state to tear down.
func (m *exampleModule) CloseSession(pam.ModuleTransaction, pam.Flags, []string) error {
	return pam.ErrIgnore
}

// ChangeAuthTok cannot rewrite the service file, the hash is fixed.
func (m *exampleModule) ChangeAuthTok(pam.ModuleTransaction, pam.Flags, []string) error {
	return fmt.Errorf("%w: the configured hash cannot be changed",
		pam.ErrAuthtok)
}
