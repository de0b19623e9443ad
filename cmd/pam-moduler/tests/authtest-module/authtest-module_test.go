package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pam "github.com/thetorpedodog/gopam"
	"github.com/thetorpedodog/gopam/cmd/pam-moduler/tests/internal/utils"
)

func buildModule(t *testing.T) (*utils.TestSetup, string) {
	t.Helper()
	if !pam.CheckPamHasStartConfdir() {
		t.Skip("this requires PAM with confdir support")
	}
	ts := utils.NewTestSetup(t)
	return ts, ts.GenerateModule(".", "pam_authtest.so")
}

func answeringPassword(password string) pam.ConversationFunc {
	return func(s pam.Style, msg string) (string, error) {
		switch s {
		case pam.PromptEchoOff:
			return password, nil
		case pam.TextInfo, pam.ErrorMsg:
			return "", nil
		}
		return "", fmt.Errorf("unexpected style %v", s)
	}
}

func TestAuthenticate(t *testing.T) {
	ts, modulePath := buildModule(t)

	tests := map[string]struct {
		moduleArgs    []string
		answer        string
		expectedError error
	}{
		"correct-default-password": {
			answer: "correct",
		},
		"wrong-default-password": {
			answer:        "wrong",
			expectedError: pam.ErrAuth,
		},
		"correct-configured-password": {
			moduleArgs: []string{"password=s3cret!"},
			answer:     "s3cret!",
		},
		"wrong-configured-password": {
			moduleArgs:    []string{"password=s3cret!"},
			answer:        "correct",
			expectedError: pam.ErrAuth,
		},
		"module-panic-is-a-service-error": {
			moduleArgs:    []string{"panic"},
			answer:        "correct",
			expectedError: pam.ErrService,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			service := ts.CreateService("authtest-"+name, []utils.ServiceLine{
				{Action: utils.Auth, Control: utils.Requisite,
					Module: modulePath, Args: tc.moduleArgs},
			})

			tx, err := pam.StartConfDir(service, "test-user",
				answeringPassword(tc.answer), ts.WorkDir())
			require.NoError(t, err)
			defer func() { require.NoError(t, tx.End()) }()

			err = tx.Authenticate(0)
			if tc.expectedError == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectedError)
		})
	}
}

func TestAccountAfterAuthenticate(t *testing.T) {
	ts, modulePath := buildModule(t)

	service := ts.CreateService("authtest-acct", []utils.ServiceLine{
		{Action: utils.Auth, Control: utils.Requisite, Module: modulePath},
		{Action: utils.Account, Control: utils.Requisite, Module: modulePath},
	})

	tx, err := pam.StartConfDir(service, "test-user",
		answeringPassword("correct"), ts.WorkDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, tx.End()) }()

	// The auth phase stores the user in the module data, the account
	// phase verifies it survived within the same transaction.
	require.NoError(t, tx.Authenticate(0))
	require.NoError(t, tx.AcctMgmt(0))
}

func TestAccountWithoutAuthenticate(t *testing.T) {
	ts, modulePath := buildModule(t)

	service := ts.CreateService("authtest-acct-only", []utils.ServiceLine{
		{Action: utils.Account, Control: utils.Requisite, Module: modulePath},
	})

	tx, err := pam.StartConfDir(service, "test-user",
		answeringPassword("correct"), ts.WorkDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, tx.End()) }()

	// No module data was ever stored in this transaction.
	err = tx.AcctMgmt(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, pam.ErrPermDenied)
}

func TestSessionEnvironment(t *testing.T) {
	ts, modulePath := buildModule(t)

	service := ts.CreateService("authtest-session", []utils.ServiceLine{
		{Action: utils.Auth, Control: utils.Requisite, Module: modulePath},
		{Action: utils.Session, Control: utils.Requisite, Module: modulePath},
	})

	var infoMessages []string
	conv := func(s pam.Style, msg string) (string, error) {
		switch s {
		case pam.PromptEchoOff:
			return "correct", nil
		case pam.TextInfo:
			infoMessages = append(infoMessages, msg)
			return "", nil
		}
		return "", errors.New("unexpected conversation")
	}

	tx, err := pam.StartConfDir(service, "test-user",
		pam.ConversationFunc(conv), ts.WorkDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, tx.End()) }()

	require.NoError(t, tx.Authenticate(0))
	require.NoError(t, tx.OpenSession(0))
	defer func() { require.NoError(t, tx.CloseSession(0)) }()

	// The variable the module set is visible on the application side.
	assert.Equal(t, "test-user", tx.GetEnv("AUTHTEST_USER"))
	env, err := tx.GetEnvList()
	require.NoError(t, err)
	assert.Equal(t, "test-user", env["AUTHTEST_USER"])

	assert.Equal(t, []string{"session opened for test-user"}, infoMessages)
}

func TestHandlerDirectly(t *testing.T) {
	t.Parallel()

	// Operations that never touch the transaction can be exercised
	// without a loaded module stack.
	module := authTestModule{}
	err := module.SetCred(nil, 0, nil)
	assert.ErrorIs(t, err, pam.ErrIgnore)
	assert.NoError(t, module.CloseSession(nil, 0, nil))
	assert.NoError(t, module.ChangeAuthTok(nil, 0, nil))
}
