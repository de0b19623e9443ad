package pam

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func Test_Transaction_StartEnd(t *testing.T) {
	tx, err := StartFunc("gopam-test-no-such-service", "user",
		func(s Style, msg string) (string, error) {
			return "", errors.New("unexpected conversation")
		})
	if err != nil {
		t.Fatalf("start #error: %v", err)
	}

	// The service has no configuration, so every operation must fail
	// with a PAM status, not succeed silently.
	if err = tx.Authenticate(0); err == nil {
		t.Fatal("authenticate was expected to fail")
	}
	var pamErr Error
	if !errors.As(err, &pamErr) {
		t.Fatalf("a PAM status was expected, but got %v", err)
	}

	if err = tx.End(); err != nil {
		t.Fatalf("end #error: %v", err)
	}
	// Ending twice is harmless.
	if err = tx.End(); err != nil {
		t.Fatalf("second end #error: %v", err)
	}
}

func Test_Transaction_Items(t *testing.T) {
	tx, err := Start("gopam-test-items", "test-user", nil)
	if err != nil {
		t.Fatalf("start #error: %v", err)
	}
	defer func() {
		if err := tx.End(); err != nil {
			t.Fatalf("end #error: %v", err)
		}
	}()

	for item, value := range map[Item]string{
		User:       "other-user",
		Tty:        "tty1",
		Rhost:      "host.example.com",
		Ruser:      "remote-user",
		UserPrompt: "login: ",
	} {
		if err := tx.SetItem(item, value); err != nil {
			t.Fatalf("set item %d #error: %v", int(item), err)
		}
		got, err := tx.GetItem(item)
		if err != nil {
			t.Fatalf("get item %d #error: %v", int(item), err)
		}
		if got != value {
			t.Fatalf("item %d mismatch: %v vs %v", int(item), got, value)
		}
	}

	service, err := tx.GetItem(Service)
	if err != nil {
		t.Fatalf("get service #error: %v", err)
	}
	if service != "gopam-test-items" {
		t.Fatalf("unexpected service: %v", service)
	}

	// Structure-typed items don't go through the string accessors.
	if _, err := tx.GetItem(Conv); !errors.Is(err, ErrBadItem) {
		t.Fatalf("ErrBadItem was expected, but got %v", err)
	}
	if err := tx.SetItem(FailDelay, "nope"); !errors.Is(err, ErrBadItem) {
		t.Fatalf("ErrBadItem was expected, but got %v", err)
	}
}

func Test_Transaction_Env(t *testing.T) {
	tx, err := Start("gopam-test-env", "test-user", nil)
	if err != nil {
		t.Fatalf("start #error: %v", err)
	}
	defer func() {
		if err := tx.End(); err != nil {
			t.Fatalf("end #error: %v", err)
		}
	}()

	if v := tx.GetEnv("MISSING_VAR"); v != "" {
		t.Fatalf("unexpected value: %v", v)
	}

	if err := tx.SetEnv("GOPAM_VAR", "some value"); err != nil {
		t.Fatalf("setenv #error: %v", err)
	}
	if v := tx.GetEnv("GOPAM_VAR"); v != "some value" {
		t.Fatalf("unexpected value: %v", v)
	}

	if err := tx.PutEnv("GOPAM_OTHER=1"); err != nil {
		t.Fatalf("putenv #error: %v", err)
	}

	env, err := tx.GetEnvList()
	if err != nil {
		t.Fatalf("getenvlist #error: %v", err)
	}
	if env["GOPAM_VAR"] != "some value" || env["GOPAM_OTHER"] != "1" {
		t.Fatalf("unexpected environment: %v", env)
	}

	// Deletion via the NAME form.
	if err := tx.PutEnv("GOPAM_OTHER"); err != nil {
		t.Fatalf("putenv delete #error: %v", err)
	}
	if v := tx.GetEnv("GOPAM_OTHER"); v != "" {
		t.Fatalf("variable was expected to be gone, got %v", v)
	}

	if err := tx.SetEnv("BAD=KEY", "value"); !errors.Is(err, ErrBadItem) {
		t.Fatalf("ErrBadItem was expected, but got %v", err)
	}
}

func Test_Transaction_ConfDir(t *testing.T) {
	if !CheckPamHasStartConfdir() {
		t.Skip("this requires PAM with confdir support")
	}

	confDir := t.TempDir()
	service := "gopam-permit"
	contents := "auth\trequired\tpam_permit.so\n"
	if err := os.WriteFile(filepath.Join(confDir, service),
		[]byte(contents), 0600); err != nil {
		t.Fatalf("can't write service file: %v", err)
	}

	tx, err := StartConfDir(service, "test-user", nil, confDir)
	if err != nil {
		t.Fatalf("start #error: %v", err)
	}
	defer func() {
		if err := tx.End(); err != nil {
			t.Fatalf("end #error: %v", err)
		}
	}()

	if err := tx.Authenticate(0); err != nil {
		t.Fatalf("authenticate #error: %v", err)
	}
}
