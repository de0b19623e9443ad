package pam

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorNativeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, status := range knownErrors {
		status := status
		t.Run(fmt.Sprintf("code-%d", int(status)), func(t *testing.T) {
			t.Parallel()
			native := status.ToNative()
			if back := ErrorFromNative(native); back != status {
				t.Fatalf("round trip mismatch: %v vs %v", back, status)
			}
			if !status.Known() {
				t.Fatalf("%v should be a known code", status)
			}
		})
	}

	// The whole native range round-trips, recognized or not.
	for _, native := range []int32{0, 5, 87, -1, 12345} {
		if back := ErrorFromNative(native).ToNative(); back != native {
			t.Fatalf("native round trip mismatch: %d vs %d", back, native)
		}
	}
}

func TestErrorUnknownCode(t *testing.T) {
	t.Parallel()

	unknown := ErrorFromNative(87654)
	if unknown.Known() {
		t.Fatalf("code %d should not be known", int(unknown))
	}
	if msg := unknown.Error(); msg == "" {
		t.Fatal("even unknown codes should render a message")
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	for _, status := range knownErrors {
		if msg := status.Error(); msg == "" {
			t.Fatalf("no error message for code %d", int(status))
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("login failed: %w", ErrAuth)
	if !errors.Is(wrapped, ErrAuth) {
		t.Fatalf("%v should match ErrAuth", wrapped)
	}
	if errors.Is(wrapped, ErrCred) {
		t.Fatalf("%v should not match ErrCred", wrapped)
	}

	var pamErr Error
	if !errors.As(wrapped, &pamErr) || pamErr != ErrAuth {
		t.Fatalf("unexpected unwrapped error: %v", pamErr)
	}
}
