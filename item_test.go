package pam

import (
	"fmt"
	"testing"
)

func TestItemNativeRoundTrip(t *testing.T) {
	t.Parallel()

	known := []Item{
		Service, User, Tty, Rhost, Conv, Authtok, Oldauthtok, Ruser,
		UserPrompt, FailDelay, Xdisplay, Xauthdata, AuthtokType,
	}

	for _, item := range known {
		item := item
		t.Run(fmt.Sprintf("item-%d", int(item)), func(t *testing.T) {
			t.Parallel()
			back, ok := ItemFromNative(item.ToNative())
			if !ok {
				t.Fatalf("item %d should be recognized", int(item))
			}
			if back != item {
				t.Fatalf("round trip mismatch: %v vs %v", back, item)
			}
		})
	}
}

func TestItemFromNativeUnknown(t *testing.T) {
	t.Parallel()

	for _, id := range []int32{0, -1, 255, 9999} {
		if item, ok := ItemFromNative(id); ok {
			t.Fatalf("id %d should not map to an item, got %v", id, item)
		}
	}
}

func TestItemRepresentations(t *testing.T) {
	t.Parallel()

	// Every known item has exactly one representation.
	for item := range stringItems {
		if structItems[item] {
			t.Fatalf("item %d declared both string and structure", int(item))
		}
	}

	for _, item := range []Item{Conv, FailDelay, Xauthdata} {
		if item.isString() {
			t.Fatalf("item %d should be structure-typed", int(item))
		}
	}
	for _, item := range []Item{Service, User, Authtok, UserPrompt} {
		if !item.isString() {
			t.Fatalf("item %d should be string-typed", int(item))
		}
	}
}
