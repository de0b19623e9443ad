package pam

/*
#include <security/pam_appl.h>
#include <security/pam_modules.h>
*/
import "C"

// Item is a PAM information type, used to address one slot of transaction
// state through pam_get_item and pam_set_item.
type Item int

// PAM item types.
const (
	// Service is the name of the requesting service.
	Service Item = C.PAM_SERVICE
	// User is the username of the entity under whose identity service
	// will be given.
	User Item = C.PAM_USER
	// Tty is the terminal name.
	Tty Item = C.PAM_TTY
	// Rhost is the requesting host name.
	Rhost Item = C.PAM_RHOST
	// Conv is the pam_conv structure supplied by the application.
	Conv Item = C.PAM_CONV
	// Authtok is the authentication token (often a password).
	Authtok Item = C.PAM_AUTHTOK
	// Oldauthtok is the old authentication token.
	Oldauthtok Item = C.PAM_OLDAUTHTOK
	// Ruser is the requesting user name.
	Ruser Item = C.PAM_RUSER
	// UserPrompt is the string used when prompting for a user's name.
	UserPrompt Item = C.PAM_USER_PROMPT
	// FailDelay is the app supplied function to override failure delays.
	FailDelay Item = C.PAM_FAIL_DELAY
	// Xdisplay is the X display name.
	Xdisplay Item = C.PAM_XDISPLAY
	// Xauthdata is the X server authentication data.
	Xauthdata Item = C.PAM_XAUTHDATA
	// AuthtokType is the type for pam_get_authtok.
	AuthtokType Item = C.PAM_AUTHTOK_TYPE
)

// stringItems declares which item types carry a NUL-terminated string.
// The remaining known types (Conv, FailDelay, Xauthdata) carry structure
// pointers and must never go through the string accessors.
var stringItems = map[Item]bool{
	Service:     true,
	User:        true,
	Tty:         true,
	Rhost:       true,
	Authtok:     true,
	Oldauthtok:  true,
	Ruser:       true,
	UserPrompt:  true,
	Xdisplay:    true,
	AuthtokType: true,
}

// structItems declares the item types represented by structure pointers.
var structItems = map[Item]bool{
	Conv:      true,
	FailDelay: true,
	Xauthdata: true,
}

// ItemFromNative converts a native item identifier into an Item. It returns
// false for identifiers this implementation does not know about.
func ItemFromNative(id int32) (Item, bool) {
	item := Item(id)
	return item, stringItems[item] || structItems[item]
}

// ToNative returns the native integer identifier of the item type.
func (i Item) ToNative() int32 {
	return int32(i)
}

// isString reports whether the item is represented as a C string.
func (i Item) isString() bool {
	return stringItems[i]
}
