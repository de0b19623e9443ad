// Package pam provides a wrapper for the PAM application and module APIs.
package pam

/*
#cgo CFLAGS: -Wall -std=c99 -D_GNU_SOURCE
#cgo LDFLAGS: -lpam -ldl
#include "transaction.h"
*/
import "C"

import (
	"strings"
	"sync/atomic"
	"unsafe"
)

// NativeHandle is the native PAM handle of a transaction. It is owned by
// whoever started the transaction (libpam on the module side), wrappers in
// this package only ever borrow it.
type NativeHandle = *C.pam_handle_t

// transactionBase implements the operations common to the application and
// the module side of a transaction.
type transactionBase struct {
	handle     NativeHandle
	lastStatus atomic.Int32
}

// handlePamStatus records the last native status and converts it into a
// Go error, nil on success. It is the only place where native status values
// enter the package.
func (t *transactionBase) handlePamStatus(cStatus C.int) error {
	t.lastStatus.Store(int32(cStatus))
	if status := Error(cStatus); status != success {
		return status
	}
	return nil
}

// LastStatus returns the last native status the transaction recorded,
// mirroring what pam_end would be given.
func (t *transactionBase) LastStatus() Error {
	return Error(t.lastStatus.Load())
}

// GetItem retrieves a string item from the transaction. Structure-typed
// items (Conv, FailDelay, Xauthdata) are rejected with ErrBadItem. An item
// that is simply unset yields an empty string and no error.
//
// The returned string is a copy, the native buffer stays owned by libpam.
func (t *transactionBase) GetItem(i Item) (string, error) {
	if !i.isString() {
		return "", t.handlePamStatus(C.int(ErrBadItem))
	}
	var s unsafe.Pointer
	if err := t.handlePamStatus(C.pam_get_item(t.handle, C.int(i), &s)); err != nil {
		return "", err
	}
	if s == nil {
		return "", nil
	}
	return C.GoString((*C.char)(s)), nil
}

// SetItem sets a string item in the transaction; libpam keeps its own copy
// of the value. Structure-typed items are rejected with ErrBadItem.
func (t *transactionBase) SetItem(i Item, item string) error {
	if !i.isString() {
		return t.handlePamStatus(C.int(ErrBadItem))
	}
	cs := unsafe.Pointer(C.CString(item))
	defer C.free(cs)
	return t.handlePamStatus(C.pam_set_item(t.handle, C.int(i), cs))
}

// PutEnv adds or changes the value of PAM environment variables, given in
// "NAME=value" ("NAME=" to set an empty value, "NAME" to delete) form.
func (t *transactionBase) PutEnv(nameVal string) error {
	if strings.ContainsRune(nameVal, 0) {
		return t.handlePamStatus(C.int(ErrBadItem))
	}
	cs := C.CString(nameVal)
	defer C.free(unsafe.Pointer(cs))
	return t.handlePamStatus(C.pam_putenv(t.handle, cs))
}

// SetEnv sets a PAM environment variable from a key and value pair. The key
// must not contain '=' or an embedded NUL byte.
func (t *transactionBase) SetEnv(key, value string) error {
	if strings.ContainsAny(key, "=\x00") || key == "" {
		return t.handlePamStatus(C.int(ErrBadItem))
	}
	return t.PutEnv(key + "=" + value)
}

// GetEnv is used to retrieve a PAM environment variable. An unset variable
// yields an empty string.
func (t *transactionBase) GetEnv(name string) string {
	if strings.ContainsAny(name, "=\x00") || name == "" {
		return ""
	}
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	value := C.pam_getenv(t.handle, cs)
	if value == nil {
		return ""
	}
	return C.GoString(value)
}

// GetEnvList returns a copy of the PAM environment as a map. The native
// list returned by pam_getenvlist is owned by the caller, so every entry
// and the list itself are released here.
func (t *transactionBase) GetEnvList() (map[string]string, error) {
	env := make(map[string]string)
	p := C.pam_getenvlist(t.handle)
	if p == nil {
		return nil, t.handlePamStatus(C.int(ErrBuf))
	}
	t.lastStatus.Store(success)
	for q := p; *q != nil; q = nextCString(q) {
		name, value, found := strings.Cut(C.GoString(*q), "=")
		if found {
			env[name] = value
		}
		C.free(unsafe.Pointer(*q))
	}
	C.free(unsafe.Pointer(p))
	return env, nil
}

// nextCString advances a pointer into a NULL-terminated C string array.
func nextCString(q **C.char) **C.char {
	return (**C.char)(unsafe.Add(unsafe.Pointer(q), unsafe.Sizeof(*q)))
}

// CheckPamHasStartConfdir returns true if the PAM stack provides
// pam_start_confdir, needed to load service files from custom directories.
func CheckPamHasStartConfdir() bool {
	return C.check_pam_start_confdir() != 0
}
