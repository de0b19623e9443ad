package pam

/*
#include "transaction.h"
#include <string.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"runtime/cgo"
	"unsafe"
)

// ModuleTransaction is the module-side view of a PAM transaction, the
// interface service modules use to talk to the application that invoked
// them. It borrows the native handle for the duration of a single entry
// point call and must not be retained past it.
type ModuleTransaction interface {
	SetItem(Item, string) error
	GetItem(Item) (string, error)
	PutEnv(nameVal string) error
	SetEnv(key, value string) error
	GetEnv(name string) string
	GetEnvList() (map[string]string, error)
	GetUser(prompt string) (string, error)
	GetAuthTok(prompt string) (string, error)
	GetOldAuthTok(prompt string) (string, error)
	SetData(key string, data any) error
	GetData(key string) (any, error)
	StartStringConv(style Style, prompt string) (StringConvResponse, error)
	InfoMessage(text string) error
	ErrorMessage(text string) error
	PromptEchoOn(prompt string) (string, error)
	PromptEchoOff(prompt string) (string, error)
}

// ModuleHandlerFunc is a function type used by the ModuleHandler.
type ModuleHandlerFunc func(ModuleTransaction, Flags, []string) error

// ModuleHandler is an interface for objects that can be used to create
// PAM modules from Go, one method per PAM operation. The password change
// operation is invoked twice, first with PrelimCheck and then, unless the
// module returned ErrTryAgain, with UpdateAuthtok in the flags.
type ModuleHandler interface {
	AcctMgmt(ModuleTransaction, Flags, []string) error
	Authenticate(ModuleTransaction, Flags, []string) error
	ChangeAuthTok(ModuleTransaction, Flags, []string) error
	CloseSession(ModuleTransaction, Flags, []string) error
	OpenSession(ModuleTransaction, Flags, []string) error
	SetCred(ModuleTransaction, Flags, []string) error
}

// ModuleTransactionInvoker is the interface used by generated entry points
// to redirect requests coming from C handlers to a ModuleHandler.
type ModuleTransactionInvoker interface {
	ModuleTransaction
	InvokeHandler(handler ModuleHandlerFunc, flags Flags, args []string) error
}

// moduleTransaction is the module-side handle for a PAM transaction.
type moduleTransaction struct {
	transactionBase
}

// NewModuleTransactionInvoker allows initializing a transaction invoker from
// the module side.
func NewModuleTransactionInvoker(handle NativeHandle) ModuleTransactionInvoker {
	return &moduleTransaction{transactionBase{handle: handle}}
}

// InvokeHandler runs one module operation and folds its outcome into a PAM
// status. A module error that is not (or does not wrap) an Error converts
// to ErrSystem; a panic in module code converts to ErrService. Control
// always comes back here normally, nothing may unwind into the C caller.
func (m *moduleTransaction) InvokeHandler(handler ModuleHandlerFunc,
	flags Flags, args []string) error {
	invoker := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("%w: module panicked: %v",
					ErrService, p)
			}
		}()
		if handler == nil {
			return ErrIgnore
		}
		err = handler(m, flags, args)
		if err != nil {
			service, _ := m.GetItem(Service)

			var pamErr Error
			if !errors.As(err, &pamErr) {
				err = fmt.Errorf("%w: %v", ErrSystem, err)
				pamErr = ErrSystem
			}

			if pamErr == ErrIgnore || service == "" {
				return err
			}

			return fmt.Errorf("%s failed: %w", service, err)
		}
		return nil
	}
	err := invoker()
	if errors.Is(err, Error(success)) {
		err = nil
	}
	var status int32
	if err != nil {
		status = int32(ErrSystem)

		var pamErr Error
		if errors.As(err, &pamErr) {
			status = int32(pamErr)
		}
	}
	m.lastStatus.Store(status)
	return err
}

// moduleTransactionIface is the seam between the module transaction and the
// native calls it performs, replaceable by a mock for testing.
type moduleTransactionIface interface {
	getUser(outUser **C.char, prompt *C.char) C.int
	getAuthTok(item C.int, outToken **C.char, prompt *C.char) C.int
	setData(key *C.char, handle C.uintptr_t) C.int
	getData(key *C.char, outHandle *C.uintptr_t) C.int
	startConv(style C.int, prompt *C.char, outResp **C.char) C.int
	freeConvResponse(resp *C.char)
}

func (m *moduleTransaction) getUser(outUser **C.char, prompt *C.char) C.int {
	return C.pam_get_user(m.handle, outUser, prompt)
}

// getUserImpl is the implementation for GetUser, kept private so that it
// can be exercised against a mocked native seam.
func (m *moduleTransaction) getUserImpl(iface moduleTransactionIface,
	prompt string) (string, error) {
	var user *C.char
	var cPrompt = C.CString(prompt)
	defer C.free(unsafe.Pointer(cPrompt))
	err := m.handlePamStatus(iface.getUser(&user, cPrompt))
	if err != nil {
		return "", err
	}
	return C.GoString(user), nil
}

// GetUser is similar to GetItem(User), but it starts a conversation if
// no user is currently set in PAM.
func (m *moduleTransaction) GetUser(prompt string) (string, error) {
	return m.getUserImpl(m, prompt)
}

func (m *moduleTransaction) getAuthTok(item C.int, outToken **C.char,
	prompt *C.char) C.int {
	return C.pam_get_authtok(m.handle, item, outToken, prompt)
}

func (m *moduleTransaction) getAuthTokImpl(iface moduleTransactionIface,
	item Item, prompt string) (string, error) {
	var token *C.char
	var cPrompt = C.CString(prompt)
	defer C.free(unsafe.Pointer(cPrompt))
	err := m.handlePamStatus(iface.getAuthTok(C.int(item), &token, cPrompt))
	if err != nil {
		return "", err
	}
	// The token buffer stays owned by libpam, only a copy leaves here.
	return C.GoString(token), nil
}

// GetAuthTok returns the cached authentication token, starting a hidden
// conversation with the given prompt if no token is set yet.
func (m *moduleTransaction) GetAuthTok(prompt string) (string, error) {
	return m.getAuthTokImpl(m, Authtok, prompt)
}

// GetOldAuthTok is like GetAuthTok for the previous token during a
// password change.
func (m *moduleTransaction) GetOldAuthTok(prompt string) (string, error) {
	return m.getAuthTokImpl(m, Oldauthtok, prompt)
}

func (m *moduleTransaction) setData(key *C.char, handle C.uintptr_t) C.int {
	return C.set_data(m.handle, key, handle)
}

// setDataImpl is the implementation for SetData, mockable for testing.
func (m *moduleTransaction) setDataImpl(iface moduleTransactionIface,
	key string, data any) error {
	var cKey = C.CString(key)
	defer C.free(unsafe.Pointer(cKey))
	var handle cgo.Handle
	if data != nil {
		handle = cgo.NewHandle(data)
	}
	return m.handlePamStatus(iface.setData(cKey, C.uintptr_t(handle)))
}

// SetData stores a value under key in the transaction's module data. The
// value stays available to later operations of the same transaction and is
// released when replaced or when the transaction ends. Storing nil clears
// the key.
func (m *moduleTransaction) SetData(key string, data any) error {
	return m.setDataImpl(m, key, data)
}

// _go_pam_data_cleanup is invoked by libpam whenever a module data entry is
// replaced or the transaction is being shut down. libpam guarantees a
// single invocation per stored entry, which makes this the exactly-once
// release point of the underlying value.
//
//export _go_pam_data_cleanup
func _go_pam_data_cleanup(h NativeHandle, handle C.uintptr_t, status C.int) {
	if handle == 0 {
		return
	}
	cgo.Handle(handle).Delete()
}

func (m *moduleTransaction) getData(key *C.char, outHandle *C.uintptr_t) C.int {
	return C.get_data(m.handle, key, outHandle)
}

// getDataImpl is the implementation for GetData, mockable for testing.
func (m *moduleTransaction) getDataImpl(iface moduleTransactionIface,
	key string) (any, error) {
	var cKey = C.CString(key)
	defer C.free(unsafe.Pointer(cKey))
	var handle C.uintptr_t
	if err := m.handlePamStatus(iface.getData(cKey, &handle)); err != nil {
		return nil, err
	}
	if goHandle := cgo.Handle(handle); goHandle != cgo.Handle(0) {
		return goHandle.Value(), nil
	}
	return nil, m.handlePamStatus(C.int(ErrNoModuleData))
}

// GetData returns the value stored under key with SetData during this
// transaction. A key with no value fails with ErrNoModuleData.
func (m *moduleTransaction) GetData(key string) (any, error) {
	return m.getDataImpl(m, key)
}

// StringConvResponse is the result of a string conversation exchange.
type StringConvResponse struct {
	style    Style
	response string
}

// Style returns the conversation style of the response.
func (s StringConvResponse) Style() Style {
	return s.style
}

// Response returns the string the conversation handler answered, empty for
// the informational styles.
func (s StringConvResponse) Response() string {
	return s.response
}

func (m *moduleTransaction) startConv(style C.int, prompt *C.char,
	outResp **C.char) C.int {
	return C.run_pam_conv(m.handle, style, prompt, outResp)
}

func (m *moduleTransaction) freeConvResponse(resp *C.char) {
	C.free(unsafe.Pointer(resp))
}

// startStringConvImpl is the single path through which every conversation
// exchange goes. The response buffer is allocated by the application with
// the C allocator; once the native call succeeds this function is its only
// owner and frees it exactly once, after wiping it if it may hold a secret.
// On a failed native call nothing the application may have written is
// touched.
func (m *moduleTransaction) startStringConvImpl(iface moduleTransactionIface,
	style Style, prompt string) (StringConvResponse, error) {
	var cPrompt = C.CString(prompt)
	defer C.free(unsafe.Pointer(cPrompt))
	var cResp *C.char
	err := m.handlePamStatus(iface.startConv(C.int(style), cPrompt, &cResp))
	if err != nil {
		return StringConvResponse{}, err
	}
	resp := StringConvResponse{style: style}
	if cResp != nil {
		resp.response = C.GoString(cResp)
		if style == PromptEchoOff {
			C.memset(unsafe.Pointer(cResp), 0, C.strlen(cResp))
		}
		iface.freeConvResponse(cResp)
	}
	return resp, nil
}

// StartStringConv starts a string conversation using the given style and
// prompt, returning the response of the conversation handler.
func (m *moduleTransaction) StartStringConv(style Style, prompt string) (
	StringConvResponse, error) {
	return m.startStringConvImpl(m, style, prompt)
}

// InfoMessage shows an informational message to the user; no response is
// expected.
func (m *moduleTransaction) InfoMessage(text string) error {
	_, err := m.StartStringConv(TextInfo, text)
	return err
}

// ErrorMessage shows an error message to the user; no response is expected.
func (m *moduleTransaction) ErrorMessage(text string) error {
	_, err := m.StartStringConv(ErrorMsg, text)
	return err
}

// PromptEchoOn asks the user for input that may be echoed back, such as a
// username.
func (m *moduleTransaction) PromptEchoOn(prompt string) (string, error) {
	resp, err := m.StartStringConv(PromptEchoOn, prompt)
	if err != nil {
		return "", err
	}
	return resp.Response(), nil
}

// PromptEchoOff asks the user for input that must not be echoed, such as a
// password. The native buffer carrying the answer is wiped before being
// released; the returned Go string is the module's to handle with care, Go
// offers no zero-on-free allocator.
func (m *moduleTransaction) PromptEchoOff(prompt string) (string, error) {
	resp, err := m.StartStringConv(PromptEchoOff, prompt)
	if err != nil {
		return "", err
	}
	return resp.Response(), nil
}
