//go:build !go_pam_module

package pam

/*
#include <stdint.h>
#include <stdlib.h>
#include <security/pam_modules.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"testing"
	"unsafe"
)

type mockModuleTransactionExpectations struct {
	UserPrompt string
	DataKey    string
}

type mockModuleTransactionReturnedData struct {
	User            string
	AuthTok         string
	InteractiveUser bool
	Status          Error
}

// mockModuleTransaction implements the native seam of moduleTransaction in
// pure Go, with enough accounting to verify the ownership rules: every
// conversation response it allocates must be freed by the wrapper exactly
// once, and every module data entry must be cleaned up exactly once.
type mockModuleTransaction struct {
	moduleTransaction
	T                   *testing.T
	Expectations        mockModuleTransactionExpectations
	RetData             mockModuleTransactionReturnedData
	ConversationHandler ConversationHandler

	// RespondOnError makes startConv write a response even when failing,
	// simulating an application that partially fills the output on error.
	RespondOnError bool

	moduleData    map[string]uintptr
	dataCleanups  int
	allocatedData []unsafe.Pointer
	convResponses map[unsafe.Pointer]int
	orphaned      []unsafe.Pointer
}

func newMockModuleTransaction(m *mockModuleTransaction) *mockModuleTransaction {
	m.moduleData = make(map[string]uintptr)
	m.convResponses = make(map[unsafe.Pointer]int)
	m.T.Cleanup(func() { m.finalize() })
	return m
}

// finalize plays the role of pam_end: it releases the mock-owned buffers
// and invokes the cleanup of every remaining module data entry.
func (m *mockModuleTransaction) finalize() {
	for _, ptr := range m.allocatedData {
		C.free(ptr)
	}
	m.allocatedData = nil
	for key, handle := range m.moduleData {
		_go_pam_data_cleanup(nil, C.uintptr_t(handle), C.PAM_DATA_SILENT)
		m.dataCleanups++
		delete(m.moduleData, key)
	}
	for ptr, frees := range m.convResponses {
		if frees == 0 && !m.isOrphaned(ptr) {
			m.T.Errorf("conversation response %p was never freed", ptr)
			C.free(ptr)
			m.convResponses[ptr] = 1
		}
	}
}

func (m *mockModuleTransaction) isOrphaned(ptr unsafe.Pointer) bool {
	for _, o := range m.orphaned {
		if o == ptr {
			return true
		}
	}
	return false
}

// keepCString retains a C string that stays owned by the mock, the way
// libpam owns the buffers behind pam_get_user and pam_get_authtok.
func (m *mockModuleTransaction) keepCString(value string) *C.char {
	cValue := C.CString(value)
	m.allocatedData = append(m.allocatedData, unsafe.Pointer(cValue))
	return cValue
}

func (m *mockModuleTransaction) errorStatus(err error) C.int {
	var pamErr Error
	if errors.As(err, &pamErr) {
		return C.int(pamErr)
	}
	return C.int(ErrAbort)
}

func (m *mockModuleTransaction) getUser(outUser **C.char, prompt *C.char) C.int {
	goPrompt := C.GoString(prompt)
	if m.Expectations.UserPrompt != "" && goPrompt != m.Expectations.UserPrompt {
		m.T.Fatalf("unexpected prompt: %s vs %s", goPrompt,
			m.Expectations.UserPrompt)
		return C.int(ErrAbort)
	}

	user := m.RetData.User
	if m.RetData.InteractiveUser || (user == "" && m.ConversationHandler != nil) {
		if m.ConversationHandler == nil {
			m.T.Fatalf("no conversation handler provided")
		}
		u, err := m.ConversationHandler.RespondPAM(PromptEchoOn, goPrompt)
		if err != nil {
			return m.errorStatus(err)
		}
		user = u
	}

	*outUser = m.keepCString(user)
	return C.int(m.RetData.Status)
}

func (m *mockModuleTransaction) getAuthTok(item C.int, outToken **C.char,
	prompt *C.char) C.int {
	goPrompt := C.GoString(prompt)
	token := m.RetData.AuthTok
	if token == "" && m.ConversationHandler != nil {
		t, err := m.ConversationHandler.RespondPAM(PromptEchoOff, goPrompt)
		if err != nil {
			return m.errorStatus(err)
		}
		token = t
	}

	*outToken = m.keepCString(token)
	return C.int(m.RetData.Status)
}

func (m *mockModuleTransaction) setData(key *C.char, handle C.uintptr_t) C.int {
	goKey := C.GoString(key)
	if m.Expectations.DataKey != "" && goKey != m.Expectations.DataKey {
		m.T.Fatalf("data key mismatch: %#v vs %#v", goKey,
			m.Expectations.DataKey)
	}
	if oldHandle, ok := m.moduleData[goKey]; ok {
		_go_pam_data_cleanup(nil, C.uintptr_t(oldHandle), C.PAM_DATA_REPLACE)
		m.dataCleanups++
		delete(m.moduleData, goKey)
	}
	if handle != 0 {
		m.moduleData[goKey] = uintptr(handle)
	}
	return C.int(m.RetData.Status)
}

func (m *mockModuleTransaction) getData(key *C.char, outHandle *C.uintptr_t) C.int {
	goKey := C.GoString(key)
	if m.Expectations.DataKey != "" && goKey != m.Expectations.DataKey {
		m.T.Fatalf("data key mismatch: %#v vs %#v", goKey,
			m.Expectations.DataKey)
	}
	if handle, ok := m.moduleData[goKey]; ok {
		*outHandle = C.uintptr_t(handle)
	} else {
		*outHandle = 0
	}
	return C.int(m.RetData.Status)
}

func (m *mockModuleTransaction) startConv(style C.int, prompt *C.char,
	outResp **C.char) C.int {
	if m.ConversationHandler == nil {
		return C.int(ErrConv)
	}
	reply, err := m.ConversationHandler.RespondPAM(Style(style),
		C.GoString(prompt))

	newResponse := func(value string) *C.char {
		cReply := C.CString(value)
		m.convResponses[unsafe.Pointer(cReply)] = 0
		return cReply
	}

	if err != nil {
		if m.RespondOnError {
			// Written but reported failed: the wrapper must never
			// touch it, the mock stays its owner.
			orphan := newResponse(reply)
			m.orphaned = append(m.orphaned, unsafe.Pointer(orphan))
			m.T.Cleanup(func() { C.free(unsafe.Pointer(orphan)) })
			*outResp = orphan
		}
		return m.errorStatus(err)
	}

	if m.RetData.Status != Error(success) {
		return C.int(m.RetData.Status)
	}
	*outResp = newResponse(reply)
	return C.int(success)
}

func (m *mockModuleTransaction) freeConvResponse(resp *C.char) {
	ptr := unsafe.Pointer(resp)
	frees, ok := m.convResponses[ptr]
	if !ok {
		m.T.Errorf("freeing a response the mock never allocated: %p", ptr)
		return
	}
	if frees > 0 {
		m.T.Errorf("double free of conversation response %p", ptr)
		return
	}
	if m.isOrphaned(ptr) {
		m.T.Errorf("freeing a response returned on a failed exchange: %p", ptr)
		return
	}
	m.convResponses[ptr] = frees + 1
	C.free(ptr)
}

// pendingResponses returns how many conversation responses handed to the
// wrapper have not been freed, excluding the deliberately orphaned ones.
func (m *mockModuleTransaction) pendingResponses() int {
	pending := 0
	for ptr, frees := range m.convResponses {
		if frees == 0 && !m.isOrphaned(ptr) {
			pending++
		}
	}
	return pending
}

type mockConversationHandler struct {
	User              string
	Password          string
	ExpectedMessage   string
	CheckEmptyMessage bool
	ExpectedStyle     Style
	CheckZeroStyle    bool
	TextInfo          func(string)
	ErrorMsg          func(string)
	FailWith          error
}

func (c mockConversationHandler) RespondPAM(s Style, msg string) (string, error) {
	if c.FailWith != nil {
		return "", c.FailWith
	}
	if (c.ExpectedMessage != "" || c.CheckEmptyMessage) &&
		msg != c.ExpectedMessage {
		return "", fmt.Errorf("%w: unexpected prompt: %s vs %s",
			ErrConv, msg, c.ExpectedMessage)
	}
	if (c.ExpectedStyle != 0 || c.CheckZeroStyle) &&
		s != c.ExpectedStyle {
		return "", fmt.Errorf("%w: unexpected style: %#v vs %#v",
			ErrConv, s, c.ExpectedStyle)
	}

	switch s {
	case PromptEchoOn:
		return c.User, nil
	case PromptEchoOff:
		return c.Password, nil
	case TextInfo:
		if c.TextInfo != nil {
			c.TextInfo(msg)
		}
		return "", nil
	case ErrorMsg:
		if c.ErrorMsg != nil {
			c.ErrorMsg(msg)
		}
		return "", nil
	}

	return "", fmt.Errorf("%w: unhandled style: %v", ErrConv, s)
}
