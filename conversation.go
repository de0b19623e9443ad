package pam

/*
#include "transaction.h"
*/
import "C"

import (
	"errors"
	"runtime/cgo"
)

// Style is the type of message in a PAM conversation exchange.
type Style int

// Conversation styles.
const (
	// PromptEchoOff indicates the conversation handler should obtain a
	// string without echoing any text.
	PromptEchoOff Style = C.PAM_PROMPT_ECHO_OFF
	// PromptEchoOn indicates the conversation handler should obtain a
	// string while echoing text.
	PromptEchoOn Style = C.PAM_PROMPT_ECHO_ON
	// ErrorMsg indicates the conversation handler should display an
	// error message.
	ErrorMsg Style = C.PAM_ERROR_MSG
	// TextInfo indicates the conversation handler should display some
	// text.
	TextInfo Style = C.PAM_TEXT_INFO
)

// ConversationHandler is an interface for objects that can be used as
// conversation callbacks during PAM authentication.
type ConversationHandler interface {
	// RespondPAM receives a message style and a message string. If the
	// message style is PromptEchoOff or PromptEchoOn then the function
	// should return a response string.
	RespondPAM(Style, string) (string, error)
}

// ConversationFunc is an adapter to allow the use of ordinary functions as
// conversation callbacks.
type ConversationFunc func(Style, string) (string, error)

// RespondPAM is a conversation callback adapter.
func (f ConversationFunc) RespondPAM(s Style, msg string) (string, error) {
	return f(s, msg)
}

// _go_pam_conv_handler dispatches a single message of an application-side
// conversation to the registered Go handler. The reply crosses back into C,
// so it is allocated with the C allocator; the PAM module stack frees it.
//
//export _go_pam_conv_handler
func _go_pam_conv_handler(msg *C.struct_pam_message, c C.uintptr_t, outMsg **C.char) C.int {
	handler, ok := cgo.Handle(c).Value().(ConversationHandler)
	if !ok || handler == nil {
		return C.int(ErrConv)
	}
	r, err := handler.RespondPAM(Style(msg.msg_style), C.GoString(msg.msg))
	if err != nil {
		var pamErr Error
		if errors.As(err, &pamErr) && pamErr != Error(success) {
			return C.int(pamErr)
		}
		return C.int(ErrConv)
	}
	*outMsg = C.CString(r)
	return success
}
