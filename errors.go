package pam

/*
#include <security/pam_appl.h>
*/
import "C"

// Error is a PAM result code. It maps one-to-one onto the native integer
// status values a PAM stack exchanges with a module, so converting between
// Error and int is lossless in both directions for any value the stack can
// produce. The zero value is the native success status and is never returned
// as a Go error.
type Error int

// PAM result codes.
const (
	// ErrOpen indicates a dlopen() failure when dynamically loading a
	// service module.
	ErrOpen Error = C.PAM_OPEN_ERR
	// ErrSymbol indicates a symbol not found.
	ErrSymbol Error = C.PAM_SYMBOL_ERR
	// ErrService indicates an error in service module.
	ErrService Error = C.PAM_SERVICE_ERR
	// ErrSystem indicates a system error.
	ErrSystem Error = C.PAM_SYSTEM_ERR
	// ErrBuf indicates a memory buffer error.
	ErrBuf Error = C.PAM_BUF_ERR
	// ErrPermDenied indicates a permission denied.
	ErrPermDenied Error = C.PAM_PERM_DENIED
	// ErrAuth indicates an authentication failure.
	ErrAuth Error = C.PAM_AUTH_ERR
	// ErrCredInsufficient indicates that authentication data could not be
	// accessed due to insufficient credentials.
	ErrCredInsufficient Error = C.PAM_CRED_INSUFFICIENT
	// ErrAuthinfoUnavail indicates that the underlying authentication
	// service can not retrieve authentication information.
	ErrAuthinfoUnavail Error = C.PAM_AUTHINFO_UNAVAIL
	// ErrUserUnknown indicates a user not known to the underlying
	// authentication module.
	ErrUserUnknown Error = C.PAM_USER_UNKNOWN
	// ErrMaxtries indicates that the retry count maintained by the
	// authentication service has been reached.
	ErrMaxtries Error = C.PAM_MAXTRIES
	// ErrNewAuthtokReqd indicates that a new authentication token is
	// required, normally because the password is nil or has aged.
	ErrNewAuthtokReqd Error = C.PAM_NEW_AUTHTOK_REQD
	// ErrAcctExpired indicates that a user account has expired.
	ErrAcctExpired Error = C.PAM_ACCT_EXPIRED
	// ErrSession indicates that an entry for the specified session could
	// not be made or removed.
	ErrSession Error = C.PAM_SESSION_ERR
	// ErrCredUnavail indicates that the underlying authentication service
	// can not retrieve user credentials.
	ErrCredUnavail Error = C.PAM_CRED_UNAVAIL
	// ErrCredExpired indicates that user credentials have expired.
	ErrCredExpired Error = C.PAM_CRED_EXPIRED
	// ErrCred indicates a failure setting user credentials.
	ErrCred Error = C.PAM_CRED_ERR
	// ErrNoModuleData indicates that no module specific data is present.
	ErrNoModuleData Error = C.PAM_NO_MODULE_DATA
	// ErrConv indicates a conversation error.
	ErrConv Error = C.PAM_CONV_ERR
	// ErrAuthtok indicates an authentication token manipulation error.
	ErrAuthtok Error = C.PAM_AUTHTOK_ERR
	// ErrAuthtokRecovery indicates that authentication information can
	// not be recovered.
	ErrAuthtokRecovery Error = C.PAM_AUTHTOK_RECOVERY_ERR
	// ErrAuthtokLockBusy indicates that the authentication token lock is
	// busy.
	ErrAuthtokLockBusy Error = C.PAM_AUTHTOK_LOCK_BUSY
	// ErrAuthtokDisableAging indicates that authentication token aging is
	// disabled.
	ErrAuthtokDisableAging Error = C.PAM_AUTHTOK_DISABLE_AGING
	// ErrTryAgain indicates a failed preliminary check by the password
	// service.
	ErrTryAgain Error = C.PAM_TRY_AGAIN
	// ErrIgnore indicates to ignore the underlying module regardless of
	// whether the control flag is required, optional, or sufficient.
	ErrIgnore Error = C.PAM_IGNORE
	// ErrAbort indicates a critical error (module fail now request).
	ErrAbort Error = C.PAM_ABORT
	// ErrAuthtokExpired indicates that the user's authentication token
	// has expired.
	ErrAuthtokExpired Error = C.PAM_AUTHTOK_EXPIRED
	// ErrModuleUnknown indicates that a module is not known.
	ErrModuleUnknown Error = C.PAM_MODULE_UNKNOWN
	// ErrBadItem indicates a bad item passed to pam_*_item().
	ErrBadItem Error = C.PAM_BAD_ITEM
	// ErrConvAgain indicates that the conversation function is event
	// driven and data is not available yet.
	ErrConvAgain Error = C.PAM_CONV_AGAIN
	// ErrIncomplete indicates that this function should be called again
	// to complete the authentication stack.
	ErrIncomplete Error = C.PAM_INCOMPLETE
)

const success = C.PAM_SUCCESS

// knownErrors lists every named result code, in native numeric order.
var knownErrors = []Error{
	ErrOpen, ErrSymbol, ErrService, ErrSystem, ErrBuf, ErrPermDenied,
	ErrAuth, ErrCredInsufficient, ErrAuthinfoUnavail, ErrUserUnknown,
	ErrMaxtries, ErrNewAuthtokReqd, ErrAcctExpired, ErrSession,
	ErrCredUnavail, ErrCredExpired, ErrCred, ErrNoModuleData, ErrConv,
	ErrAuthtok, ErrAuthtokRecovery, ErrAuthtokLockBusy,
	ErrAuthtokDisableAging, ErrTryAgain, ErrIgnore, ErrAbort,
	ErrAuthtokExpired, ErrModuleUnknown, ErrBadItem, ErrConvAgain,
	ErrIncomplete,
}

// ErrorFromNative converts a native status integer into an Error. The
// conversion accepts any integer, including values outside the set of named
// codes, so that a status received over the ABI always round-trips.
func ErrorFromNative(status int32) Error {
	return Error(status)
}

// ToNative returns the native integer value of the result code.
func (status Error) ToNative() int32 {
	return int32(status)
}

// Known reports whether the result code is one of the named PAM codes.
func (status Error) Known() bool {
	for _, known := range knownErrors {
		if status == known {
			return true
		}
	}
	return false
}

// Error returns the PAM error message for the result code. Unrecognized
// codes render as the stack's unknown-error message.
func (status Error) Error() string {
	return C.GoString(C.pam_strerror(nil, C.int(status)))
}
