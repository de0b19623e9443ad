package pam

/*
#include <security/pam_appl.h>
#include <security/pam_modules.h>
*/
import "C"

// Flags are inputs to a PAM operation, passed by the application (and, on
// the module side, forwarded by libpam to the service module).
type Flags int

// PAM Flag types.
const (
	// Silent indicates that no messages should be emitted.
	Silent Flags = C.PAM_SILENT
	// DisallowNullAuthtok indicates that the account should fail if the
	// user does not have a registered authentication token.
	DisallowNullAuthtok Flags = C.PAM_DISALLOW_NULL_AUTHTOK
	// EstablishCred indicates to initialize the credentials for the user.
	EstablishCred Flags = C.PAM_ESTABLISH_CRED
	// DeleteCred indicates to delete the credentials associated with the
	// authentication service.
	DeleteCred Flags = C.PAM_DELETE_CRED
	// ReinitializeCred indicates to fully reinitialize the user
	// credentials.
	ReinitializeCred Flags = C.PAM_REINITIALIZE_CRED
	// RefreshCred indicates to extend the lifetime of the user
	// credentials.
	RefreshCred Flags = C.PAM_REFRESH_CRED
	// ChangeExpiredAuthtok indicates that the password service should only
	// update those passwords that have aged.
	ChangeExpiredAuthtok Flags = C.PAM_CHANGE_EXPIRED_AUTHTOK
	// PrelimCheck is given to the password service on the first of its two
	// chauthtok invocations, before any token is updated.
	PrelimCheck Flags = C.PAM_PRELIM_CHECK
	// UpdateAuthtok is given to the password service on the second
	// chauthtok invocation, the one that actually changes the token.
	UpdateAuthtok Flags = C.PAM_UPDATE_AUTHTOK
)
