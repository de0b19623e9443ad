package utils

// Action represents a PAM stack a service line applies to.
type Action int

// PAM actions.
const (
	// Account is the account stack.
	Account Action = iota + 1
	// Auth is the auth stack.
	Auth
	// Password is the password stack.
	Password
	// Session is the session stack.
	Session
)

func (a Action) String() string {
	switch a {
	case Account:
		return "account"
	case Auth:
		return "auth"
	case Password:
		return "password"
	case Session:
		return "session"
	default:
		return ""
	}
}

// Actions is a map with all the available Actions by their name.
var Actions = map[string]Action{
	Account.String():  Account,
	Auth.String():     Auth,
	Password.String(): Password,
	Session.String():  Session,
}

// Control represents how a module result is handled in a service file.
type Control int

// PAM controls.
const (
	// Required implies that the module is required.
	Required Control = iota + 1
	// Requisite implies that the module is requisite.
	Requisite
	// Sufficient implies that the module is sufficient.
	Sufficient
	// Optional implies that the module is optional.
	Optional
)

func (c Control) String() string {
	switch c {
	case Required:
		return "required"
	case Requisite:
		return "requisite"
	case Sufficient:
		return "sufficient"
	case Optional:
		return "optional"
	default:
		return ""
	}
}

// Fallback modules from the system PAM installation.
const (
	// Permit is the module to always permit.
	Permit = "pam_permit.so"
	// Deny is the module to always deny.
	Deny = "pam_deny.so"
)

// ServiceLine is a line for the PAM service file.
type ServiceLine struct {
	Action  Action
	Control Control
	Module  string
	Args    []string
}
