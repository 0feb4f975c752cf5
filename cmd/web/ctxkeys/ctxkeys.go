package ctxkeys

type Key int

const (
	AccessLevel         Key = iota
	RegistrationEnabled     // bool: whether new member registration is allowed
	SessionUser             // *auth.SessionUser for signed-in members
)
