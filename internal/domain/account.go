package domain

// AccountKind discriminates the identity populations that can authenticate.
type AccountKind string

const (
	KindUser   AccountKind = "user"
	KindExpert AccountKind = "expert"
	KindAdmin  AccountKind = "admin"
)

// Valid reports whether k names a known account kind.
func (k AccountKind) Valid() bool {
	switch k {
	case KindUser, KindExpert, KindAdmin:
		return true
	}
	return false
}

// Title returns the capitalized form used in API messages ("Expert login successful").
func (k AccountKind) Title() string {
	switch k {
	case KindUser:
		return "User"
	case KindExpert:
		return "Expert"
	case KindAdmin:
		return "Admin"
	}
	return ""
}

// Account is a tagged union over the identity tables. Exactly one variant
// pointer is set, matching Kind, so downstream gate logic switches on the
// tag instead of probing field presence. The unified login resolves only
// the user and expert variants; admin binds through its own endpoint.
type Account struct {
	Kind   AccountKind
	User   *User
	Expert *Expert
	Admin  *Admin
}

func (a *Account) ID() string {
	switch a.Kind {
	case KindExpert:
		return a.Expert.ID
	case KindAdmin:
		return a.Admin.ID
	default:
		return a.User.ID
	}
}

func (a *Account) Email() string {
	switch a.Kind {
	case KindExpert:
		return a.Expert.Email
	case KindAdmin:
		return a.Admin.Email
	default:
		return a.User.Email
	}
}

func (a *Account) PasswordHash() string {
	switch a.Kind {
	case KindExpert:
		return a.Expert.PasswordHash
	case KindAdmin:
		return a.Admin.PasswordHash
	default:
		return a.User.PasswordHash
	}
}

func (a *Account) IsActive() bool {
	switch a.Kind {
	case KindExpert:
		return a.Expert.IsActive
	case KindAdmin:
		return a.Admin.IsActive
	default:
		return a.User.IsActive
	}
}

// ProfileImage returns the stored object key, empty when the account has no
// image. Admin accounts carry none.
func (a *Account) ProfileImage() string {
	switch a.Kind {
	case KindExpert:
		return a.Expert.ProfileImage
	case KindAdmin:
		return ""
	default:
		return a.User.ProfileImage
	}
}

// Sanitize clears the password hash on the bound variant. Views built from a
// sanitized account can never leak credential material.
func (a *Account) Sanitize() {
	switch a.Kind {
	case KindExpert:
		a.Expert.PasswordHash = ""
	case KindAdmin:
		a.Admin.PasswordHash = ""
	default:
		a.User.PasswordHash = ""
	}
}
