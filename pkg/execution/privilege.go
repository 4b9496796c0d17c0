package execution

import "os/user"

// Privilege names the identity a command runs as. The zero value runs as
// the invoking user.
type Privilege struct {
	User string
}

var (
	// NoPrivilege runs commands as the invoking user.
	NoPrivilege = Privilege{}

	// Root runs commands as the superuser.
	Root = Privilege{User: "root"}
)

// Elevated reports whether the privilege names an explicit identity.
func (p Privilege) Elevated() bool {
	return p.User != ""
}

// String returns the identity for logs.
func (p Privilege) String() string {
	if p.User == "" {
		return "current"
	}
	return p.User
}

// needsSudo reports whether running as p requires switching identity.
func (p Privilege) needsSudo(current string) bool {
	return p.Elevated() && p.User != current
}

func currentUsername() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}
