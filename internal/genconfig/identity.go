package genconfig

import (
	"os"
	"os/user"

	"github.com/cockroachdb/errors"
)

// IdentityProvider names the current user. The name picks the per-user
// overlay file that sits next to a config.
type IdentityProvider interface {
	CurrentUser() (string, error)
}

// IdentityFunc adapts a function to IdentityProvider.
type IdentityFunc func() (string, error)

// CurrentUser calls f.
func (f IdentityFunc) CurrentUser() (string, error) {
	return f()
}

// StaticIdentity always reports name.
func StaticIdentity(name string) IdentityProvider {
	return IdentityFunc(func() (string, error) {
		if name == "" {
			return "", errors.New("empty user name")
		}
		return name, nil
	})
}

// OSIdentity reports the login name of the process owner, falling back to
// $USER and then $USERNAME when the user database is unavailable.
func OSIdentity() IdentityProvider {
	return IdentityFunc(func() (string, error) {
		if u, err := user.Current(); err == nil && u.Username != "" {
			return u.Username, nil
		}
		for _, env := range []string{"USER", "USERNAME"} {
			if name := os.Getenv(env); name != "" {
				return name, nil
			}
		}
		return "", errors.New("cannot determine current user")
	})
}
