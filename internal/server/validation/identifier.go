package validation

import (
	"strings"
)

type IdentifierKind int

const (
	KindEmail IdentifierKind = iota + 1
	KindUsername
)

func (k IdentifierKind) String() string {
	switch k {
	case KindEmail:
		return "email"
	case KindUsername:
		return "username"
	default:
		return "unknown"
	}
}

// LoginIdentifier is the sign-in login, resolved once into either an e-mail
// address or a username. The zero value is neither.
type LoginIdentifier struct {
	kind  IdentifierKind
	value string
}

func EmailIdentifier(email string) LoginIdentifier {
	return LoginIdentifier{kind: KindEmail, value: email}
}

func UsernameIdentifier(username string) LoginIdentifier {
	return LoginIdentifier{kind: KindUsername, value: username}
}

func (l LoginIdentifier) Kind() IdentifierKind { return l.kind }
func (l LoginIdentifier) Value() string        { return l.value }
func (l LoginIdentifier) IsEmail() bool        { return l.kind == KindEmail }
func (l LoginIdentifier) IsUsername() bool     { return l.kind == KindUsername }

func (l LoginIdentifier) String() string {
	return l.kind.String() + ":" + l.value
}

// ParseLoginIdentifier classifies login: anything containing '@' is looked
// up as an e-mail address as is, anything else must be a valid username.
// A malformed address simply matches no account.
func ParseLoginIdentifier(login string) (LoginIdentifier, error) {
	login = strings.TrimSpace(login)

	if strings.Contains(login, "@") {
		return EmailIdentifier(login), nil
	}

	if err := Username(login); err != nil {
		return LoginIdentifier{}, err
	}
	return UsernameIdentifier(login), nil
}
