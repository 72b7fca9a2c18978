// Package validation holds the field rules applied at the request boundary.
// Each rule set is a plain ozzo-validation slice so callers can compose them
// per field; nothing here touches storage.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/gophauth/internal/common"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var errPasswordComplexity = errors.New("must contain at least one letter and one digit")

var (
	UsernameRules = []validation.Rule{
		validation.Required,
		validation.RuneLength(3, 32),
		validation.Match(usernamePattern).Error("may contain only letters, digits, '_', '.' and '-'"),
	}

	EmailRules = []validation.Rule{
		validation.Required,
		validation.RuneLength(3, 255),
		is.Email,
	}

	PasswordRules = []validation.Rule{
		validation.Required,
		validation.RuneLength(8, 64),
		validation.Length(0, MaxPasswordBytes).Error(fmt.Sprintf("must be at most %d bytes long", MaxPasswordBytes)),
		validation.By(letterAndDigit),
	}
)

func letterAndDigit(value interface{}) error {
	s, _ := value.(string)
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return errPasswordComplexity
	}
	return nil
}

// Username validates a username.
func Username(v string) error {
	return wrap(validation.Validate(v, UsernameRules...))
}

// Email validates an e-mail address.
func Email(v string) error {
	return wrap(validation.Validate(v, EmailRules...))
}

// Password validates a plaintext password before hashing.
func Password(v string) error {
	return wrap(validation.Validate(v, PasswordRules...))
}

// SignUpInput is the credential triple accepted by sign-up.
type SignUpInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims surrounding whitespace from the identifying fields.
func (in SignUpInput) Normalize() SignUpInput {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	return in
}

func (in SignUpInput) Validate() error {
	return wrap(validation.ValidateStruct(&in,
		validation.Field(&in.Username, UsernameRules...),
		validation.Field(&in.Email, EmailRules...),
		validation.Field(&in.Password, PasswordRules...),
	))
}

// wrap tags a rule failure with common.ErrValidation, keeping the message.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", common.ErrValidation, err)
}
