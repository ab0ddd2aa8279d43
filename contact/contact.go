package contact

import (
	"errors"
	"net/mail"
	"strings"
)

// Channel identifies the delivery channel a contact value belongs to.
type Channel uint8

const (
	// ChannelEmail is an email address contact.
	ChannelEmail Channel = iota + 1
	// ChannelMessaging is a messaging-app contact addressed by phone number.
	ChannelMessaging
)

var (
	// ErrInvalidChannel indicates an unrecognized channel value.
	ErrInvalidChannel = errors.New("invalid contact channel")
	// ErrInvalidValue indicates a contact value that fails the channel's
	// syntactic rules.
	ErrInvalidValue = errors.New("invalid contact value")
)

const (
	maxEmailLength = 254
	minE164Digits  = 8
	maxE164Digits  = 15
)

// String returns the wire name of the channel.
func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelMessaging:
		return "messaging"
	default:
		return "unknown"
	}
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelMessaging
}

// Validate checks value against the syntactic rules of the channel and
// returns the canonical form: emails are lowercased, messaging numbers are
// normalized to +<digits>.
func Validate(value string, channel Channel) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrInvalidValue
	}

	switch channel {
	case ChannelEmail:
		return validateEmail(value)
	case ChannelMessaging:
		return validatePhone(value)
	default:
		return "", ErrInvalidChannel
	}
}

func validateEmail(value string) (string, error) {
	if len(value) > maxEmailLength {
		return "", ErrInvalidValue
	}

	addr, err := mail.ParseAddress(value)
	if err != nil {
		return "", ErrInvalidValue
	}
	// Reject display-name forms like "Alice <a@b.com>"; only the bare
	// address is a valid contact value.
	if addr.Address != value {
		return "", ErrInvalidValue
	}
	if !strings.Contains(value, "@") {
		return "", ErrInvalidValue
	}

	return strings.ToLower(value), nil
}

func validatePhone(value string) (string, error) {
	if !strings.HasPrefix(value, "+") {
		return "", ErrInvalidValue
	}

	digits := value[1:]
	if len(digits) < minE164Digits || len(digits) > maxE164Digits {
		return "", ErrInvalidValue
	}
	if digits[0] == '0' {
		return "", ErrInvalidValue
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", ErrInvalidValue
		}
	}

	return "+" + digits, nil
}
