package trybe

import "github.com/pkg/errors"

// NameMaxLength is the longest account name the host permits.
const NameMaxLength = 12

// Name identifies an account. Valid names are 1 to 12 characters drawn
// from lowercase letters, digits 1-5 and '.', and may not start or end
// with a dot.
type Name string

// String implements the stringer interface.
func (n Name) String() string {
	return string(n)
}

// Bytes returns the byte slice form of the name, used for table keys.
func (n Name) Bytes() []byte {
	return []byte(n)
}

// IsEmpty returns true for the zero name.
func (n Name) IsEmpty() bool {
	return n == ""
}

// Valid reports whether the name satisfies the host naming rules.
func (n Name) Valid() bool {
	if len(n) == 0 || len(n) > NameMaxLength {
		return false
	}
	if n[0] == '.' || n[len(n)-1] == '.' {
		return false
	}
	for i := 0; i < len(n); i++ {
		c := n[i]
		if c >= 'a' && c <= 'z' {
			continue
		}
		if c >= '1' && c <= '5' {
			continue
		}
		if c == '.' {
			continue
		}
		return false
	}
	return true
}

// ParseName converts a string into a Name, rejecting invalid ones.
func ParseName(s string) (Name, error) {
	n := Name(s)
	if !n.Valid() {
		return "", errors.Errorf("invalid account name %q", s)
	}
	return n, nil
}

// MarshalText implements encoding.TextMarshaler.
func (n Name) MarshalText() ([]byte, error) {
	return []byte(n), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Name) UnmarshalText(text []byte) error {
	parsed, err := ParseName(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
