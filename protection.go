package unlhauae

// Protection holds Amiga protection bits as stored in an archive attribute
// field. Read, write, execute and delete are stored inverted: a set bit
// revokes the permission. The other four are stored directly.
type Protection uint16

const (
	ProtDelete Protection = 1 << iota
	ProtExecute
	ProtWrite
	ProtRead
	ProtArchived
	ProtPure
	ProtScript
	ProtHidden
)

// invertedBits are the permission bits stored with "set means revoked".
const invertedBits = ProtRead | ProtWrite | ProtExecute | ProtDelete

// protectionLetters in bit order from bit 7 down to bit 0.
const protectionLetters = "hsparwed"

// IsSet checks if the specified bit(s) are set.
func (p Protection) IsSet(flag Protection) bool {
	return p&flag == flag
}

// Effective returns the low eight bits with the inverted ones flipped, so a
// set bit always means the attribute or permission is in effect.
func (p Protection) Effective() Protection {
	return (p & 0xff) ^ invertedBits
}

// String renders the flags the way the Amiga "list" command does, e.g.
// "----rwed" for an entry with every permission and no attributes.
func (p Protection) String() string {
	eff := p.Effective()
	out := make([]byte, len(protectionLetters))
	for i := range protectionLetters {
		if eff.IsSet(1 << (7 - i)) {
			out[i] = protectionLetters[i]
		} else {
			out[i] = '-'
		}
	}
	return string(out)
}

// FormatProtection renders the low eight bits of an attribute field.
func FormatProtection(bits uint16) string {
	return Protection(bits).String()
}
