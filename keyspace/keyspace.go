package keyspace

import "strings"

const (
	separator = ":"
	credsName = "creds"
)

var (
	escaper   = strings.NewReplacer("%", "%25", ":", "%3A")
	unescaper = strings.NewReplacer("%3A", ":", "%25", "%")
)

// Address is the logical identity of a backend record.
type Address struct {
	SessionID string
	Category  Category
	ItemID    string
}

// IsCreds reports whether the address is a session's credential record.
func (a Address) IsCreds() bool {
	return a.Category == CategoryCreds
}

// Builder derives backend keys under an optional namespace prefix.
type Builder struct {
	Prefix string
}

// NewBuilder returns a Builder rooted at prefix. An empty prefix produces keys
// that start directly with the session segment.
func NewBuilder(prefix string) Builder {
	return Builder{Prefix: prefix}
}

// CredsKey returns the key of the session's credential record.
func (b Builder) CredsKey(sessionID string) string {
	return b.SessionPrefix(sessionID) + credsName
}

// Key returns the backend key for a record. CategoryCreds ignores itemID.
func (b Builder) Key(sessionID string, category Category, itemID string) string {
	if category == CategoryCreds {
		return b.CredsKey(sessionID)
	}
	return b.SessionPrefix(sessionID) + escape(string(category)) + separator + escape(itemID)
}

// SessionPrefix returns the prefix shared by every key of sessionID and by no
// key of any other session.
func (b Builder) SessionPrefix(sessionID string) string {
	return b.root() + escape(sessionID) + separator
}

// RootPrefix returns the prefix shared by every key under this namespace.
func (b Builder) RootPrefix() string {
	return b.root()
}

// BelongsToSession reports whether key was derived for sessionID.
func (b Builder) BelongsToSession(key, sessionID string) bool {
	addr, ok := b.Parse(key)
	return ok && addr.SessionID == sessionID
}

// Parse reverses [Builder.Key]. It reports false for keys outside the
// namespace or with an unexpected shape.
func (b Builder) Parse(key string) (Address, bool) {
	root := b.root()
	if !strings.HasPrefix(key, root) {
		return Address{}, false
	}
	parts := strings.Split(key[len(root):], separator)

	switch len(parts) {
	case 2:
		if parts[1] != credsName || parts[0] == "" {
			return Address{}, false
		}
		return Address{SessionID: unescape(parts[0]), Category: CategoryCreds}, true
	case 3:
		if parts[0] == "" {
			return Address{}, false
		}
		return Address{
			SessionID: unescape(parts[0]),
			Category:  Category(unescape(parts[1])),
			ItemID:    unescape(parts[2]),
		}, true
	default:
		return Address{}, false
	}
}

func (b Builder) root() string {
	if b.Prefix == "" {
		return ""
	}
	return escape(b.Prefix) + separator
}

func escape(s string) string {
	return escaper.Replace(s)
}

func unescape(s string) string {
	return unescaper.Replace(s)
}
