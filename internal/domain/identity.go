package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is a record identity. Clients send it either as a JSON string or as a
// JSON number, so both decode into the same textual form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// IdentityOf resolves the identity of a record carrying a generated id and a
// store-assigned id. The generated id wins when set; a record with neither
// has no identity.
func IdentityOf(id, storeID ID) (ID, bool) {
	if v := ID(strings.TrimSpace(string(id))); v != "" {
		return v, true
	}
	if v := ID(strings.TrimSpace(string(storeID))); v != "" {
		return v, true
	}
	return "", false
}

// SameIdentity reports whether two records resolve to the same identity.
// Records without an identity never match anything, including each other.
func SameIdentity(aID, aStoreID, bID, bStoreID ID) bool {
	a, ok := IdentityOf(aID, aStoreID)
	if !ok {
		return false
	}
	b, ok := IdentityOf(bID, bStoreID)
	if !ok {
		return false
	}
	return a == b
}

// Identified is implemented by records that carry the two id fields.
type Identified interface {
	Identity() (ID, bool)
}

// Matches reports whether rec resolves to the given identity.
func Matches(rec Identified, id ID) bool {
	key, ok := rec.Identity()
	if !ok || id == "" {
		return false
	}
	return key == id
}
