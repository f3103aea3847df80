package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// KeySeparator joins the components of a hierarchy sort key.
const KeySeparator = "!"

// Normalize returns it with Sort and Name in NFC form and an empty Classify
// defaulted to normal. Ident and Parent are never rewritten; ValidateIdent
// rejects them unless they are already NFC.
func Normalize(it Item) Item {
	it.Sort = norm.NFC.String(it.Sort)
	it.Name = norm.NFC.String(it.Name)
	if it.Classify == "" {
		it.Classify = ClassifyNormal
	}
	return it
}

// ValidateItem checks the key constraints the hierarchy order relies on.
// It does not check parent existence; that needs the store.
func ValidateItem(it Item) error {
	if err := ValidateIdent(it.Ident); err != nil {
		return err
	}
	if it.Parent != "" {
		if err := ValidateIdent(it.Parent); err != nil {
			return NewInvalidItem(it.Ident, "parent: "+err.(*IndexError).Message)
		}
		if it.Parent == it.Ident {
			return NewCycleError(it.Ident, "", []string{it.Ident, it.Ident})
		}
	}
	if bad := badKeyByte(it.Sort); bad >= 0 {
		return NewInvalidItem(it.Ident, "sort key contains a separator or whitespace byte")
	}
	return nil
}

// ValidateIdent checks a single ident.
func ValidateIdent(ident string) error {
	if ident == "" {
		return NewInvalidItem(ident, "ident should not be empty")
	}
	if strings.HasPrefix(ident, "-") || strings.HasPrefix(ident, "?") {
		return NewInvalidItem(ident, "ident must not start with '-' or '?'")
	}
	if badKeyByte(ident) >= 0 {
		return NewInvalidItem(ident, "ident contains a separator or whitespace byte")
	}
	if !norm.NFC.IsNormalString(ident) {
		return NewInvalidItem(ident, "ident is not in Unicode normalization form C")
	}
	return nil
}

// badKeyByte returns the index of the first byte that is <= '!', or -1.
// Every byte of a key component must sort after the separator.
func badKeyByte(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] <= KeySeparator[0] {
			return i
		}
	}
	return -1
}
