package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for fingerprints. The version suffix allows the encoding
// to change without colliding with old fingerprints.
const (
	DomainListing = "fanling/listing/v1"
	DomainClosure = "fanling/closure/v1"
)

// MarshalCanonical produces canonical JSON for fingerprinting:
// sorted object keys, no HTML escaping, NFC strings, no whitespace.
// Supported values are string, int, int64, bool, []any and map[string]any.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case string:
		return writeCanonicalString(buf, val)
	case int:
		fmt.Fprintf(buf, "%d", val)
	case int64:
		fmt.Fprintf(buf, "%d", val)
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ListingRow is the part of an ordered listing row that is fingerprinted.
type ListingRow struct {
	Ident string
	Level int
	Key   string
}

// ListingFingerprint hashes an ordered listing. Two listings with the same
// rows in the same order have the same fingerprint, which lets callers
// detect that a cached listing is still current.
func ListingFingerprint(rows []ListingRow) (string, error) {
	arr := make([]any, len(rows))
	for i, r := range rows {
		arr[i] = []any{r.Ident, r.Level, r.Key}
	}
	data, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("listing fingerprint: %w", err)
	}
	return hashWithDomain(DomainListing, data), nil
}

// ClosureFingerprint hashes a set of closure entries independent of the
// order they are given in.
func ClosureFingerprint(entries []ClosureEntry) (string, error) {
	sorted := make([]ClosureEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})
	arr := make([]any, len(sorted))
	for i, e := range sorted {
		arr[i] = []any{e.Kind, e.From, e.To}
	}
	data, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("closure fingerprint: %w", err)
	}
	return hashWithDomain(DomainClosure, data), nil
}
