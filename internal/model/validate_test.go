package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdent(t *testing.T) {
	tests := []struct {
		name  string
		ident string
		ok    bool
	}{
		{"simple", "abc-12", true},
		{"unicode", "café", true},
		{"empty", "", false},
		{"leading dash", "-abc", false},
		{"leading question", "?abc", false},
		{"separator", "a!b", false},
		{"space", "a b", false},
		{"tab", "a\tb", false},
		{"decomposed", "cafe\u0301", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdent(tt.ident)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, ErrCodeInvalidItem, CodeOf(err))
		})
	}
}

func TestValidateItem_SortKey(t *testing.T) {
	err := ValidateItem(Item{Ident: "a", Sort: "1!2"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidItem, CodeOf(err))

	assert.NoError(t, ValidateItem(Item{Ident: "a", Sort: ""}))
	assert.NoError(t, ValidateItem(Item{Ident: "a", Sort: "0010"}))
}

func TestValidateItem_SelfParent(t *testing.T) {
	err := ValidateItem(Item{Ident: "a", Parent: "a"})
	require.Error(t, err)
	assert.True(t, IsCycle(err))
}

func TestValidateItem_BadParent(t *testing.T) {
	err := ValidateItem(Item{Ident: "a", Parent: "b c"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidItem, CodeOf(err))
	assert.Contains(t, err.Error(), "parent:")
}

func TestValidateItem_DecomposedParent(t *testing.T) {
	err := ValidateItem(Item{Ident: "a", Parent: "cafe\u0301"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidItem, CodeOf(err))
	assert.Contains(t, err.Error(), "normalization")
}

func TestNormalize(t *testing.T) {
	// "e" + combining acute accent collapses to the precomposed form.
	it := Normalize(Item{Ident: "cafe\u0301", Parent: "p\u0301", Sort: "e\u0301", Name: "e\u0301"})
	assert.Equal(t, "cafe\u0301", it.Ident, "ident is never rewritten")
	assert.Equal(t, "p\u0301", it.Parent)
	assert.Equal(t, "\u00e9", it.Sort)
	assert.Equal(t, "\u00e9", it.Name)
	assert.Equal(t, ClassifyNormal, it.Classify)

	it = Normalize(Item{Ident: "x", Classify: ClassifyOther})
	assert.Equal(t, ClassifyOther, it.Classify)
}
