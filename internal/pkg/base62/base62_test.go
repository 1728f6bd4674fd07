package base62

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_KnownValues(t *testing.T) {
	tests := []struct {
		id   uint64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{9, "9"},
		{10, "a"},
		{35, "z"},
		{36, "A"},
		{61, "Z"},
		{62, "10"},
		{3843, "ZZ"},
		{3844, "100"},
		{math.MaxUint64, "lYGhA16ahyf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.id))

			id, err := Decode(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for id := uint64(0); id < 100000; id++ {
		got, err := Decode(Encode(id))
		require.NoError(t, err)
		require.Equal(t, id, got)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10000; i++ {
		id := rng.Uint64()
		got, err := Decode(Encode(id))
		require.NoError(t, err)
		require.Equal(t, id, got)
	}
}

func TestEncode_Injective(t *testing.T) {
	seen := make(map[string]uint64, 200000)
	for id := uint64(0); id < 200000; id++ {
		code := Encode(id)
		if prev, ok := seen[code]; ok {
			t.Fatalf("ids %d and %d both encode to %q", prev, id, code)
		}
		seen[code] = id
	}
}

func TestEncode_NoLeadingZeros(t *testing.T) {
	for id := uint64(1); id < 10000; id++ {
		code := Encode(id)
		assert.False(t, strings.HasPrefix(code, "0"), "code %q for id %d has a leading zero", code, id)
	}
}

func TestEncode_LengthGrowsWithMagnitude(t *testing.T) {
	assert.Len(t, Encode(61), 1)
	assert.Len(t, Encode(62), 2)
	assert.Len(t, Encode(62*62-1), 2)
	assert.Len(t, Encode(62*62), 3)
}

func TestDecode_InvalidCode(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"dash", "ab-c"},
		{"underscore", "abc_"},
		{"space", "ab c"},
		{"slash", "a/b"},
		{"non ascii", "abcé"},
		{"too long", "zzzzzzzzzzzz"},
		{"overflow", "lYGhA16ahyg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.code)
			assert.ErrorIs(t, err, ErrInvalidCode)
			assert.False(t, IsValid(tt.code))
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("aZ09"))
	assert.True(t, IsValid("lYGhA16ahyf"))
	assert.False(t, IsValid("a-Z"))
}
