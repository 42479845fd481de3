package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"ABC Consulting", "abcconsulting"},
		{"  abc   consulting ", "abcconsulting"},
		{"A.B.C. Consulting, LLC", "abcconsultingllc"},
		{"Café Zürich", "cafezurich"},
		{"Crème Brûlée & Co.", "cremebruleeco"},
		{"مطعم", "مطعم"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestCleanPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"+971 50 123 4567", "+971501234567"},
		{"00971501234567", "+971501234567"},
		{"971-50-123-4567", "+971501234567"},
		{"050 123 4567", "+971501234567"},
		{"04 123 4567", "+97141234567"},
		{"+44 20 7946 0958", "+442079460958"},
		{"800 123", "800123"},
		{"n/a", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanPhone(tt.in), tt.in)
	}
}

func TestCanonicalWebsite(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc.com", CanonicalWebsite("abc.com"))
	assert.Equal(t, "abc.com", CanonicalWebsite("https://www.ABC.com/contact?x=1"))
	assert.Equal(t, "abc.com", CanonicalWebsite("http://abc.com:8080/"))
	assert.Equal(t, "shop.abc.ae", CanonicalWebsite("shop.abc.ae/"))
	assert.Equal(t, "", CanonicalWebsite("  "))
}

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abcconsulting|971501234567", Key("ABC Consulting", "+971 50 123 4567", "abc.com", false))
	assert.Equal(t, "abcconsulting|abccom", Key("ABC Consulting", "", "https://abc.com", false))
	assert.Equal(t, "abcconsulting|no-contact", Key("ABC Consulting", "", "", false))
	assert.Equal(t, "abcconsulting", Key("ABC Consulting", "+971501234567", "", true))
}

func TestKey_StableAcrossFormatting(t *testing.T) {
	t.Parallel()

	a := Key("ABC  Consulting", "+971501234567", "", false)
	b := Key("abc consulting", "050 123 4567", "", false)
	assert.Equal(t, a, b)
}
