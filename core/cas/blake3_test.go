package cas

import "testing"

func TestBlake3HashKnownValue(t *testing.T) {
	// BLAKE3 of the empty input.
	want := "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"
	if got := Blake3Hash(nil); got != want {
		t.Errorf("Blake3Hash(nil) = %s, want %s", got, want)
	}
}

func TestKey(t *testing.T) {
	a := Key("1.0", "42", "hallo wereld")
	if !IsValidHash(a) {
		t.Fatalf("Key() = %q is not a valid hash", a)
	}
	if a != Key("1.0", "42", "hallo wereld") {
		t.Error("Key() is not deterministic")
	}
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key() parts are ambiguous")
	}
	if a == Key("1.0", "43", "hallo wereld") {
		t.Error("Key() ignores a part")
	}
}

func TestIsValidHash(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{Blake3Hash([]byte("x")), true},
		{"", false},
		{"ABC", false},
		{"zz49b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", false},
	}
	for _, tt := range tests {
		if got := IsValidHash(tt.in); got != tt.want {
			t.Errorf("IsValidHash(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
