package common

import "testing"

// ---------- RandomDigits ----------

func TestRandomDigits_LengthAndCharset(t *testing.T) {
	for i := 0; i < 200; i++ {
		s, err := RandomDigits(6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(s) != 6 {
			t.Fatalf("expected 6 digits, got %q", s)
		}
		for _, c := range s {
			if c < '0' || c > '9' {
				t.Fatalf("non-digit %q in %q", c, s)
			}
		}
	}
}

func TestRandomDigits_LeadingZeroReachable(t *testing.T) {
	// P(no leading zero in 2000 draws) = 0.9^2000, effectively zero.
	for i := 0; i < 2000; i++ {
		s, err := RandomDigits(6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s[0] == '0' {
			return
		}
	}
	t.Fatal("leading zero never produced; distribution is not uniform over 000000-999999")
}

func TestRandomDigits_Zero(t *testing.T) {
	s, err := RandomDigits(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string, got %q", s)
	}
}
