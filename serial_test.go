package ogg

import "testing"

func TestGenerateBitstreamSerialNumberVaries(t *testing.T) {
	seen := make(map[uint32]bool)
	for i := 0; i < 64; i++ {
		s := GenerateBitstreamSerialNumber()
		if seen[s] {
			t.Fatalf("duplicate serial %d generated within %d calls", s, i)
		}
		seen[s] = true
	}
}
