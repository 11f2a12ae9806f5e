package utils

import "testing"

func TestChatIDSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"u1", "u2"},
		{"abc", "abd"},
		{"9f8d2c1a", "0a1b2c3d"},
		{"same", "same"},
	}
	for _, p := range pairs {
		if ChatID(p[0], p[1]) != ChatID(p[1], p[0]) {
			t.Errorf("ChatID(%q, %q) not symmetric", p[0], p[1])
		}
	}
}

func TestChatIDDistinctPairs(t *testing.T) {
	ids := []string{"u1", "u2", "u3", "u10"}
	seen := map[string][2]string{}
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			key := ChatID(a, b)
			if prev, ok := seen[key]; ok {
				t.Fatalf("ChatID collision: (%q,%q) and (%q,%q) both map to %q", prev[0], prev[1], a, b, key)
			}
			seen[key] = [2]string{a, b}
		}
	}
}

func TestChatIDOrdering(t *testing.T) {
	if got := ChatID("u2", "u1"); got != "u1_u2" {
		t.Errorf("ChatID(u2, u1) = %q, want u1_u2", got)
	}
}
