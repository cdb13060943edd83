package ids

import "testing"

func TestObjectAndPlayerIDsRoundTrip(t *testing.T) {
	if n, ok := ParseUintAfterPrefix(ObjectPrefix, ObjectID(42)); !ok || n != 42 {
		t.Fatalf("object id round trip: n=%d ok=%v", n, ok)
	}
	if n, ok := ParseUintAfterPrefix(PlayerPrefix, PlayerID(7)); !ok || n != 7 {
		t.Fatalf("player id round trip: n=%d ok=%v", n, ok)
	}
	for _, bad := range []string{"", "O", "Ox", "P1"} {
		if _, ok := ParseUintAfterPrefix(ObjectPrefix, bad); ok {
			t.Fatalf("expected parse failure for %q", bad)
		}
	}
}

func TestNextAfter(t *testing.T) {
	if got := NextAfter(ObjectPrefix, []string{"O3", "O10", "P99", "junk"}, 1); got != 11 {
		t.Fatalf("NextAfter=%d want 11", got)
	}
	if got := NextAfter(ObjectPrefix, nil, 5); got != 5 {
		t.Fatalf("NextAfter floor=%d want 5", got)
	}
}
