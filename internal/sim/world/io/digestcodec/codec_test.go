package digestcodec

import (
	"bytes"
	"testing"
)

func TestWriter_StringsAreLengthPrefixed(t *testing.T) {
	var a, b bytes.Buffer
	wa, wb := NewWriter(&a), NewWriter(&b)
	wa.String("ab")
	wa.String("c")
	wb.String("a")
	wb.String("bc")
	if bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("adjacent strings must not collide")
	}
}

func TestWriter_FloatSign(t *testing.T) {
	var a, b bytes.Buffer
	NewWriter(&a).F64(0)
	negZero := 0.0
	negZero = -negZero
	NewWriter(&b).F64(negZero)
	if bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("expected distinct encodings for 0 and -0")
	}
}
