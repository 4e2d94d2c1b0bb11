package asset

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseCanonicalForm(t *testing.T) {
	a, err := Parse("100.0000 SYS")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.Amount != 1_000_000 {
		t.Fatalf("expected scaled amount 1000000, got %d", a.Amount)
	}
	if a.Symbol.Code != "SYS" || a.Symbol.Precision != 4 {
		t.Fatalf("unexpected symbol: %+v", a.Symbol)
	}
	if got := a.String(); got != "100.0000 SYS" {
		t.Fatalf("round trip mismatch: %s", got)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"100.0000",
		"SYS",
		"1,0000 SYS",
		"1.0000 sys",
		"1.0000 TOOLONGCODE",
		"abc SYS",
	}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("expected error parsing %q", c)
		}
	}
}

func TestAddSubExact(t *testing.T) {
	a := MustParse("25.0000 SYS")
	b := MustParse("0.0001 SYS")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if sum.String() != "25.0001 SYS" {
		t.Fatalf("unexpected sum: %s", sum)
	}

	diff, err := sum.Sub(b)
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	if diff != a {
		t.Fatalf("expected %s, got %s", a, diff)
	}
}

func TestSymbolMismatchRejected(t *testing.T) {
	a := MustParse("1.0000 SYS")
	b := MustParse("1.0000 EOS")
	if _, err := a.Add(b); !errors.Is(err, ErrSymbolMismatch) {
		t.Fatalf("expected symbol mismatch, got %v", err)
	}

	// Same code at a different precision is a different symbol.
	c := MustParse("1.00 SYS")
	if _, err := a.Sub(c); !errors.Is(err, ErrSymbolMismatch) {
		t.Fatalf("expected precision mismatch, got %v", err)
	}
}

func TestNegativeFormatting(t *testing.T) {
	a := New(-5, MustSymbol("SYS", 4))
	if got := a.String(); got != "-0.0005 SYS" {
		t.Fatalf("unexpected negative form: %s", got)
	}
}

func TestParseSymbol(t *testing.T) {
	sym, err := ParseSymbol("4,SYS")
	if err != nil {
		t.Fatalf("parse symbol: %v", err)
	}
	if sym != MustSymbol("SYS", 4) {
		t.Fatalf("unexpected symbol: %+v", sym)
	}

	for _, bad := range []string{"SYS", "x,SYS", "4,sys", "99,SYS"} {
		if _, err := ParseSymbol(bad); err == nil {
			t.Errorf("expected error parsing %q", bad)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	a := MustParse("12.0000 SYS")
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"12.0000 SYS"` {
		t.Fatalf("unexpected encoding: %s", data)
	}

	var back Asset
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != a {
		t.Fatalf("expected %v, got %v", a, back)
	}
}
