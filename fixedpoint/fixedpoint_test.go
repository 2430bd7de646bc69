package fixedpoint

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func amt(t *testing.T, s string) Amount {
	t.Helper()

	a, err := FromString(s)
	if err != nil {
		t.Fatalf("FromString(%q): %v", s, err)
	}

	return a
}

func TestFromString(t *testing.T) {
	a := amt(t, "1.5")
	if a.String() != "1.5" {
		t.Errorf("expected 1.5, got %s", a.String())
	}

	if _, err := FromString("abc"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	if _, err := FromString(""); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for empty string, got %v", err)
	}
}

func TestFromStringTruncatesBeyondScale(t *testing.T) {
	a := amt(t, "0.1234567890123456789999")
	if a.String() != "0.123456789012345678" {
		t.Errorf("expected truncation at 18 places, got %s", a.String())
	}
}

func TestMulKeepsScale(t *testing.T) {
	got := amt(t, "4").Mul(amt(t, "100"))
	if !got.Equal(amt(t, "400")) {
		t.Errorf("4 * 100 = %s, want 400", got)
	}

	got = amt(t, "0.5").Mul(amt(t, "0.5"))
	if !got.Equal(amt(t, "0.25")) {
		t.Errorf("0.5 * 0.5 = %s, want 0.25", got)
	}
}

func TestDivTruncatesTowardZero(t *testing.T) {
	got := amt(t, "1").Div(amt(t, "3"))
	if got.String() != "0.333333333333333333" {
		t.Errorf("1/3 = %s", got)
	}

	got = amt(t, "-1").Div(amt(t, "3"))
	if got.String() != "-0.333333333333333333" {
		t.Errorf("-1/3 = %s, want truncation toward zero", got)
	}
}

func TestMulRatioSingleTruncation(t *testing.T) {
	// 1 * 4/10 must come out exact, not via two lossy divisions.
	got := amt(t, "1").MulRatio(amt(t, "4"), amt(t, "10"))
	if !got.Equal(amt(t, "0.4")) {
		t.Errorf("1 * 4/10 = %s, want 0.4", got)
	}
}

func TestZeroValueUsable(t *testing.T) {
	var a Amount
	if !a.IsZero() {
		t.Error("zero value should be zero")
	}

	if !a.Add(New(1)).Equal(New(1)) {
		t.Error("zero value should be usable in arithmetic")
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("123.000000000000000456")
	a := FromDecimal(d)
	if !a.ToDecimal().Equal(d) {
		t.Errorf("round trip lost precision: %s != %s", a.ToDecimal(), d)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	a := amt(t, "400.4")

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"400.4"` {
		t.Errorf("marshal: %s", data)
	}

	var b Amount
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Errorf("round trip: %s != %s", a, b)
	}
}

func TestMinCmp(t *testing.T) {
	a, b := amt(t, "2"), amt(t, "3")

	if !Min(a, b).Equal(a) {
		t.Error("Min(2, 3) != 2")
	}
	if !a.LessThan(b) || b.LessThan(a) {
		t.Error("Cmp ordering broken")
	}
}
