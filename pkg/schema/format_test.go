package schema

import "testing"

func TestMoney(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{45000.0, "45,000만원"},
		{"45,000", "45,000만원"},
		{1234567.0, "1,234,567만원"},
		{500.0, "500만원"},
		{nil, "-"},
		{"", "-"},
		{"abc", "-"},
	}
	for _, c := range cases {
		if got := Money(c.in); got != c.want {
			t.Errorf("Money(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAreaAndPyeong(t *testing.T) {
	if got := AreaSqm(84.497); got != "84.5㎡" {
		t.Errorf("AreaSqm = %q", got)
	}
	if got := AreaSqm(84.0); got != "84㎡" {
		t.Errorf("AreaSqm whole = %q", got)
	}
	if got := Pyeong("25.56"); got != "25.56평" {
		t.Errorf("Pyeong = %q", got)
	}
	if got := Pyeong(nil); got != "-" {
		t.Errorf("Pyeong nil = %q", got)
	}
	if got := Fixed2(84.5); got != "84.50" {
		t.Errorf("Fixed2 = %q", got)
	}
}

func TestElevatorText(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"Y", "있음 (O)"},
		{"O", "있음 (O)"},
		{true, "있음 (O)"},
		{"N", "없음 (X)"},
		{"X", "없음 (X)"},
		{false, "없음 (X)"},
		{nil, "-"},
		{"unknown", "-"},
	}
	for _, c := range cases {
		if got := ElevatorText(c.in); got != c.want {
			t.Errorf("ElevatorText(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestYesNo(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"Y", "Y"},
		{"o", "Y"},
		{true, "Y"},
		{1, "Y"},
		{"X", "N"},
		{"false", "N"},
		{0, "N"},
		{nil, ""},
		{"보류", "보류"},
	}
	for _, c := range cases {
		if got := YesNo(c.in); got != c.want {
			t.Errorf("YesNo(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSafeValue(t *testing.T) {
	if got := SafeValue(nil); got != "-" {
		t.Errorf("nil = %q", got)
	}
	if got := SafeValue(""); got != "-" {
		t.Errorf("empty = %q", got)
	}
	if got := SafeValue(3.0); got != "3" {
		t.Errorf("number = %q", got)
	}
	if got := SafeValue("강남구"); got != "강남구" {
		t.Errorf("string = %q", got)
	}
}
