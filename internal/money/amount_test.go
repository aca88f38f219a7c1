package money

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    string
	}{
		{name: "integer", input: "5000", want: "5000"},
		{name: "fractional", input: "1250.50", want: "1250.5"},
		{name: "zero", input: "0", want: "0"},
		{name: "negative parses", input: "-10", want: "-10"},
		{name: "garbage", input: "ten", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q): expected error, got %v", tt.input, a)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if a.String() != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, a.String(), tt.want)
			}
		})
	}
}

func TestAddIsExact(t *testing.T) {
	// 0.1 added ten times must be exactly 1, which float64 cannot do.
	sum := Zero()
	tenth := MustParse("0.1")
	for i := 0; i < 10; i++ {
		sum = sum.Add(tenth)
	}
	if !sum.Equal(MustParse("1")) {
		t.Errorf("sum of ten 0.1 = %s, want 1", sum)
	}
}

func TestPositivity(t *testing.T) {
	if !MustParse("0.01").IsPositive() {
		t.Error("0.01 should be positive")
	}
	if MustParse("0").IsPositive() {
		t.Error("0 should not be positive")
	}
	if MustParse("-5").IsPositive() {
		t.Error("-5 should not be positive")
	}
	if !Zero().IsZero() {
		t.Error("zero value should be zero")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	a := MustParse("12345.67")
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"12345.67"` {
		t.Errorf("Marshal = %s, want \"12345.67\"", data)
	}

	var back Amount
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Equal(a) {
		t.Errorf("round trip = %s, want %s", back, a)
	}

	// Bare numbers are accepted too (older clients).
	var fromNumber Amount
	if err := json.Unmarshal([]byte("5000"), &fromNumber); err != nil {
		t.Fatalf("Unmarshal number failed: %v", err)
	}
	if !fromNumber.Equal(MustParse("5000")) {
		t.Errorf("number unmarshal = %s, want 5000", fromNumber)
	}
}

func TestScan(t *testing.T) {
	var a Amount
	if err := a.Scan("99.9"); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !a.Equal(MustParse("99.9")) {
		t.Errorf("Scan = %s, want 99.9", a)
	}

	if err := a.Scan(3.14); err == nil {
		t.Error("expected error scanning float64")
	}
}
