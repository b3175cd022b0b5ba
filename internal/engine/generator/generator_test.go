package generator

import (
	"encoding/json"
	"testing"

	"github.com/hctx/analytics-platform/pkg/apperror"
)

func decode(t *testing.T, raw json.RawMessage) []float64 {
	t.Helper()
	var out []float64
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to decode generated sequence: %v", err)
	}
	return out
}

func TestGenerateUniform_Determinism(t *testing.T) {
	f, ok := Lookup("generate_uniform")
	if !ok {
		t.Fatal("generate_uniform not registered")
	}
	params := map[string]string{"count": "100", "seed": "42", "min": "0", "max": "10"}

	raw1, err := f(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw2, err := f(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(raw1) != string(raw2) {
		t.Fatal("identical (distribution,count,seed,params) must produce identical sequences")
	}

	data := decode(t, raw1)
	if len(data) != 100 {
		t.Errorf("len(data) = %d, want 100", len(data))
	}
	for _, v := range data {
		if v < 0 || v >= 10 {
			t.Fatalf("value %v out of [0,10)", v)
		}
	}
}

func TestGenerateUniform_RequiresMinLessThanMax(t *testing.T) {
	f, _ := Lookup("generate_uniform")
	_, err := f(map[string]string{"count": "10", "seed": "1", "min": "5", "max": "5"})
	if err == nil || err.Code != apperror.CodeValidation {
		t.Fatal("expected validation error when min >= max")
	}
}

func TestGenerateUniform_CountBounds(t *testing.T) {
	f, _ := Lookup("generate_uniform")

	tests := []struct {
		name  string
		count string
	}{
		{"zero", "0"},
		{"too large", "1000001"},
		{"not a number", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f(map[string]string{"count": tt.count, "seed": "1", "min": "0", "max": "1"})
			if err == nil || err.Code != apperror.CodeValidation {
				t.Errorf("expected validation error for count=%q", tt.count)
			}
		})
	}
}

func TestGenerateNormal_Determinism(t *testing.T) {
	f, ok := Lookup("generate_normal")
	if !ok {
		t.Fatal("generate_normal not registered")
	}
	params := map[string]string{"count": "500", "seed": "7", "mean": "10", "std_dev": "2"}

	raw1, err := f(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw2, _ := f(params)
	if string(raw1) != string(raw2) {
		t.Fatal("identical inputs must produce identical sequences")
	}

	data := decode(t, raw1)
	if len(data) != 500 {
		t.Errorf("len(data) = %d, want 500", len(data))
	}
}

func TestGenerateNormal_RequiresPositiveStdDev(t *testing.T) {
	f, _ := Lookup("generate_normal")
	_, err := f(map[string]string{"count": "10", "seed": "1", "mean": "0", "std_dev": "0"})
	if err == nil || err.Code != apperror.CodeValidation {
		t.Fatal("expected validation error for std_dev <= 0")
	}
}

func TestGenerateExponential_Determinism(t *testing.T) {
	f, ok := Lookup("generate_exponential")
	if !ok {
		t.Fatal("generate_exponential not registered")
	}
	params := map[string]string{"count": "300", "seed": "99", "lambda": "1.5"}

	raw1, err := f(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw2, _ := f(params)
	if string(raw1) != string(raw2) {
		t.Fatal("identical inputs must produce identical sequences")
	}

	data := decode(t, raw1)
	for _, v := range data {
		if v < 0 {
			t.Fatalf("exponential sample %v must be non-negative", v)
		}
	}
}

func TestGenerateExponential_RequiresPositiveLambda(t *testing.T) {
	f, _ := Lookup("generate_exponential")
	_, err := f(map[string]string{"count": "10", "seed": "1", "lambda": "-1"})
	if err == nil || err.Code != apperror.CodeValidation {
		t.Fatal("expected validation error for lambda <= 0")
	}
}

func TestDifferentSeeds_ProduceDifferentSequences(t *testing.T) {
	f, _ := Lookup("generate_uniform")
	raw1, _ := f(map[string]string{"count": "50", "seed": "1", "min": "0", "max": "1"})
	raw2, _ := f(map[string]string{"count": "50", "seed": "2", "min": "0", "max": "1"})
	if string(raw1) == string(raw2) {
		t.Fatal("different seeds should (overwhelmingly likely) produce different sequences")
	}
}
