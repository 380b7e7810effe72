package chain

import (
	"testing"
)

func TestToBaseUnits_StableTokenDefaults(t *testing.T) {
	got, err := ToBaseUnits("150", 6)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.String() != "150000000" {
		t.Errorf("Expected 150000000, got %s", got.String())
	}
}

func TestToBaseUnits_NativeAssetDefaults(t *testing.T) {
	got, err := ToBaseUnits("1.5", 18)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.String() != "1500000000000000000" {
		t.Errorf("Expected 1.5e18, got %s", got.String())
	}
}

func TestToBaseUnits_FractionalStable(t *testing.T) {
	got, err := ToBaseUnits("0.000001", 6)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.String() != "1" {
		t.Errorf("Expected 1, got %s", got.String())
	}
}

func TestToBaseUnits_TooManyDecimalPlaces(t *testing.T) {
	if _, err := ToBaseUnits("0.0000001", 6); err == nil {
		t.Error("Expected error for sub-precision amount")
	}
}

func TestToBaseUnits_InvalidInput(t *testing.T) {
	cases := []string{"", "abc", "-5", "0"}
	for _, amount := range cases {
		if _, err := ToBaseUnits(amount, 6); err == nil {
			t.Errorf("Expected error for %q", amount)
		}
	}
}

func TestDefaultTokens_Decimals(t *testing.T) {
	tokens := DefaultTokens()

	eth, ok := tokens["ETH"]
	if !ok {
		t.Fatal("Expected ETH in default tokens")
	}
	if eth.Decimals != 18 || !eth.Native {
		t.Errorf("Expected native ETH with 18 decimals, got %+v", eth)
	}

	usdt, ok := tokens["USDT"]
	if !ok {
		t.Fatal("Expected USDT in default tokens")
	}
	if usdt.Decimals != 6 || usdt.Native {
		t.Errorf("Expected non-native USDT with 6 decimals, got %+v", usdt)
	}
}
