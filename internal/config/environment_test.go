package config

import "testing"

func TestMapEnvLookupTreatsEmptyAsUnset(t *testing.T) {
	lookup := MapEnvLookup(map[string]string{"A": "1", "B": ""})
	if v, ok := lookup("A"); !ok || v != "1" {
		t.Fatalf("expected A=1, got %q %v", v, ok)
	}
	if _, ok := lookup("B"); ok {
		t.Fatal("expected empty value to be unset")
	}
	if _, ok := lookup("C"); ok {
		t.Fatal("expected missing value to be unset")
	}
}
