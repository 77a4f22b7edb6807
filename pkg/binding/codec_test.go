package binding

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "empty input", raw: "", want: 0},
		{name: "null", raw: "null", want: 0},
		{name: "empty array", raw: "[]", want: 0},
		{name: "null domain is global", raw: `[{"id":"#a","key":"K","domain":null}]`, want: 1},
		{name: "unknown fields are tolerated", raw: `[{"id":"#a","key":"K","label":"x"}]`, want: 1},
		{name: "object instead of array", raw: `{"id":"#a"}`, wantErr: true},
		{name: "numeric key", raw: `[{"id":"#a","key":5}]`, wantErr: true},
		{name: "malformed json", raw: `[{"id":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := Decode([]byte(tt.raw))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidList) {
					t.Fatalf("expected ErrInvalidList, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if list == nil {
				t.Fatal("expected non-nil list")
			}
			if len(list) != tt.want {
				t.Errorf("expected %d bindings, got %d", tt.want, len(list))
			}
		})
	}
}

func TestDecodeNullDomain(t *testing.T) {
	list, err := Decode([]byte(`[{"id":"#a","key":"K","domain":null}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !list[0].IsGlobal() {
		t.Errorf("expected null domain to decode as global, got %q", list[0].Domain)
	}
}

func TestEncodeRoundTripsThroughDecode(t *testing.T) {
	in := List{
		{Selector: "#submit-btn", Key: "Ctrl+Enter", Domain: "example.com"},
		{Selector: ".play", Key: "K"},
	}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("round trip mismatch: %+v", out)
	}

	empty, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode(nil) failed: %v", err)
	}
	if string(empty) != "[]" {
		t.Errorf("expected [] for nil list, got %s", empty)
	}
}
