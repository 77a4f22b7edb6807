package selector

import "testing"

type fakeElement struct {
	attrs   map[string]string
	classes []string
	tag     string
}

func (f fakeElement) Attr(name string) string { return f.attrs[name] }
func (f fakeElement) Classes() []string       { return f.classes }
func (f fakeElement) TagName() string         { return f.tag }

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		el   fakeElement
		want string
	}{
		{
			name: "id wins over everything",
			el:   fakeElement{attrs: map[string]string{"id": "submit-btn", "aria-label": "Submit"}, classes: []string{"btn"}, tag: "BUTTON"},
			want: "#submit-btn",
		},
		{
			name: "aria-label when no id",
			el:   fakeElement{attrs: map[string]string{"aria-label": "Play video"}, classes: []string{"btn"}, tag: "BUTTON"},
			want: `[aria-label="Play video"]`,
		},
		{
			name: "quotes in aria-label are escaped",
			el:   fakeElement{attrs: map[string]string{"aria-label": `Say "hi"`}, tag: "BUTTON"},
			want: `[aria-label="Say \"hi\""]`,
		},
		{
			name: "first short digit-free class",
			el:   fakeElement{classes: []string{"css-1x2y3z", "a-very-long-generated-class-name", "play-button", "other"}, tag: "DIV"},
			want: ".play-button",
		},
		{
			name: "class of exactly 25 characters is skipped",
			el:   fakeElement{classes: []string{"abcdefghijklmnopqrstuvwxy"}, tag: "SPAN"},
			want: "span",
		},
		{
			name: "class of 24 characters is used",
			el:   fakeElement{classes: []string{"abcdefghijklmnopqrstuvwx"}, tag: "SPAN"},
			want: ".abcdefghijklmnopqrstuvwx",
		},
		{
			name: "tag fallback is lowercased",
			el:   fakeElement{classes: []string{"x1"}, tag: "A"},
			want: "a",
		},
		{
			name: "bare element",
			el:   fakeElement{tag: "BUTTON"},
			want: "button",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.el); got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	el := fakeElement{classes: []string{"nav", "item"}, tag: "LI"}
	first := Generate(el)
	for i := 0; i < 10; i++ {
		if got := Generate(el); got != first {
			t.Fatalf("Generate changed between calls: %q then %q", first, got)
		}
	}
}
