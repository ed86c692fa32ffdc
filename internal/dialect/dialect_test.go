package dialect

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		err  bool
	}{
		{"", Standard, false},
		{"CSharp", Standard, false},
		{"playscript", Extended, false},
		{" extended ", Extended, false},
		{"rust", Standard, true},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if (err != nil) != tc.err || got != tc.want {
			t.Fatalf("Parse(%q) = %v, %v", tc.in, got, err)
		}
	}
}

func TestForPath(t *testing.T) {
	cases := map[string]Kind{
		"src/Main.play":  Extended,
		"lib/Sprite.AS":  Extended,
		"lib/Program.cs": Standard,
		"noext":          Standard,
	}
	for path, want := range cases {
		if got := ForPath(path); got != want {
			t.Fatalf("ForPath(%q) = %v, want %v", path, got, want)
		}
	}
}
