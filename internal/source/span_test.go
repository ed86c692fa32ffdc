package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want Span
	}{
		{"extends both ends", Span{File: 1, Start: 5, End: 8}, Span{File: 1, Start: 2, End: 10}, Span{File: 1, Start: 2, End: 10}},
		{"inner span keeps outer", Span{File: 1, Start: 0, End: 20}, Span{File: 1, Start: 3, End: 4}, Span{File: 1, Start: 0, End: 20}},
		{"different files untouched", Span{File: 1, Start: 5, End: 8}, Span{File: 2, Start: 0, End: 100}, Span{File: 1, Start: 5, End: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.want {
				t.Fatalf("Cover() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpanLen(t *testing.T) {
	if got := (Span{Start: 4, End: 9}).Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5", got)
	}
	if !(Span{Start: 3, End: 3}).Empty() {
		t.Fatalf("zero-width span must be empty")
	}
}
