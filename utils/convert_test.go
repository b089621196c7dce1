package utils

import "testing"

func TestToStringSlice(t *testing.T) {
	got := ToStringSlice([]any{"a", 1, "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("ToStringSlice([]any) = %v", got)
	}

	src := []string{"a", "b"}
	got = ToStringSlice(src)
	got[0] = "mutated"
	if src[0] != "a" {
		t.Fatal("ToStringSlice must copy, not alias")
	}

	if got := ToStringSlice(42); got != nil {
		t.Fatalf("ToStringSlice(42) = %v, want nil", got)
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		in   any
		want int64
	}{
		{int64(5), 5},
		{5, 5},
		{float64(5), 5},
		{"5", 0},
		{nil, 0},
	}
	for _, c := range cases {
		if got := ToInt64(c.in); got != c.want {
			t.Errorf("ToInt64(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSameStringSet(t *testing.T) {
	cases := []struct {
		a, b []string
		want bool
	}{
		{[]string{"x", "y"}, []string{"y", "x"}, true},
		{[]string{"x", "x", "y"}, []string{"y", "x"}, true},
		{[]string{"x"}, []string{"x", "y"}, false},
		{[]string{"x", "y"}, []string{"x", "z"}, false},
		{nil, nil, true},
		{nil, []string{"x"}, false},
	}
	for _, c := range cases {
		if got := SameStringSet(c.a, c.b); got != c.want {
			t.Errorf("SameStringSet(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
