package valuetype

import (
	"testing"

	"github.com/riftcolumn/lineingest/coltype"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		tok  string
		want coltype.ColumnType
	}{
		{"3i", coltype.LONG},
		{"-12i", coltype.LONG},
		{"true", coltype.BOOLEAN},
		{"false", coltype.BOOLEAN},
		{"t", coltype.BOOLEAN},
		{"T", coltype.BOOLEAN},
		{"f", coltype.BOOLEAN},
		{"F", coltype.BOOLEAN},
		{`"hello"`, coltype.STRING},
		{`"`, coltype.Invalid},
		{`a"`, coltype.Invalid},
		{"0.5", coltype.DOUBLE},
		{"42", coltype.DOUBLE},
		{"-1.5e10", coltype.DOUBLE},
		{"2.5e", coltype.BOOLEAN},
	}

	for _, c := range cases {
		got := Classify(c.tok)
		if got != c.want {
			t.Errorf("Classify(%q) = %v, want %v", c.tok, got, c.want)
		}
	}
}

func TestIsTrue(t *testing.T) {
	for _, tc := range []struct {
		tok  string
		want bool
	}{
		{"true", true},
		{"T", true},
		{"false", false},
		{"F", false},
	} {
		if got := IsTrue(tc.tok); got != tc.want {
			t.Errorf("IsTrue(%q) = %v, want %v", tc.tok, got, tc.want)
		}
	}
}
