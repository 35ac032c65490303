package index

import (
	"reflect"
	"testing"
)

func TestTokenizeSplitsAndLowercases(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"Amazing Grace", []string{"amazing", "grace"}},
		{"Holy, Holy, Holy! Lord God Almighty", []string{"holy", "holy", "holy", "lord", "god", "almighty"}},
		{"What a Friend We Have in Jesus", []string{"what", "friend", "we", "have", "jesus"}},
		{"  ", nil},
		{"", nil},
		{"the and of", nil},
		{"O'er death's dark vale", []string{"o", "er", "death", "s", "dark", "vale"}},
	}
	for _, tc := range cases {
		got := Tokenize(tc.text)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Tokenize(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestTokenizeKeepsDigits(t *testing.T) {
	got := Tokenize("Psalm 23")
	want := []string{"psalm", "23"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
}
