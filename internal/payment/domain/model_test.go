package domain

import "testing"

func TestParseMethod(t *testing.T) {
	cases := map[string]struct {
		want Method
		ok   bool
	}{
		"Cash":      {want: MethodCash, ok: true},
		" card ":    {want: MethodCard, ok: true},
		"TRANSFER":  {want: MethodTransfer, ok: true},
		"":          {ok: false},
		"cheque":    {ok: false},
		"Cash,Card": {ok: false},
	}
	for raw, tc := range cases {
		got, ok := ParseMethod(raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseMethod(%q) = %q, %v; want %q, %v", raw, got, ok, tc.want, tc.ok)
		}
	}
}
