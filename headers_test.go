package h11

import "testing"

func TestHeadersGet(t *testing.T) {
	hs := NewHeaders([2]string{"Host", "example.com"}, [2]string{"Connection", "close"})

	v, ok := hs.Get("host")
	if !ok || v != "example.com" {
		t.Fatalf("Get(host) = %q, %v; want example.com, true", v, ok)
	}

	if _, ok := hs.Get("X-Missing"); ok {
		t.Fatalf("Get(X-Missing) found a value, want none")
	}
}

func TestHeadersGetLastPicksMostRecent(t *testing.T) {
	hs := NewHeaders(
		[2]string{"Transfer-Encoding", "gzip"},
		[2]string{"Transfer-Encoding", "chunked"},
	)

	v, ok := hs.GetLast("transfer-encoding")
	if !ok || string(v) != "chunked" {
		t.Fatalf("GetLast = %q, %v; want chunked, true", v, ok)
	}
}

func TestHeadersValuesPreservesOrder(t *testing.T) {
	hs := NewHeaders(
		[2]string{"Set-Cookie", "a=1"},
		[2]string{"Host", "example.com"},
		[2]string{"Set-Cookie", "b=2"},
	)

	vals := hs.Values("set-cookie", nil)
	if len(vals) != 2 || string(vals[0]) != "a=1" || string(vals[1]) != "b=2" {
		t.Fatalf("Values = %q; want [a=1 b=2] in order", vals)
	}
}

func TestHeadersHas(t *testing.T) {
	hs := NewHeaders([2]string{"Upgrade", "websocket"})
	if !hs.Has("UPGRADE") {
		t.Fatalf("Has(UPGRADE) = false, want true")
	}
	if hs.Has("Downgrade") {
		t.Fatalf("Has(Downgrade) = true, want false")
	}
}

func TestTrimOWS(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"  a  ", "a"},
		{"\t a \t", "a"},
		{"no-space", "no-space"},
	}
	for _, c := range cases {
		got := string(trimOWS([]byte(c.in)))
		if got != c.want {
			t.Errorf("trimOWS(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
