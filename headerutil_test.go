package h11

import "testing"

func TestCanKeepAlive(t *testing.T) {
	cases := []struct {
		name    string
		version Version
		hs      Headers
		want    bool
	}{
		{"http11 no connection header", HTTP11, NewHeaders([2]string{"Host", "example.com"}), true},
		{"http11 connection close", HTTP11, NewHeaders([2]string{"Connection", "close"}), false},
		{"http11 connection close mixed case", HTTP11, NewHeaders([2]string{"Connection", "Keep-Alive, Close"}), false},
		{"http10 always false", HTTP10, NewHeaders(), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CanKeepAlive(c.version, &c.hs); got != c.want {
				t.Errorf("CanKeepAlive() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestIsChunked(t *testing.T) {
	cases := []struct {
		name string
		hs   Headers
		want bool
	}{
		{"absent", NewHeaders(), false},
		{"chunked", NewHeaders([2]string{"Transfer-Encoding", "chunked"}), true},
		{"gzip then chunked", NewHeaders([2]string{"Transfer-Encoding", "gzip, chunked"}), true},
		{"chunked then gzip", NewHeaders([2]string{"Transfer-Encoding", "chunked, gzip"}), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsChunked(&c.hs); got != c.want {
				t.Errorf("IsChunked() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestContentLengthOf(t *testing.T) {
	cases := []struct {
		name     string
		hs       Headers
		wantN    int
		wantOK   bool
	}{
		{"absent", NewHeaders(), 0, false},
		{"valid", NewHeaders([2]string{"Content-Length", "100"}), 100, true},
		{"malformed", NewHeaders([2]string{"Content-Length", "10x"}), 0, false},
		{"zero", NewHeaders([2]string{"Content-Length", "0"}), 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, ok := ContentLengthOf(&c.hs)
			if n != c.wantN || ok != c.wantOK {
				t.Errorf("ContentLengthOf() = %d, %v; want %d, %v", n, ok, c.wantN, c.wantOK)
			}
		})
	}
}

func TestWantsContinue(t *testing.T) {
	hs := NewHeaders([2]string{"Expect", "100-continue"})
	if !wantsContinue(&hs) {
		t.Fatalf("wantsContinue() = false, want true")
	}
	empty := NewHeaders()
	if wantsContinue(&empty) {
		t.Fatalf("wantsContinue() on empty headers = true, want false")
	}
}
