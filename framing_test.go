package h11

import "testing"

func TestRequestFramingMethod(t *testing.T) {
	cases := []struct {
		name string
		hs   Headers
		want FramingMethod
	}{
		{"no headers", NewHeaders(), contentLength(0)},
		{"content-length", NewHeaders([2]string{"Content-Length", "42"}), contentLength(42)},
		{"chunked", NewHeaders([2]string{"Transfer-Encoding", "chunked"}), chunkedFraming},
		{"chunked wins over content-length", NewHeaders(
			[2]string{"Content-Length", "42"},
			[2]string{"Transfer-Encoding", "chunked"},
		), chunkedFraming},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := requestFramingMethod(&c.hs); got != c.want {
				t.Errorf("requestFramingMethod() = %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestResponseFramingMethod(t *testing.T) {
	cases := []struct {
		name   string
		status int
		method string
		hs     Headers
		want   FramingMethod
	}{
		{"204 forces zero", 204, "GET", NewHeaders([2]string{"Content-Length", "10"}), contentLength(0)},
		{"304 forces zero", 304, "GET", NewHeaders([2]string{"Content-Length", "10"}), contentLength(0)},
		{"HEAD forces zero", 200, "HEAD", NewHeaders([2]string{"Content-Length", "10"}), contentLength(0)},
		{"CONNECT 2xx forces zero", 200, "CONNECT", NewHeaders([2]string{"Content-Length", "10"}), contentLength(0)},
		{"CONNECT non-2xx not forced", 400, "CONNECT", NewHeaders([2]string{"Content-Length", "10"}), contentLength(10)},
		{"chunked wins", 200, "GET", NewHeaders(
			[2]string{"Content-Length", "10"},
			[2]string{"Transfer-Encoding", "chunked"},
		), chunkedFraming},
		{"content-length fallback", 200, "GET", NewHeaders([2]string{"Content-Length", "10"}), contentLength(10)},
		{"http10 fallback", 200, "GET", NewHeaders(), http10Framing},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := responseFramingMethod(c.status, []byte(c.method), &c.hs)
			if got != c.want {
				t.Errorf("responseFramingMethod() = %+v, want %+v", got, c.want)
			}
		})
	}
}
