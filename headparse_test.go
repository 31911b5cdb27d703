package h11

import "testing"

func TestParseReqHeadBasic(t *testing.T) {
	buf := []byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\nConnection: close\r\n\r\n")
	head, n, err, needMore := ParseReqHead(buf)
	if err != nil || needMore {
		t.Fatalf("ParseReqHead: err=%v needMore=%v", err, needMore)
	}
	if n != len(buf) {
		t.Fatalf("n = %d, want %d", n, len(buf))
	}
	if string(head.Method) != "GET" || string(head.URI) != "/index.html" || head.Version != HTTP11 {
		t.Fatalf("head = %+v", head)
	}
	v, ok := head.Headers.Get("host")
	if !ok || v != "example.com" {
		t.Fatalf("Host header = %q, %v", v, ok)
	}
}

func TestParseReqHeadNeedsMore(t *testing.T) {
	buf := []byte("GET / HTTP/1.1\r\nHost: example")
	_, _, err, needMore := ParseReqHead(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !needMore {
		t.Fatalf("needMore = false, want true for incomplete head")
	}
}

func TestParseReqHeadRejectsExtraWhitespace(t *testing.T) {
	buf := []byte("GET  /index.html HTTP/1.1\r\n\r\n")
	_, _, err, _ := ParseReqHead(buf)
	if err == nil {
		t.Fatalf("expected MalformedHead for double space, got nil")
	}
	if err.Kind != MalformedHead {
		t.Fatalf("err.Kind = %v, want MalformedHead", err.Kind)
	}
}

func TestParseReqHeadRejectsObsFold(t *testing.T) {
	buf := []byte("GET / HTTP/1.1\r\nX-Long: first\r\n second\r\n\r\n")
	_, _, err, _ := ParseReqHead(buf)
	if err == nil || err.Kind != MalformedHead {
		t.Fatalf("expected MalformedHead for obs-fold, got %v", err)
	}
}

func TestParseReqHeadRejectsBadMethod(t *testing.T) {
	buf := []byte("GE@T / HTTP/1.1\r\n\r\n")
	_, _, err, _ := ParseReqHead(buf)
	if err == nil || err.Kind != MalformedHead {
		t.Fatalf("expected MalformedHead for invalid method token, got %v", err)
	}
}

func TestParseRespHeadBasic(t *testing.T) {
	buf := []byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")
	head, n, err, needMore := ParseRespHead(buf)
	if err != nil || needMore {
		t.Fatalf("ParseRespHead: err=%v needMore=%v", err, needMore)
	}
	if n != len(buf) {
		t.Fatalf("n = %d, want %d", n, len(buf))
	}
	if head.StatusCode != 200 || head.Version != HTTP11 {
		t.Fatalf("head = %+v", head)
	}
}

func TestParseRespHeadRejectsShortStatusCode(t *testing.T) {
	buf := []byte("HTTP/1.1 20 OK\r\n\r\n")
	_, _, err, _ := ParseRespHead(buf)
	if err == nil || err.Kind != MalformedHead {
		t.Fatalf("expected MalformedHead for 2-digit status code, got %v", err)
	}
}

func TestParseRespHeadRejectsUnknownVersion(t *testing.T) {
	buf := []byte("HTTP/2.0 200 OK\r\n\r\n")
	_, _, err, _ := ParseRespHead(buf)
	if err == nil || err.Kind != MalformedHead {
		t.Fatalf("expected MalformedHead for unsupported version, got %v", err)
	}
}

func TestParseHeaderBlockDuplicateNames(t *testing.T) {
	hs, n, err, needMore := parseHeaderBlock([]byte("A: 1\r\nA: 2\r\n\r\n"))
	if err != nil || needMore {
		t.Fatalf("parseHeaderBlock: err=%v needMore=%v", err, needMore)
	}
	if n != len("A: 1\r\nA: 2\r\n\r\n") {
		t.Fatalf("n = %d", n)
	}
	vals := hs.Values("a", nil)
	if len(vals) != 2 || string(vals[0]) != "1" || string(vals[1]) != "2" {
		t.Fatalf("Values = %q", vals)
	}
}

func TestParseHeaderBlockMissingColon(t *testing.T) {
	_, _, err, _ := parseHeaderBlock([]byte("NoColon\r\n\r\n"))
	if err == nil || err.Kind != MalformedHead {
		t.Fatalf("expected MalformedHead for missing colon, got %v", err)
	}
}
