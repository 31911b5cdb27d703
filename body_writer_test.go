package h11

import "testing"

func TestBodyWriterContentLength(t *testing.T) {
	w := NewBodyWriter(contentLength(5))
	dst, err := w.WriteData(nil, []byte("hel"))
	if err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	dst, err = w.WriteData(dst, []byte("lo"))
	if err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	if string(dst) != "hello" {
		t.Fatalf("dst = %q, want hello", dst)
	}
	dst, err = w.WriteEndOfMessage(dst, nil)
	if err != nil {
		t.Fatalf("WriteEndOfMessage: %v", err)
	}
	if string(dst) != "hello" {
		t.Fatalf("dst after EndOfMessage = %q, want unchanged", dst)
	}
}

func TestBodyWriterContentLengthOverflow(t *testing.T) {
	w := NewBodyWriter(contentLength(2))
	_, err := w.WriteData(nil, []byte("abc"))
	if err == nil || err.Kind != TooMuchData {
		t.Fatalf("WriteData overflow: err = %v, want TooMuchData", err)
	}
}

func TestBodyWriterContentLengthShortEndOfMessage(t *testing.T) {
	w := NewBodyWriter(contentLength(5))
	dst, err := w.WriteData(nil, []byte("hi"))
	if err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	_, err = w.WriteEndOfMessage(dst, nil)
	if err == nil || err.Kind != TooMuchData {
		t.Fatalf("WriteEndOfMessage before Content-Length reached: err = %v, want TooMuchData", err)
	}
}

func TestBodyWriterChunked(t *testing.T) {
	w := NewBodyWriter(chunkedFraming)
	dst, err := w.WriteData(nil, []byte("Wiki"))
	if err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	if string(dst) != "4\r\nWiki\r\n" {
		t.Fatalf("dst = %q, want 4\\r\\nWiki\\r\\n", dst)
	}
	dst, err = w.WriteEndOfMessage(dst, nil)
	if err != nil {
		t.Fatalf("WriteEndOfMessage: %v", err)
	}
	if string(dst) != "4\r\nWiki\r\n0\r\n\r\n" {
		t.Fatalf("dst = %q", dst)
	}
}

func TestBodyWriterChunkedEmptyDataIsNoop(t *testing.T) {
	w := NewBodyWriter(chunkedFraming)
	dst, err := w.WriteData(nil, nil)
	if err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	if len(dst) != 0 {
		t.Fatalf("dst = %q, want empty", dst)
	}
}

func TestBodyWriterChunkedWithTrailers(t *testing.T) {
	w := NewBodyWriter(chunkedFraming)
	trailers := NewHeaders([2]string{"X-Checksum", "abc123"})
	dst, err := w.WriteEndOfMessage(nil, &trailers)
	if err != nil {
		t.Fatalf("WriteEndOfMessage: %v", err)
	}
	if string(dst) != "0\r\nX-Checksum: abc123\r\n\r\n" {
		t.Fatalf("dst = %q", dst)
	}
}

func TestBodyWriterHTTP10(t *testing.T) {
	w := NewBodyWriter(http10Framing)
	dst, err := w.WriteData(nil, []byte("abc"))
	if err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	if string(dst) != "abc" {
		t.Fatalf("dst = %q, want abc", dst)
	}
	dst, err = w.WriteEndOfMessage(dst, nil)
	if err != nil || string(dst) != "abc" {
		t.Fatalf("WriteEndOfMessage: dst=%q err=%v", dst, err)
	}
}
