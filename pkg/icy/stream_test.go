package icy

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// metaBlock encodes payload as a length byte plus NUL-padded 16-byte units.
func metaBlock(payload string) []byte {
	units := (len(payload) + 15) / 16
	block := make([]byte, 1+units*16)
	block[0] = byte(units)
	copy(block[1:], payload)
	return block
}

// icyBody builds one stream cycle: interval bytes of fake audio followed by
// a metadata block.
func icyBody(interval int, block []byte) []byte {
	body := bytes.Repeat([]byte{0xAA}, interval)
	return append(body, block...)
}

func serveStream(t *testing.T, metaint string, body []byte) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Icy-Metadata"); got != "1" {
			t.Errorf("expected icy-metadata request header, got %q", got)
		}
		if metaint != "" {
			w.Header().Set("icy-metaint", metaint)
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestOpen_MissingMetaint(t *testing.T) {
	srv := serveStream(t, "", nil)

	_, err := Open(srv.URL, Config{})
	if !errors.Is(err, ErrUnsupportedStream) {
		t.Fatalf("expected ErrUnsupportedStream, got %v", err)
	}
}

func TestOpen_BadMetaint(t *testing.T) {
	for _, metaint := range []string{"abc", "-1", "1.5"} {
		srv := serveStream(t, metaint, nil)

		if _, err := Open(srv.URL, Config{}); !errors.Is(err, ErrUnsupportedStream) {
			t.Errorf("metaint %q: expected ErrUnsupportedStream, got %v", metaint, err)
		}
	}
}

func TestOpen_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := Open(srv.URL, Config{})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if errors.Is(err, ErrUnsupportedStream) {
		t.Errorf("HTTP failure must not classify as unsupported stream: %v", err)
	}
}

func TestOpen_CapturesDescriptors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("icy-metaint", "8192")
		w.Header().Set("icy-name", "Groove Salad")
		w.Header().Set("icy-genre", "Ambient")
		w.Header().Set("icy-br", "256")
		w.Header().Set("Content-Type", "audio/mpeg")
	}))
	t.Cleanup(srv.Close)

	stream, err := Open(srv.URL, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	if stream.Name != "Groove Salad" {
		t.Errorf("expected icy-name, got %q", stream.Name)
	}
	if stream.Genre != "Ambient" {
		t.Errorf("expected icy-genre, got %q", stream.Genre)
	}
	if stream.Bitrate != 256 {
		t.Errorf("expected bitrate 256, got %d", stream.Bitrate)
	}
	if stream.ContentType != "audio/mpeg" {
		t.Errorf("expected content type, got %q", stream.ContentType)
	}
	if stream.MetadataInterval() != 8192 {
		t.Errorf("expected metaint 8192, got %d", stream.MetadataInterval())
	}
}

func TestReadMetadata_RoundTrip(t *testing.T) {
	payload := "StreamTitle='Test Song';StreamUrl='http://example.com';"
	srv := serveStream(t, "64", icyBody(64, metaBlock(payload)))

	stream, err := Open(srv.URL, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	fields, err := stream.ReadMetadata()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Fields{
		{Key: "StreamTitle", Value: "Test Song"},
		{Key: "StreamUrl", Value: "http://example.com"},
	}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d: %+v", len(want), len(fields), fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("field %d: expected %+v, got %+v", i, want[i], fields[i])
		}
	}
}

func TestReadMetadata_IntervalZero(t *testing.T) {
	block := metaBlock("StreamTitle='Test Song';")
	if len(block) != 33 || block[0] != 2 {
		t.Fatalf("bad fixture: length byte %d, %d bytes", block[0], len(block))
	}
	srv := serveStream(t, "0", block)

	stream, err := Open(srv.URL, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	fields, err := stream.ReadMetadata()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %+v", fields)
	}
	if v, _ := fields.Get("StreamTitle"); v != "Test Song" {
		t.Errorf("expected StreamTitle, got %q", v)
	}
}

func TestReadMetadata_EmptySlot(t *testing.T) {
	srv := serveStream(t, "16", icyBody(16, []byte{0x00}))

	stream, err := Open(srv.URL, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	if _, err := stream.ReadMetadata(); !errors.Is(err, ErrNoMetadata) {
		t.Fatalf("expected ErrNoMetadata, got %v", err)
	}
}

func TestReadMetadata_TruncatedAudio(t *testing.T) {
	srv := serveStream(t, "64", bytes.Repeat([]byte{0xAA}, 10))

	stream, err := Open(srv.URL, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	if _, err := stream.ReadMetadata(); !errors.Is(err, ErrMalformedMetadata) {
		t.Fatalf("expected ErrMalformedMetadata, got %v", err)
	}
}

func TestReadMetadata_MissingLengthByte(t *testing.T) {
	srv := serveStream(t, "16", bytes.Repeat([]byte{0xAA}, 16))

	stream, err := Open(srv.URL, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	if _, err := stream.ReadMetadata(); !errors.Is(err, ErrMalformedMetadata) {
		t.Fatalf("expected ErrMalformedMetadata, got %v", err)
	}
}

func TestReadMetadata_TruncatedBlock(t *testing.T) {
	// Length byte promises 32 bytes, body delivers 5.
	body := icyBody(16, append([]byte{0x02}, []byte("Strea")...))
	srv := serveStream(t, "16", body)

	stream, err := Open(srv.URL, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	if _, err := stream.ReadMetadata(); !errors.Is(err, ErrMalformedMetadata) {
		t.Fatalf("expected ErrMalformedMetadata, got %v", err)
	}
}

func TestReadMetadata_ConsecutiveCycles(t *testing.T) {
	body := icyBody(32, metaBlock("StreamTitle='First';"))
	body = append(body, icyBody(32, metaBlock("StreamTitle='Second';"))...)
	srv := serveStream(t, "32", body)

	stream, err := Open(srv.URL, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	for _, want := range []string{"First", "Second"} {
		fields, err := stream.ReadMetadata()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v, _ := fields.Get("StreamTitle"); v != want {
			t.Errorf("expected %q, got %q", want, v)
		}
	}
}
