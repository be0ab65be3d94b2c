package icy

import (
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultUserAgent identifies us as a mainstream player; some Shoutcast
	// servers refuse metadata to unknown clients.
	DefaultUserAgent = "VLC/2.2.4 LibVLC/2.2.4"

	// DefaultTimeout bounds connection establishment and response headers.
	// Body reads are never subject to a timeout: the server paces the stream
	// at the audio bitrate, so a large icy-metaint can legitimately take a
	// while to skip.
	DefaultTimeout = 10 * time.Second
)

// Config carries the request settings for Open. The zero value is usable;
// empty fields fall back to the defaults above.
type Config struct {
	UserAgent string        `yaml:"user-agent,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// Stream is an open connection to a metadata-capable stream, positioned at
// the start of the first audio chunk.
type Stream struct {
	// The name of the server
	Name string

	// What category the server falls under
	Genre string

	// The description of the stream
	Description string

	// Homepage of the server
	URL string

	// Bitrate of the server
	Bitrate int

	// Content type of the audio payload
	ContentType string

	// Response headers as received, for diagnostics
	Header http.Header

	// Amount of audio bytes before each metadata block
	metaint int

	// The underlying data stream
	rc io.ReadCloser
}

// Open connects to a remote stream and validates that it interleaves
// metadata. Playlist URLs (.pls, .m3u, .m3u8) are resolved to the stream URL
// they reference first; for a direct stream URL exactly one connection is
// opened.
func Open(url string, cfg Config) (*Stream, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	if isPlaylistURL(url) {
		resolved, err := resolvePlaylistURL(url, cfg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve playlist URL")
		}
		url = resolved
	}

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Add("accept", "*/*")
	req.Header.Add("user-agent", cfg.UserAgent)
	req.Header.Add("icy-metadata", "1")

	// Timeout for establishing the connection and receiving headers only.
	// The body arrives at the stream's own pace.
	dialer := &net.Dialer{Timeout: cfg.Timeout}
	transport := &http.Transport{
		Dial:                  dialer.Dial,
		ResponseHeaderTimeout: cfg.Timeout,
	}
	client := &http.Client{Transport: transport}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to stream")
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("unexpected HTTP status %q from stream", resp.Status)
	}

	rawInterval := strings.TrimSpace(resp.Header.Get("icy-metaint"))
	if rawInterval == "" {
		resp.Body.Close()
		return nil, ErrUnsupportedStream
	}
	metaint, err := strconv.Atoi(rawInterval)
	if err != nil || metaint < 0 {
		resp.Body.Close()
		return nil, errors.Wrapf(ErrUnsupportedStream, "cannot use icy-metaint %q", rawInterval)
	}

	// Descriptive only; a garbled bitrate is no reason to refuse the stream.
	bitrate, _ := strconv.Atoi(resp.Header.Get("icy-br"))

	s := &Stream{
		Name:        resp.Header.Get("icy-name"),
		Genre:       resp.Header.Get("icy-genre"),
		Description: resp.Header.Get("icy-description"),
		URL:         resp.Header.Get("icy-url"),
		Bitrate:     bitrate,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
		metaint:     metaint,
		rc:          resp.Body,
	}

	return s, nil
}

// MetadataInterval returns the number of audio bytes between metadata blocks.
func (s *Stream) MetadataInterval() int {
	return s.metaint
}

// ReadMetadata advances past one audio chunk and decodes the metadata block
// behind it. The audio bytes are discarded. A zero length byte yields
// ErrNoMetadata; any short read yields ErrMalformedMetadata.
func (s *Stream) ReadMetadata() (Fields, error) {
	if n, err := io.CopyN(io.Discard, s.rc, int64(s.metaint)); err != nil {
		return nil, errors.Wrapf(ErrMalformedMetadata, "stream ended after %d of %d audio bytes", n, s.metaint)
	}

	var lengthByte [1]byte
	if _, err := io.ReadFull(s.rc, lengthByte[:]); err != nil {
		return nil, errors.Wrap(ErrMalformedMetadata, "stream ended before the metadata length byte")
	}

	blockLen := int(lengthByte[0]) * 16
	if blockLen == 0 {
		return nil, ErrNoMetadata
	}

	block := make([]byte, blockLen)
	if n, err := io.ReadFull(s.rc, block); err != nil {
		return nil, errors.Wrapf(ErrMalformedMetadata, "stream ended after %d of %d metadata bytes", n, blockLen)
	}

	return parseBlock(block)
}

// Close closes the stream. The remainder of the audio is never consumed.
func (s *Stream) Close() error {
	return s.rc.Close()
}
