package icy

import (
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Playlists are tiny; anything past this is not a playlist.
const maxPlaylistSize = 256 * 1024

// isPlaylistURL reports whether the URL path names a playlist file rather
// than a stream endpoint.
func isPlaylistURL(url string) bool {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	url = strings.ToLower(url)

	return strings.HasSuffix(url, ".pls") ||
		strings.HasSuffix(url, ".m3u") ||
		strings.HasSuffix(url, ".m3u8")
}

// resolvePlaylistURL fetches a playlist and returns the first stream URL it
// references.
func resolvePlaylistURL(url string, cfg Config) (string, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create playlist request")
	}
	req.Header.Add("accept", "*/*")
	req.Header.Add("user-agent", cfg.UserAgent)

	// Unlike the stream itself, a playlist download may carry a full-request
	// timeout.
	dialer := &net.Dialer{Timeout: cfg.Timeout}
	client := &http.Client{
		Transport: &http.Transport{Dial: dialer.Dial},
		Timeout:   cfg.Timeout,
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to fetch playlist")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("unexpected HTTP status %q fetching playlist", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistSize))
	if err != nil {
		return "", errors.Wrap(err, "failed to read playlist")
	}

	content := string(body)
	if strings.Contains(content, "[playlist]") || strings.Contains(content, "File1=") {
		return parsePLS(content)
	}

	return parseM3U(content)
}

// parsePLS returns the first FileN entry of a PLS playlist.
func parsePLS(content string) (string, error) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "File") {
			continue
		}
		if _, url, ok := strings.Cut(line, "="); ok {
			if url = strings.TrimSpace(url); url != "" {
				return url, nil
			}
		}
	}

	return "", errors.New("no stream URL found in PLS playlist")
}

// parseM3U returns the first non-comment URL line of an M3U playlist.
func parseM3U(content string) (string, error) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			return line, nil
		}
	}

	return "", errors.New("no stream URL found in M3U playlist")
}
