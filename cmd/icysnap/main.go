package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/common/version"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/zachfi/icysnap/pkg/icy"
	"github.com/zachfi/icysnap/pkg/render"
)

const appName = "icysnap"

// Version is set via build flag -ldflags -X main.Version
var (
	Version  string
	Branch   string
	Revision string
)

// One exit code per extraction failure class, so callers can script against
// the outcome without parsing stderr.
const (
	exitConnection  = 1
	exitUnsupported = 2
	exitNoMetadata  = 3
	exitMalformed   = 4
)

func init() {
	version.Version = Version
	version.Branch = Branch
	version.Revision = Revision
}

var (
	app = kingpin.New(appName, "Print one metadata snapshot from an Icecast/Shoutcast stream.")

	streamURL = app.Arg("url", "Stream (or .pls/.m3u playlist) URL.").Required().String()
	format    = app.Arg("format", "Output format.").Required().Enum(render.Names()...)

	withTimestamp = app.Flag("with-timestamp", "Include a _timestamp field holding the local time of output.").Short('t').Bool()
	selectFields  = app.Flag("select-fields", "Restrict output to the named field; repeatable, order preserving.").Short('s').PlaceHolder("FIELD").Strings()
	timeout       = app.Flag("timeout", "Connect and response header timeout.").Default("10s").Duration()
	userAgent     = app.Flag("user-agent", "User-Agent presented to the server.").Default(icy.DefaultUserAgent).String()
	verbose       = app.Flag("verbose", "Log at debug level.").Short('v').Bool()
)

func main() {
	app.Version(version.Print(appName))
	app.HelpFlag.Short('h')
	kingpin.MustParse(app.Parse(os.Args[1:]))

	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	if *verbose {
		level.Set(slog.LevelDebug)
	}

	// stdout carries the rendered document, so all logging goes to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger); err != nil {
		logger.Error("extraction failed", "url", *streamURL, "err", err)
		os.Exit(exitCode(err))
	}
}

func run(logger *slog.Logger) error {
	renderer, err := render.New(*format)
	if err != nil {
		return err
	}

	stream, err := icy.Open(*streamURL, icy.Config{
		UserAgent: *userAgent,
		Timeout:   *timeout,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	for k, v := range stream.Header {
		logger.Debug("HTTP header", "name", k, "value", v[0])
	}
	logger.Debug("stream opened",
		"name", stream.Name,
		"genre", stream.Genre,
		"bitrate", stream.Bitrate,
		"metaint", stream.MetadataInterval(),
	)

	fields, err := stream.ReadMetadata()
	if err != nil {
		return err
	}

	out := selectOutput(fields, *selectFields, *withTimestamp, time.Now())

	return renderer.Render(os.Stdout, out)
}

// exitCode maps an extraction failure to its process exit code.
func exitCode(err error) int {
	switch {
	case errors.Is(err, icy.ErrUnsupportedStream):
		return exitUnsupported
	case errors.Is(err, icy.ErrNoMetadata):
		return exitNoMetadata
	case errors.Is(err, icy.ErrMalformedMetadata):
		return exitMalformed
	default:
		return exitConnection
	}
}
