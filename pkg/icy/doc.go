// Package icy reads Icecast/Shoutcast in-stream metadata.
//
// A server that honors the Icy-MetaData request header interleaves metadata
// with the audio: every icy-metaint bytes of audio are followed by one length
// byte and, when the length is non-zero, a NUL-padded block of key='value';
// assignments. Open issues the request and validates the response headers;
// ReadMetadata advances past one audio chunk and decodes the block that
// follows it. Playlist URLs (.pls, .m3u, .m3u8) are resolved to the stream
// URL they reference before the metadata request is made.
package icy
