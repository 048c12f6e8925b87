// Package transcription converts captured audio segments to text. Two
// backends are provided: a remote HTTP client speaking a multipart
// speech-to-text API, and a local Vosk engine for offline use. The
// dispatcher in the session package drives either one through the
// Backend interface.
package transcription
