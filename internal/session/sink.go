package session

// Sink receives session output. All fields are optional; unset callbacks
// are skipped. Callbacks are invoked from session goroutines and must not
// block for long.
type Sink struct {
	// OnTranscript delivers transcribed text, one call per segment in
	// capture order.
	OnTranscript func(text string)

	// OnWarning raises a user-facing advisory. An empty string withdraws
	// the current advisory.
	OnWarning func(message string)

	// OnError reports a non-fatal pipeline error.
	OnError func(err error)
}

func (s Sink) emitTranscript(text string) {
	if s.OnTranscript != nil {
		s.OnTranscript(text)
	}
}

func (s Sink) emitWarning(message string) {
	if s.OnWarning != nil {
		s.OnWarning(message)
	}
}

func (s Sink) emitError(err error) {
	if s.OnError != nil {
		s.OnError(err)
	}
}
