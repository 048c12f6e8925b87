package session

import (
	"context"
	"sync"
	"sync/atomic"
)

// Token is the session's cancellation flag. Cancel is idempotent and
// transitions the token exactly once; the derived context aborts any
// in-flight transcription request.
type Token struct {
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
	canceled atomic.Bool
}

// NewToken creates an uncanceled token derived from parent.
func NewToken(parent context.Context) *Token {
	ctx, cancel := context.WithCancel(parent)
	return &Token{ctx: ctx, cancel: cancel}
}

// Cancel marks the token canceled. Subsequent calls are no-ops.
func (t *Token) Cancel() {
	t.once.Do(func() {
		t.canceled.Store(true)
		t.cancel()
	})
}

// Canceled reports whether Cancel has been called.
func (t *Token) Canceled() bool {
	return t.canceled.Load()
}

// Context returns the context that is canceled together with the token.
func (t *Token) Context() context.Context {
	return t.ctx
}

// Done returns a channel closed when the token is canceled.
func (t *Token) Done() <-chan struct{} {
	return t.ctx.Done()
}

// release frees the derived context without marking the token canceled.
// Called once the session has fully terminated.
func (t *Token) release() {
	t.cancel()
}
