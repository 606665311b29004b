package mocks

import (
	"context"
	"sync"

	"cafebook/infras/otel"
)

// Recorder is an Otel whose scopes keep the errors traced on them.
type Recorder struct {
	mu     sync.Mutex
	errors map[string][]error
}

func NewRecorder() *Recorder {
	return &Recorder{errors: map[string][]error{}}
}

// NewScope implements otel.Otel.
func (r *Recorder) NewScope(ctx context.Context, _, spanName string) (context.Context, otel.Scope) {
	return ctx, &recordingScope{recorder: r, span: spanName}
}

// Shutdown implements otel.Otel.
func (r *Recorder) Shutdown(_ context.Context) error {
	return nil
}

// Errors returns the errors traced on spans named spanName.
func (r *Recorder) Errors(spanName string) []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]error(nil), r.errors[spanName]...)
}

func (r *Recorder) record(spanName string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors[spanName] = append(r.errors[spanName], err)
}

type recordingScope struct {
	scopeImpl

	recorder *Recorder
	span     string
}

func (s *recordingScope) TraceError(err error) {
	s.recorder.record(s.span, err)
}

func (s *recordingScope) TraceIfError(err error) {
	if err != nil {
		s.recorder.record(s.span, err)
	}
}
