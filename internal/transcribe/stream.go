package transcribe

import (
	"context"

	"github.com/moeffju/transcribee/internal/document"
)

// resultBuffer bounds how far the producer may run ahead of the consumer
// before segment callbacks start blocking.
const resultBuffer = 16

// Stream delivers the paragraphs of one transcription run in publication
// order. It is finite and not restartable; a fresh Transcribe call is required
// per run. Err is valid once the Paragraphs channel is closed, mirroring the
// bufio.Scanner contract.
type Stream struct {
	ch    <-chan document.Paragraph
	state *streamState
}

type streamState struct {
	done chan struct{}
	err  error
}

// Paragraphs returns the channel paragraphs arrive on. The channel is closed
// when the run completes, fails, or the run context is cancelled.
func (s *Stream) Paragraphs() <-chan document.Paragraph {
	return s.ch
}

// Err returns the terminal error of the run, or nil while it is still in
// flight or after a clean completion.
func (s *Stream) Err() error {
	select {
	case <-s.state.done:
		return s.state.err
	default:
		return nil
	}
}

// newStream wires the consumer loop between the producer's handoff channel
// and the public paragraph channel.
func newStream(ctx context.Context, results <-chan document.Paragraph, done <-chan error) *Stream {
	out := make(chan document.Paragraph)
	s := &Stream{
		ch:    out,
		state: &streamState{done: make(chan struct{})},
	}
	go s.consume(ctx, out, results, done)
	return s
}

// consume forwards paragraphs in FIFO order and terminates once the producer
// has finished, draining anything that raced with completion first. Channels
// are the only structure shared with the producer; sends from its goroutine
// (including ones triggered by foreign-thread engine callbacks) are safe by
// construction.
func (s *Stream) consume(ctx context.Context, out chan<- document.Paragraph, results <-chan document.Paragraph, done <-chan error) {
	defer close(out)
	for {
		select {
		case p := <-results:
			if !s.emit(ctx, out, p) {
				s.finish(ctx.Err())
				return
			}
		case err := <-done:
			// The producer publishes every paragraph before signalling
			// completion, so anything still buffered must be yielded first.
			for {
				select {
				case p := <-results:
					if !s.emit(ctx, out, p) {
						s.finish(ctx.Err())
						return
					}
				default:
					s.finish(err)
					return
				}
			}
		case <-ctx.Done():
			s.finish(ctx.Err())
			return
		}
	}
}

func (s *Stream) emit(ctx context.Context, out chan<- document.Paragraph, p document.Paragraph) bool {
	select {
	case out <- p:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Stream) finish(err error) {
	s.state.err = err
	close(s.state.done)
}

// transform chains pipeline stages onto the stream, sharing its terminal
// error state.
func (s *Stream) transform(ctx context.Context, stages ...Stage) *Stream {
	ch := s.ch
	for _, stage := range stages {
		ch = stage(ctx, ch)
	}
	return &Stream{ch: ch, state: s.state}
}

// Collect drains the stream into a document and returns the run's terminal
// error, if any.
func Collect(s *Stream) (document.Document, error) {
	var doc document.Document
	for p := range s.Paragraphs() {
		doc.Paragraphs = append(doc.Paragraphs, p)
	}
	return doc, s.Err()
}
