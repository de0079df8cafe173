package transcribe

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/moeffju/transcribee/internal/document"
)

// Stage is a composable transform over a paragraph stream. Stages read until
// the input closes and close their output when finished or when ctx is
// cancelled.
type Stage func(ctx context.Context, in <-chan document.Paragraph) <-chan document.Paragraph

// RecombineSplitWords merges paragraphs that were split mid-word. A paragraph
// whose surface text does not begin with whitespace is assumed to continue the
// previous paragraph and is folded into it; the accumulated paragraph keeps
// its speaker and language. An empty-text paragraph counts as starting with
// whitespace and is never merged backward.
func RecombineSplitWords(ctx context.Context, in <-chan document.Paragraph) <-chan document.Paragraph {
	out := make(chan document.Paragraph)
	go func() {
		defer close(out)

		var (
			pending     document.Paragraph
			havePending bool
		)
		for p := range in {
			if !havePending {
				pending = p
				havePending = true
				continue
			}
			if startsWithWhitespace(p.Text()) {
				if !stageSend(ctx, out, pending) {
					return
				}
				pending = p
			} else {
				pending.Children = append(pending.Children, p.Children...)
			}
		}
		if havePending {
			stageSend(ctx, out, pending)
		}
	}()
	return out
}

// TrimLeadingWhitespace strips leading whitespace from the first atom of each
// paragraph. Paragraphs without children pass through untouched.
func TrimLeadingWhitespace(ctx context.Context, in <-chan document.Paragraph) <-chan document.Paragraph {
	out := make(chan document.Paragraph)
	go func() {
		defer close(out)
		for p := range in {
			if len(p.Children) > 0 {
				p.Children[0].Text = strings.TrimLeftFunc(p.Children[0].Text, unicode.IsSpace)
			}
			if !stageSend(ctx, out, p) {
				return
			}
		}
	}()
	return out
}

// cleanStages is the fixed post-processing order applied by TranscribeClean.
var cleanStages = []Stage{RecombineSplitWords, TrimLeadingWhitespace}

func startsWithWhitespace(s string) bool {
	if s == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func stageSend(ctx context.Context, out chan<- document.Paragraph, p document.Paragraph) bool {
	select {
	case out <- p:
		return true
	case <-ctx.Done():
		return false
	}
}
