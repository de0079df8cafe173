package transcribe

import (
	"context"
	"testing"

	"github.com/moeffju/transcribee/internal/document"
)

func para(lang string, texts ...string) document.Paragraph {
	p := document.Paragraph{Speaker: document.UnknownSpeaker, Lang: lang}
	for i, text := range texts {
		p.Children = append(p.Children, document.Atom{
			Text:  text,
			Start: float64(i * 100),
			End:   float64((i + 1) * 100),
			Conf:  0.9,
		})
	}
	return p
}

func feed(paragraphs ...document.Paragraph) <-chan document.Paragraph {
	ch := make(chan document.Paragraph, len(paragraphs))
	for _, p := range paragraphs {
		ch <- p
	}
	close(ch)
	return ch
}

func drain(t *testing.T, ch <-chan document.Paragraph) []document.Paragraph {
	t.Helper()
	var out []document.Paragraph
	for p := range ch {
		out = append(out, p)
	}
	return out
}

func texts(paragraphs []document.Paragraph) []string {
	out := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		out[i] = p.Text()
	}
	return out
}

func TestRecombineSplitWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []document.Paragraph
		want []string
	}{
		{
			name: "merges paragraph split mid-word",
			in:   []document.Paragraph{para("en", "Hel"), para("en", "lo world"), para("en", " there")},
			want: []string{"Hello world", " there"},
		},
		{
			name: "whitespace-led paragraphs stay separate",
			in:   []document.Paragraph{para("en", " one"), para("en", " two")},
			want: []string{" one", " two"},
		},
		{
			name: "single paragraph passes through",
			in:   []document.Paragraph{para("en", "only")},
			want: []string{"only"},
		},
		{
			name: "empty first paragraph is not merged backward",
			in:   []document.Paragraph{para("en"), para("en", " next")},
			want: []string{"", " next"},
		},
		{
			name: "no input yields no output",
		},
		{
			name: "chain of fragments folds into one",
			in:   []document.Paragraph{para("en", "a"), para("en", "b"), para("en", "c")},
			want: []string{"abc"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := drain(t, RecombineSplitWords(context.Background(), feed(tc.in...)))
			if len(got) != len(tc.want) {
				t.Fatalf("got %d paragraphs %v, want %d", len(got), texts(got), len(tc.want))
			}
			for i, want := range tc.want {
				if got[i].Text() != want {
					t.Fatalf("paragraph %d text = %q, want %q", i, got[i].Text(), want)
				}
			}
		})
	}
}

func TestRecombineSplitWordsKeepsAccumulatorTags(t *testing.T) {
	t.Parallel()

	first := para("en", "Hel")
	first.Speaker = "Speaker 2"
	second := para("de", "lo")

	got := drain(t, RecombineSplitWords(context.Background(), feed(first, second)))
	if len(got) != 1 {
		t.Fatalf("expected a single merged paragraph, got %d", len(got))
	}
	if got[0].Speaker != "Speaker 2" || got[0].Lang != "en" {
		t.Fatalf("merge must retain the accumulated paragraph's tags, got %q/%q", got[0].Speaker, got[0].Lang)
	}
	if len(got[0].Children) != 2 {
		t.Fatalf("expected children appended in order, got %d", len(got[0].Children))
	}
}

func TestTrimLeadingWhitespace(t *testing.T) {
	t.Parallel()

	in := []document.Paragraph{
		para("en", " world", " still padded"),
		para("en", "\t tabs and nbsp"),
		para("en"), // childless: explicit pass-through
	}

	got := drain(t, TrimLeadingWhitespace(context.Background(), feed(in...)))
	if len(got) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(got))
	}
	if got[0].Children[0].Text != "world" {
		t.Fatalf("first atom not trimmed: %q", got[0].Children[0].Text)
	}
	if got[0].Children[1].Text != " still padded" {
		t.Fatalf("only the first atom may be trimmed, got %q", got[0].Children[1].Text)
	}
	if got[1].Children[0].Text != "tabs and nbsp" {
		t.Fatalf("unicode whitespace not trimmed: %q", got[1].Children[0].Text)
	}
	if len(got[2].Children) != 0 {
		t.Fatalf("childless paragraph must pass through unchanged")
	}
}

func TestStageCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan document.Paragraph, 2)
	in <- para("en", "one")
	in <- para("en", " two")
	close(in)

	out := TrimLeadingWhitespace(ctx, in)
	cancel()
	// The stage must terminate and close its output even though nothing reads
	// the remaining paragraphs.
	for range out {
	}
}
