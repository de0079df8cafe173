package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestStubContextReplaysBatches(t *testing.T) {
	t.Parallel()

	ctx := NewStubContext("de", [][]StubSegment{
		{{Tokens: []Token{{ID: 1, Bytes: []byte("eins")}}}},
		{
			{Tokens: []Token{{ID: 2, Bytes: []byte("zwei")}}},
			{Tokens: []Token{{ID: 3, Bytes: []byte("drei")}}},
		},
	})

	var batchSizes []int
	var percents []int
	err := ctx.Run(Params{
		OnNewSegment: func(n int) { batchSizes = append(batchSizes, n) },
		OnProgress:   func(p int) { percents = append(percents, p) },
	}, []float32{0})
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	if len(batchSizes) != 2 || batchSizes[0] != 1 || batchSizes[1] != 2 {
		t.Fatalf("unexpected batch sizes: %v", batchSizes)
	}
	if len(percents) != 2 || percents[0] != 50 || percents[1] != 100 {
		t.Fatalf("unexpected progress: %v", percents)
	}
	if ctx.Segments() != 3 {
		t.Fatalf("expected 3 finalised segments, got %d", ctx.Segments())
	}
	if got := string(ctx.Token(2, 0).Bytes); got != "drei" {
		t.Fatalf("unexpected token bytes: %q", got)
	}
	if ctx.DetectedLanguage() != "de" {
		t.Fatalf("unexpected language: %q", ctx.DetectedLanguage())
	}
}

func TestStubContextRunError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("scripted failure")
	ctx := NewStubContext("en", [][]StubSegment{
		{{Tokens: []Token{{ID: 1, Bytes: []byte("partial")}}}},
	})
	ctx.SetRunError(wantErr)

	var fired int
	err := ctx.Run(Params{OnNewSegment: func(int) { fired++ }}, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() = %v, want %v", err, wantErr)
	}
	if fired != 1 {
		t.Fatalf("script must replay before the error, got %d callbacks", fired)
	}
}

func TestStubContextIsSpecial(t *testing.T) {
	t.Parallel()

	ctx := NewStubContext("en", nil)
	if ctx.IsSpecial(50256) {
		t.Fatalf("without a configured set no token is special")
	}

	ctx.SetSpecialTokens(50256, 50257, 50360)
	tests := []struct {
		id   int
		want bool
	}{
		{10, false},
		{50256, true},  // set member
		{50300, false}, // inside the range but not a member
		{50361, true},  // beyond the highest control token
	}
	for _, tc := range tests {
		if got := ctx.IsSpecial(tc.id); got != tc.want {
			t.Fatalf("IsSpecial(%d) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestPlaceholderContext(t *testing.T) {
	t.Parallel()

	ctx := NewPlaceholderContext("base")
	if err := ctx.Run(Params{}, nil); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if ctx.Segments() != 1 {
		t.Fatalf("expected a single segment, got %d", ctx.Segments())
	}

	var text strings.Builder
	for i := 0; i < ctx.Tokens(0); i++ {
		text.Write(ctx.Token(0, i).Bytes)
	}
	if !strings.Contains(text.String(), "[stub:base]") {
		t.Fatalf("placeholder transcript must name the variant, got %q", text.String())
	}
}
