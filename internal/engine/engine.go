// Package engine wraps the whisper.cpp inference engine behind a narrow
// adapter surface: one blocking full-buffer call that reports finalised
// segments through callbacks and exposes per-token byte content, probability
// and timestamps.
package engine

// Token is one recognition token of a finalised segment. Bytes carries the
// raw vocabulary entry and may be an incomplete UTF-8 fragment; callers are
// expected to recombine consecutive tokens until they decode. T0 and T1 are
// timestamps in 10 ms ticks.
type Token struct {
	ID    int
	Bytes []byte
	P     float32
	PT    float32
	T0    int64
	T1    int64
}

// Params configures a single inference call.
type Params struct {
	// Language forces decoding to a language code; empty or "auto" enables
	// detection.
	Language string
	Threads  int
	// MaxSegmentLength caps segment length in characters; 0 means unlimited.
	MaxSegmentLength int
	// NoContext disables feeding already transcribed text back into decoding.
	NoContext       bool
	TokenTimestamps bool

	// OnNewSegment is invoked whenever the engine finalises segments, with the
	// number of newly finalised segments. It may run on a foreign thread.
	OnNewSegment func(n int)
	// OnProgress receives coarse progress percentages, when supported.
	OnProgress func(percent int)
}

// Context is a loaded model ready to transcribe one audio buffer. Run blocks
// until inference completes or fails; the segment accessors are valid from
// within OnNewSegment and after Run returns.
type Context interface {
	Run(params Params, samples []float32) error
	// Segments returns the number of segments finalised so far.
	Segments() int
	// Tokens returns the token count of a finalised segment.
	Tokens(segment int) int
	// Token returns token data for a finalised segment.
	Token(segment, index int) Token
	// IsSpecial reports whether a token id is a control token: a member of the
	// engine's control set, or any id above the largest control id.
	IsSpecial(id int) bool
	// DetectedLanguage returns the language code the engine detected for the
	// current call.
	DetectedLanguage() string
	Close() error
}
