package engine

import "fmt"

// StubSegment is one scripted segment for the stub context.
type StubSegment struct {
	Tokens []Token
}

// StubContext replays a scripted sequence of segment batches without invoking
// Whisper. Each batch triggers one OnNewSegment callback, mirroring how
// whisper.cpp can finalise several segments at once.
type StubContext struct {
	lang    string
	batches [][]StubSegment
	runErr  error

	special    map[int]struct{}
	maxSpecial int

	finalized []StubSegment
}

// NewStubContext returns a Context that finalises the given batches in order.
func NewStubContext(lang string, batches [][]StubSegment) *StubContext {
	return &StubContext{lang: lang, batches: batches}
}

// SetSpecialTokens configures the control-token set used by IsSpecial.
func (c *StubContext) SetSpecialTokens(ids ...int) {
	c.special = make(map[int]struct{}, len(ids))
	c.maxSpecial = 0
	for _, id := range ids {
		c.special[id] = struct{}{}
		if id > c.maxSpecial {
			c.maxSpecial = id
		}
	}
}

// SetRunError makes Run return err after replaying its script.
func (c *StubContext) SetRunError(err error) {
	c.runErr = err
}

// Run replays the scripted batches. Callbacks fire on the calling goroutine,
// matching the native backend's behaviour.
func (c *StubContext) Run(params Params, samples []float32) error {
	c.finalized = c.finalized[:0]
	for i, batch := range c.batches {
		c.finalized = append(c.finalized, batch...)
		if params.OnNewSegment != nil {
			params.OnNewSegment(len(batch))
		}
		if params.OnProgress != nil {
			params.OnProgress((i + 1) * 100 / len(c.batches))
		}
	}
	return c.runErr
}

func (c *StubContext) Segments() int {
	return len(c.finalized)
}

func (c *StubContext) Tokens(segment int) int {
	return len(c.finalized[segment].Tokens)
}

func (c *StubContext) Token(segment, index int) Token {
	return c.finalized[segment].Tokens[index]
}

func (c *StubContext) IsSpecial(id int) bool {
	if len(c.special) == 0 {
		return false
	}
	if _, ok := c.special[id]; ok {
		return true
	}
	return id > c.maxSpecial
}

func (c *StubContext) DetectedLanguage() string {
	return c.lang
}

func (c *StubContext) Close() error { return nil }

// NewPlaceholderContext returns a scripted context emitting a fixed
// placeholder transcript, used when the native backend is unavailable or the
// stub engine is forced by configuration.
func NewPlaceholderContext(modelVariant string) *StubContext {
	words := []string{fmt.Sprintf("[stub:%s]", modelVariant), " local", " whisper", " transcript"}
	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = Token{
			ID:    i + 1,
			Bytes: []byte(w),
			P:     0.42,
			PT:    0.42,
			T0:    int64(i * 50),
			T1:    int64((i + 1) * 50),
		}
	}
	return NewStubContext("en", [][]StubSegment{{{Tokens: tokens}}})
}
