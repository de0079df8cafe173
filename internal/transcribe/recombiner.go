package transcribe

import (
	"unicode/utf8"

	"github.com/moeffju/transcribee/internal/document"
	"github.com/moeffju/transcribee/internal/engine"
)

// ticksToMillis converts whisper's 10 ms timestamp ticks to milliseconds.
const ticksToMillis = 10

// tokenRecombiner merges the byte output of consecutive tokens until a valid
// UTF-8 unit is decodable. Whisper tokens can split multi-byte sequences, so
// undecodable bytes are carried in a tail together with their confidence and
// timestamp contributions. State is scoped to one segment and reset after
// every successful decode; a tail is assumed never to span a segment boundary.
type tokenRecombiner struct {
	tail      []byte
	confSum   float64
	confTSSum float64
	count     int
	start     int64
	hasStart  bool
}

func (r *tokenRecombiner) reset() {
	r.tail = nil
	r.confSum = 0
	r.confTSSum = 0
	r.count = 0
	r.start = 0
	r.hasStart = false
}

// pending returns the number of undecodable bytes still held in the tail.
func (r *tokenRecombiner) pending() int {
	return len(r.tail)
}

// push feeds one token. ok reports whether tail+token decoded into an atom;
// otherwise the token was folded into the tail and nothing is emitted.
func (r *tokenRecombiner) push(tok engine.Token) (document.Atom, bool) {
	buf := tok.Bytes
	if len(r.tail) > 0 {
		buf = make([]byte, 0, len(r.tail)+len(tok.Bytes))
		buf = append(buf, r.tail...)
		buf = append(buf, tok.Bytes...)
	}

	if !utf8.Valid(buf) {
		r.tail = append(r.tail, tok.Bytes...)
		r.confSum += float64(tok.P)
		r.confTSSum += float64(tok.PT)
		r.count++
		if !r.hasStart {
			r.start = tok.T0
			r.hasStart = true
		}
		return document.Atom{}, false
	}

	start := tok.T0
	if r.hasStart {
		start = r.start
	}
	atom := document.Atom{
		Text:   string(buf),
		Conf:   (r.confSum + float64(tok.P)) / float64(r.count+1),
		ConfTS: (r.confTSSum + float64(tok.PT)) / float64(r.count+1),
		Start:  float64(start) * ticksToMillis,
		End:    float64(tok.T1) * ticksToMillis,
	}
	r.reset()
	return atom, true
}
