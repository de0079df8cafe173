// Package document holds the transcript data model shared between the worker
// and its consumers: timestamped atoms grouped into paragraphs grouped into
// documents.
package document

// UnknownSpeaker labels paragraphs before diarisation assigns a speaker.
const UnknownSpeaker = "Speaker 1"

// Atom is the smallest text unit of a transcript, roughly a word or sub-word
// piece. Start and End are in milliseconds. Conf is a probability-like score
// reported by the recognition engine and treated as opaque; ConfTS scores the
// timestamp alignment the same way.
type Atom struct {
	Text   string  `json:"text"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Conf   float64 `json:"conf"`
	ConfTS float64 `json:"conf_ts"`
}

// Paragraph is one finalised recognition segment: an ordered run of atoms plus
// speaker and language tags. Child timestamps are non-decreasing.
type Paragraph struct {
	Speaker  string `json:"speaker"`
	Lang     string `json:"lang"`
	Children []Atom `json:"children"`
}

// Text returns the paragraph's surface string, the concatenation of its
// children's texts.
func (p Paragraph) Text() string {
	var out string
	for _, a := range p.Children {
		out += a.Text
	}
	return out
}

// Start returns the start time of the first atom. ok is false for a paragraph
// without children.
func (p Paragraph) Start() (float64, bool) {
	if len(p.Children) == 0 {
		return 0, false
	}
	return p.Children[0].Start, true
}

// End returns the end time of the last atom. ok is false for a paragraph
// without children.
func (p Paragraph) End() (float64, bool) {
	if len(p.Children) == 0 {
		return 0, false
	}
	return p.Children[len(p.Children)-1].End, true
}

// Document is an ordered sequence of paragraphs.
type Document struct {
	Paragraphs []Paragraph `json:"paragraphs"`
}

// Text concatenates the text of every paragraph in order.
func (d Document) Text() string {
	var out string
	for _, p := range d.Paragraphs {
		out += p.Text()
	}
	return out
}

// Start returns the start time of the first paragraph with children.
func (d Document) Start() (float64, bool) {
	if len(d.Paragraphs) == 0 {
		return 0, false
	}
	return d.Paragraphs[0].Start()
}

// End returns the end time of the last paragraph with children.
func (d Document) End() (float64, bool) {
	if len(d.Paragraphs) == 0 {
		return 0, false
	}
	return d.Paragraphs[len(d.Paragraphs)-1].End()
}

// IsEmpty reports whether the document contains no atoms at all. The document
// may still carry empty paragraphs; check Text() for visible content.
func (d Document) IsEmpty() bool {
	for _, p := range d.Paragraphs {
		if len(p.Children) > 0 {
			return false
		}
	}
	return true
}

// Atoms returns every atom of the document in order.
func (d Document) Atoms() []Atom {
	var out []Atom
	for _, p := range d.Paragraphs {
		out = append(out, p.Children...)
	}
	return out
}

// LangBlock is a maximal run of consecutive paragraphs sharing a language,
// with their atoms concatenated.
type LangBlock struct {
	Lang  string
	Atoms []Atom
}

// LangBlocks groups consecutive paragraphs by language. A single-paragraph
// document yields exactly one block.
func (d Document) LangBlocks() []LangBlock {
	var blocks []LangBlock
	for _, p := range d.Paragraphs {
		if n := len(blocks); n > 0 && blocks[n-1].Lang == p.Lang {
			blocks[n-1].Atoms = append(blocks[n-1].Atoms, p.Children...)
			continue
		}
		blocks = append(blocks, LangBlock{
			Lang:  p.Lang,
			Atoms: append([]Atom(nil), p.Children...),
		})
	}
	return blocks
}
