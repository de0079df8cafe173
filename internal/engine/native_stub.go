//go:build !whispercpp

package engine

// NativeAvailable reports whether the native whisper backend is compiled in.
func NativeAvailable() bool { return false }

// NewNativeContext returns an error when the native backend is not built.
func NewNativeContext(modelPath string) (*NativeContext, error) {
	return nil, ErrNativeUnavailable
}

// NativeContext satisfies the Context interface when the native backend is
// absent.
type NativeContext struct{}

func (nc *NativeContext) Run(params Params, samples []float32) error { return ErrNativeUnavailable }
func (nc *NativeContext) Segments() int                              { return 0 }
func (nc *NativeContext) Tokens(segment int) int                     { return 0 }
func (nc *NativeContext) Token(segment, index int) Token             { return Token{} }
func (nc *NativeContext) IsSpecial(id int) bool                      { return false }
func (nc *NativeContext) DetectedLanguage() string                   { return "" }
func (nc *NativeContext) Close() error                               { return nil }
