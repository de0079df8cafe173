//go:build whispercpp

package engine

/*
#cgo CFLAGS: -I${SRCDIR}/../../third_party/whisper.cpp -I${SRCDIR}/../../third_party/whisper.cpp/include -I${SRCDIR}/../../third_party/whisper.cpp/ggml/include
#cgo CXXFLAGS: -std=c++17 -I${SRCDIR}/../../third_party/whisper.cpp -I${SRCDIR}/../../third_party/whisper.cpp/include -I${SRCDIR}/../../third_party/whisper.cpp/ggml/include
#cgo LDFLAGS: -L${SRCDIR}/../../third_party/whisper.cpp/build -L${SRCDIR}/../../third_party/whisper.cpp/build/src -Wl,-rpath,${SRCDIR}/../../third_party/whisper.cpp/build/src -lwhisper -lstdc++ -lm

#include "stdlib.h"
#include "include/whisper.h"

void transcribeeGoNewSegment(struct whisper_context * ctx, struct whisper_state * state, int n_new, void * user_data);
void transcribeeGoProgress(struct whisper_context * ctx, struct whisper_state * state, int progress, void * user_data);
*/
import "C"

import (
	"errors"
	"fmt"
	"runtime/cgo"
	"strings"
	"unsafe"
)

func NativeAvailable() bool { return true }

// NativeContext drives whisper.cpp through cgo. It is not safe for concurrent
// use; one transcription run owns the context for its whole lifetime.
type NativeContext struct {
	ctx *C.struct_whisper_context

	// control token ids, resolved once at load time
	special    map[int]struct{}
	maxSpecial int
}

// NewNativeContext loads a ggml model file and prepares a context for a
// single transcription run.
func NewNativeContext(modelPath string) (*NativeContext, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: model path required")
	}
	cPath := C.CString(modelPath)
	defer C.free(unsafe.Pointer(cPath))
	cParams := C.whisper_context_default_params()
	cParams.use_gpu = C.bool(false)

	ctx := C.whisper_init_from_file_with_params(cPath, cParams)
	if ctx == nil {
		return nil, fmt.Errorf("whisper: failed to initialise context for %s", modelPath)
	}

	nc := &NativeContext{ctx: ctx, special: make(map[int]struct{})}
	for _, id := range []C.whisper_token{
		C.whisper_token_eot(ctx),
		C.whisper_token_sot(ctx),
		C.whisper_token_prev(ctx),
		C.whisper_token_solm(ctx),
		C.whisper_token_not(ctx),
		C.whisper_token_beg(ctx),
	} {
		nc.special[int(id)] = struct{}{}
		if int(id) > nc.maxSpecial {
			nc.maxSpecial = int(id)
		}
	}
	return nc, nil
}

// Run performs one blocking full-buffer inference call. Segment callbacks
// fire on the calling thread as whisper.cpp finalises segments.
func (nc *NativeContext) Run(params Params, samples []float32) error {
	if len(samples) == 0 {
		return nil
	}

	cParams := C.whisper_full_default_params(C.WHISPER_SAMPLING_GREEDY)
	cParams.print_progress = C.bool(false)
	cParams.print_realtime = C.bool(false)
	cParams.print_timestamps = C.bool(false)
	cParams.print_special = C.bool(false)
	cParams.translate = C.bool(false)
	cParams.single_segment = C.bool(false)
	cParams.no_context = C.bool(params.NoContext)
	cParams.token_timestamps = C.bool(params.TokenTimestamps)
	cParams.max_len = C.int(params.MaxSegmentLength)
	// best_of matches the whisper.cpp CLI default for greedy sampling.
	cParams.greedy.best_of = C.int(5)
	if params.Threads > 0 {
		cParams.n_threads = C.int(params.Threads)
	}

	lang := strings.TrimSpace(params.Language)
	if lang == "" {
		lang = "auto"
	}
	cLang := C.CString(lang)
	defer C.free(unsafe.Pointer(cLang))
	cParams.language = cLang

	callbacks := runCallbacks{
		onNewSegment: params.OnNewSegment,
		onProgress:   params.OnProgress,
	}
	handle := cgo.NewHandle(&callbacks)
	defer handle.Delete()
	if params.OnNewSegment != nil {
		cParams.new_segment_callback = (C.whisper_new_segment_callback)(C.transcribeeGoNewSegment)
		cParams.new_segment_callback_user_data = unsafe.Pointer(&handle)
	}
	if params.OnProgress != nil {
		cParams.progress_callback = (C.whisper_progress_callback)(C.transcribeeGoProgress)
		cParams.progress_callback_user_data = unsafe.Pointer(&handle)
	}

	cSamples := (*C.float)(unsafe.Pointer(&samples[0]))
	if ret := C.whisper_full(nc.ctx, cParams, cSamples, C.int(len(samples))); ret != 0 {
		return fmt.Errorf("whisper: inference failed with code %d", int(ret))
	}
	return nil
}

func (nc *NativeContext) Segments() int {
	return int(C.whisper_full_n_segments(nc.ctx))
}

func (nc *NativeContext) Tokens(segment int) int {
	return int(C.whisper_full_n_tokens(nc.ctx, C.int(segment)))
}

func (nc *NativeContext) Token(segment, index int) Token {
	data := C.whisper_full_get_token_data(nc.ctx, C.int(segment), C.int(index))
	// whisper_token_to_str returns the raw vocabulary entry, which may be an
	// incomplete UTF-8 fragment.
	raw := C.GoString(C.whisper_token_to_str(nc.ctx, data.id))
	return Token{
		ID:    int(data.id),
		Bytes: []byte(raw),
		P:     float32(data.p),
		PT:    float32(data.pt),
		T0:    int64(data.t0),
		T1:    int64(data.t1),
	}
}

func (nc *NativeContext) IsSpecial(id int) bool {
	if _, ok := nc.special[id]; ok {
		return true
	}
	return id > nc.maxSpecial
}

func (nc *NativeContext) DetectedLanguage() string {
	id := C.whisper_full_lang_id(nc.ctx)
	if id < 0 {
		return ""
	}
	return C.GoString(C.whisper_lang_str(id))
}

func (nc *NativeContext) Close() error {
	if nc.ctx != nil {
		C.whisper_free(nc.ctx)
		nc.ctx = nil
	}
	return nil
}
