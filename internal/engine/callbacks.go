//go:build whispercpp

package engine

/*
#include "include/whisper.h"
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

// runCallbacks bundles the Go callbacks passed through whisper.cpp's
// user_data pointer for one Run call.
type runCallbacks struct {
	onNewSegment func(n int)
	onProgress   func(percent int)
}

func callbacksFromHandle(userData unsafe.Pointer) (*runCallbacks, bool) {
	if userData == nil {
		return nil, false
	}

	handlePtr := (*cgo.Handle)(userData)
	if handlePtr == nil {
		return nil, false
	}
	handle := *handlePtr
	if handle == 0 {
		return nil, false
	}

	var (
		value     any
		recovered bool
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				recovered = true
				value = nil
			}
		}()
		value = handle.Value()
	}()
	if recovered || value == nil {
		return nil, false
	}

	callbacks, ok := value.(*runCallbacks)
	return callbacks, ok
}

//export transcribeeGoNewSegment
func transcribeeGoNewSegment(ctx *C.struct_whisper_context, state *C.struct_whisper_state, nNew C.int, userData unsafe.Pointer) {
	if callbacks, ok := callbacksFromHandle(userData); ok && callbacks.onNewSegment != nil {
		callbacks.onNewSegment(int(nNew))
	}
}

//export transcribeeGoProgress
func transcribeeGoProgress(ctx *C.struct_whisper_context, state *C.struct_whisper_state, progress C.int, userData unsafe.Pointer) {
	if callbacks, ok := callbacksFromHandle(userData); ok && callbacks.onProgress != nil {
		callbacks.onProgress(int(progress))
	}
}
