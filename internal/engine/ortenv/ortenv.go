// Package ortenv owns the process-wide ONNX Runtime environment shared by the
// embedder and the neural classifier.
package ortenv

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var env struct {
	once sync.Once
	lib  string
	err  error
}

// Init loads the ONNX Runtime shared library and initialises the environment.
// Only the first call has any effect; later calls return the first result.
func Init(libPath string) error {
	env.once.Do(func() {
		env.lib = libPath
		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			env.err = fmt.Errorf("onnx: failed to initialize runtime from %s: %w", libPath, err)
		}
	})
	return env.err
}

// Library returns the shared library path the environment was initialised with.
func Library() string {
	return env.lib
}

// SessionOptions returns session options tuned for small single-row
// inference. The caller must Destroy them.
func SessionOptions(intraOpThreads int) (*ort.SessionOptions, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	if intraOpThreads > 0 {
		if err := opts.SetIntraOpNumThreads(intraOpThreads); err != nil {
			opts.Destroy()
			return nil, fmt.Errorf("onnx: set intra-op threads: %w", err)
		}
	}
	if err := opts.SetInterOpNumThreads(1); err != nil {
		opts.Destroy()
		return nil, fmt.Errorf("onnx: set inter-op threads: %w", err)
	}
	return opts, nil
}
