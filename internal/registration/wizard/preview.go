package wizard

import (
	"encoding/base64"
	"sync"
)

// previewEncoder turns attachment bytes into data URLs off the caller's
// path. Each field carries a generation counter: a completion whose
// generation no longer matches is stale (a newer file was selected while the
// encode was in flight) and is discarded, so the preview can never regress
// to an older image.
type previewEncoder struct {
	mu   sync.Mutex
	gens map[string]uint64
	out  map[string]string
	wg   sync.WaitGroup
}

func newPreviewEncoder() *previewEncoder {
	return &previewEncoder{
		gens: map[string]uint64{},
		out:  map[string]string{},
	}
}

// Encode starts an asynchronous data-URL encode for field.
func (e *previewEncoder) Encode(field, contentType string, data []byte) {
	e.mu.Lock()
	e.gens[field]++
	gen := e.gens[field]
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		url := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
		e.complete(field, gen, url)
	}()
}

func (e *previewEncoder) complete(field string, gen uint64, url string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gens[field] != gen {
		return // stale read, a newer selection won
	}
	e.out[field] = url
}

// Drop forgets any pending or finished preview for field.
func (e *previewEncoder) Drop(field string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gens[field]++ // invalidate in-flight encodes
	delete(e.out, field)
}

// Wait blocks until all in-flight encodes have settled.
func (e *previewEncoder) Wait() {
	e.wg.Wait()
}

// Snapshot copies the finished previews.
func (e *previewEncoder) Snapshot() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.out))
	for k, v := range e.out {
		out[k] = v
	}
	return out
}
