// Package warnings provides the process-wide warning channel shared by the
// settings, dataset and visualization layers. Warnings are non-fatal: they
// report conditions like unknown saved-settings keys or unexpected metadata
// that should reach the user without aborting the operation.
package warnings

import (
	"fmt"
	"log"
	"sync"
)

var (
	mu       sync.Mutex
	handlers map[int]func(message string)
	nextID   int
)

// AddHandler registers fn to be called for every warning. The returned
// function removes the handler again and is safe to call more than once.
func AddHandler(fn func(message string)) (remove func()) {
	mu.Lock()
	defer mu.Unlock()

	if handlers == nil {
		handlers = make(map[int]func(string))
	}
	id := nextID
	nextID++
	handlers[id] = fn

	return func() {
		mu.Lock()
		defer mu.Unlock()
		delete(handlers, id)
	}
}

// Warn formats a message and sends it to every registered handler. When no
// handler is registered the message goes to the standard logger instead, so
// warnings are never silently dropped.
func Warn(format string, args ...any) {
	message := fmt.Sprintf(format, args...)

	mu.Lock()
	fns := make([]func(string), 0, len(handlers))
	for _, fn := range handlers {
		fns = append(fns, fn)
	}
	mu.Unlock()

	if len(fns) == 0 {
		log.Printf("warning: %s", message)
		return
	}
	for _, fn := range fns {
		fn(message)
	}
}
