package warnings

import "testing"

func TestHandlerReceivesWarnings(t *testing.T) {
	var got []string
	remove := AddHandler(func(message string) {
		got = append(got, message)
	})
	defer remove()

	Warn("unknown key %q", "foo")

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	if got[0] != `unknown key "foo"` {
		t.Errorf("unexpected message: %q", got[0])
	}
}

func TestRemoveStopsDelivery(t *testing.T) {
	count := 0
	remove := AddHandler(func(string) { count++ })

	Warn("first")
	remove()
	Warn("second")

	if count != 1 {
		t.Errorf("expected 1 warning after removal, got %d", count)
	}

	// Removing twice must not panic or affect other handlers.
	remove()
}

func TestMultipleHandlers(t *testing.T) {
	a, b := 0, 0
	removeA := AddHandler(func(string) { a++ })
	removeB := AddHandler(func(string) { b++ })
	defer removeA()
	defer removeB()

	Warn("fan out")

	if a != 1 || b != 1 {
		t.Errorf("expected both handlers called once, got a=%d b=%d", a, b)
	}
}
