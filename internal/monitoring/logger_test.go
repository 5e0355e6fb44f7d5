package monitoring

import "testing"

func TestSetLoggerRedirects(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...any) { got = format })
	Logf("stage complete")
	if got != "stage complete" {
		t.Fatalf("custom logger not called, got %q", got)
	}
}

func TestSetLoggerNilMutes(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...any) { called = true })
	SetLogger(nil)
	Logf("muted")
	if called {
		t.Fatalf("nil logger should not forward to the previous logger")
	}
	if Logf == nil {
		t.Fatalf("Logf must never be nil")
	}
}
