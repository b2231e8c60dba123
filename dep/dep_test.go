package dep

import (
	"strings"
	"testing"
)

type thing struct{}

func (*thing) Close() {}

type closer interface{ Close() }

func panics(f func()) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg, _ = r.(string)
		}
	}()
	f()
	return ""
}

func TestRequired(t *testing.T) {
	var nilThing *thing
	var nilCloser closer = nilThing

	tests := []struct {
		name    string
		f       func()
		wantErr bool
	}{
		{"pointer", func() { Required(&thing{}) }, false},
		{"interface", func() { Required[closer](&thing{}) }, false},
		{"string", func() { Required("X-User") }, false},
		{"zero int", func() { Required(0) }, false},
		{"nil pointer", func() { Required(nilThing) }, true},
		{"nil pointer in interface", func() { Required(nilCloser) }, true},
		{"nil interface", func() { Required[closer](nil) }, true},
		{"empty string", func() { Required("") }, true},
		{"nil slice", func() { Required([]string(nil)) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := panics(tt.f)
			if got := msg != ""; got != tt.wantErr {
				t.Fatalf("panicked = %v (%q), want %v", got, msg, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(msg, "TestRequired") {
				t.Errorf("panic %q doesn't name the caller", msg)
			}
		})
	}
}
