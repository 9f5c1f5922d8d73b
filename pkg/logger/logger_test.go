package logger

import (
	"errors"
	"reflect"
	"testing"
)

type recorder struct {
	lines    []string
	closeErr error
	closed   bool
}

func (r *recorder) record(level, message string) { r.lines = append(r.lines, level+" "+message) }

func (r *recorder) Log(message string, keyvals ...any)   { r.record("log", message) }
func (r *recorder) Debug(message string, keyvals ...any) { r.record("debug", message) }
func (r *recorder) Info(message string, keyvals ...any)  { r.record("info", message) }
func (r *recorder) Warn(message string, keyvals ...any)  { r.record("warn", message) }
func (r *recorder) Error(message string, keyvals ...any) { r.record("error", message) }

type closingRecorder struct{ recorder }

func (c *closingRecorder) Close() error {
	c.closed = true
	return c.closeErr
}

func TestFacade_DispatchesToEveryBackend(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Init(a, b)
	t.Cleanup(func() { Init() })

	Log("[Test] plain")
	Debug("[Test] debug")
	Info("[Test] info")
	Warn("[Test] warn")
	Error("[Test] error")

	want := []string{"log [Test] plain", "debug [Test] debug", "info [Test] info", "warn [Test] warn", "error [Test] error"}
	for name, r := range map[string]*recorder{"first": a, "second": b} {
		if !reflect.DeepEqual(r.lines, want) {
			t.Errorf("%s backend = %v, want %v", name, r.lines, want)
		}
	}
}

func TestFacade_NoBackends(t *testing.T) {
	Init()
	Info("[Test] dropped")
	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v, want nil", err)
	}
}

func TestClose_JoinsErrors(t *testing.T) {
	boom := errors.New("disk full")
	plain := &recorder{}
	ok := &closingRecorder{}
	failing := &closingRecorder{recorder{closeErr: boom}}
	Init(plain, ok, failing)
	t.Cleanup(func() { Init() })

	err := Close()
	if !errors.Is(err, boom) {
		t.Fatalf("Close() error = %v, want %v", err, boom)
	}
	if !ok.closed || !failing.closed {
		t.Errorf("closed = %v/%v, want both closed", ok.closed, failing.closed)
	}
}
