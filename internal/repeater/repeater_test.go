package repeater

import (
	"errors"
	"strings"
	"testing"
)

type fakeDispatcher struct {
	err    error
	called int
	label  string
}

func (f *fakeDispatcher) Send(host string, port int, useHTTPS bool, raw []byte, label string) error {
	f.called++
	f.label = label
	return f.err
}

// legacyDispatcher rejects the labeled form but accepts the unlabeled one.
type legacyDispatcher struct {
	fakeDispatcher
	legacyErr    error
	legacyCalled int
}

func (f *legacyDispatcher) SendUnlabeled(host string, port int, useHTTPS bool, raw []byte) error {
	f.legacyCalled++
	return f.legacyErr
}

type fakeClipboard struct {
	err  error
	text string
}

func (f *fakeClipboard) Copy(text string) error {
	f.text = text
	return f.err
}

var testReq = Request{
	Host:     "example.com",
	Port:     443,
	UseHTTPS: true,
	Raw:      []byte("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n"),
	Label:    "GET /",
}

func TestDeliver_Dispatched(t *testing.T) {
	t.Parallel()
	d := &fakeDispatcher{}
	route, err := Deliver(testReq, d, &fakeClipboard{}, nil)
	if err != nil || route != RouteDispatched {
		t.Fatalf("route = %q, err = %v", route, err)
	}
	if d.label != "GET /" {
		t.Fatalf("label = %q", d.label)
	}
}

func TestDeliver_FallsBackToLegacyForm(t *testing.T) {
	t.Parallel()
	d := &legacyDispatcher{fakeDispatcher: fakeDispatcher{err: errors.New("no labels here")}}
	route, err := Deliver(testReq, d, nil, nil)
	if err != nil || route != RouteDispatchedLegacy {
		t.Fatalf("route = %q, err = %v", route, err)
	}
	if d.called != 1 || d.legacyCalled != 1 {
		t.Fatalf("calls = %d labeled, %d legacy", d.called, d.legacyCalled)
	}
}

func TestDeliver_FallsBackToClipboard(t *testing.T) {
	t.Parallel()
	clip := &fakeClipboard{}
	route, err := Deliver(testReq, &fakeDispatcher{err: errors.New("down")}, clip, nil)
	if err != nil || route != RouteClipboard {
		t.Fatalf("route = %q, err = %v", route, err)
	}
	if clip.text != string(testReq.Raw) {
		t.Fatalf("clipboard text = %q", clip.text)
	}
}

func TestDeliver_FallsBackToDisplay(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	route, err := Deliver(testReq,
		&fakeDispatcher{err: errors.New("down")},
		&fakeClipboard{err: errors.New("no clipboard")},
		WriterDisplay{W: &sb})
	if err != nil || route != RouteDisplayed {
		t.Fatalf("route = %q, err = %v", route, err)
	}
	out := sb.String()
	if !strings.HasPrefix(out, "=== GET / ===\n") || !strings.Contains(out, "Host: example.com") {
		t.Fatalf("display output:\n%s", out)
	}
}

func TestDeliver_NilCollaboratorsSkipped(t *testing.T) {
	t.Parallel()
	clip := &fakeClipboard{}
	route, err := Deliver(testReq, nil, clip, nil)
	if err != nil || route != RouteClipboard {
		t.Fatalf("route = %q, err = %v", route, err)
	}
}

func TestDeliver_AllRoutesFail(t *testing.T) {
	t.Parallel()
	dispatchErr := errors.New("dispatch down")
	clipErr := errors.New("clipboard down")
	route, err := Deliver(testReq, &fakeDispatcher{err: dispatchErr}, &fakeClipboard{err: clipErr}, nil)
	if route != "" || err == nil {
		t.Fatalf("route = %q, err = %v", route, err)
	}
	if !errors.Is(err, dispatchErr) || !errors.Is(err, clipErr) {
		t.Fatalf("joined error missing causes: %v", err)
	}
}

func TestDeliver_NoCollaborators(t *testing.T) {
	t.Parallel()
	if route, err := Deliver(testReq, nil, nil, nil); err == nil || route != "" {
		t.Fatalf("expected failure with no routes, got %q, %v", route, err)
	}
}

func TestExecDispatcher_ArgumentOrder(t *testing.T) {
	t.Parallel()
	d := ExecDispatcher{Args: []string{"--fixed"}}
	got := d.argv("example.com", 8443, true)
	want := []string{"--fixed", "example.com", "8443", "true"}
	if len(got) != len(want) {
		t.Fatalf("argv = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("argv = %v, want %v", got, want)
		}
	}
}

func TestExecDispatcher_SendsRawOnStdin(t *testing.T) {
	t.Parallel()
	d := ExecDispatcher{Command: "sh", Args: []string{"-c", `test "$(cat)" = "payload"`, "sh"}}
	if err := d.SendUnlabeled("h", 80, false, []byte("payload")); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestExecDispatcher_NonZeroExitIsError(t *testing.T) {
	t.Parallel()
	d := ExecDispatcher{Command: "false"}
	if err := d.Send("h", 80, false, nil, "label"); err == nil {
		t.Fatal("expected error from non-zero exit")
	}
}
