package ipcserver

import (
	"testing"

	"ugdb/internal/ipcclient"
)

func startTestServer(t *testing.T, h Handlers) (*Server, func()) {
	t.Helper()
	srv, err := Listen(h, nil)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	done := make(chan struct{})
	go func() {
		srv.Serve()
		close(done)
	}()
	return srv, func() {
		srv.Close()
		<-done
	}
}

func TestSetBreakpoint_RoundTrip(t *testing.T) {
	srv, stop := startTestServer(t, Handlers{
		SetBreakpoint: func(file string, line int) (string, error) {
			if file != "/tmp/a.c" || line != 7 {
				t.Fatalf("got file=%q line=%d", file, line)
			}
			return "Breakpoint 1 at /tmp/a.c:7", nil
		},
	})
	defer stop()

	cl, err := ipcclient.Dial(srv.Path())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer cl.Close()

	msg, err := cl.SetBreakpoint("/tmp/a.c", 7)
	if err != nil {
		t.Fatalf("SetBreakpoint: %v", err)
	}
	if msg != "Breakpoint 1 at /tmp/a.c:7" {
		t.Fatalf("got %q", msg)
	}
}

func TestGetInstanceInfo_RoundTrip(t *testing.T) {
	srv, stop := startTestServer(t, Handlers{
		InstanceInfo: func() (InstanceInfo, error) {
			return InstanceInfo{WorkingDirectory: "/home/user/proj"}, nil
		},
	})
	defer stop()

	cl, err := ipcclient.Dial(srv.Path())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer cl.Close()

	wd, err := cl.InstanceInfo()
	if err != nil {
		t.Fatalf("InstanceInfo: %v", err)
	}
	if wd != "/home/user/proj" {
		t.Fatalf("got %q", wd)
	}
}

func TestUnrecognisedFunction_ReturnsError(t *testing.T) {
	srv, stop := startTestServer(t, Handlers{})
	defer stop()

	cl, err := ipcclient.Dial(srv.Path())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer cl.Close()

	var resp ipcclient.Response
	if err := cl.Call("nonsense", struct{}{}, &resp); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if resp.Type != "error" || resp.Reason != "unrecognised_function" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestSetBreakpoint_HandlerErrorSurfacesAsErrorResponse(t *testing.T) {
	srv, stop := startTestServer(t, Handlers{
		SetBreakpoint: func(file string, line int) (string, error) {
			return "", errBadLocation
		},
	})
	defer stop()

	cl, err := ipcclient.Dial(srv.Path())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer cl.Close()

	_, err = cl.SetBreakpoint("nope.c", 1)
	if err == nil {
		t.Fatal("expected error")
	}
	reqErr, ok := err.(*ipcclient.RequestError)
	if !ok {
		t.Fatalf("got %T: %v", err, err)
	}
	if reqErr.Reason != "set_breakpoint_failed" {
		t.Fatalf("reason = %q", reqErr.Reason)
	}
}

type stringError string

func (e stringError) Error() string { return string(e) }

const errBadLocation = stringError("no such file")
