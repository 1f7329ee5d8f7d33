package adapter

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/wippyai/http-adapter/errors"
	"github.com/wippyai/http-adapter/hostabi"
	"github.com/wippyai/http-adapter/resource"
)

func hello(ctx context.Context, s *State, _ IncomingRequest, out ResponseOutparam) error {
	headers := s.NewFields(ctx, []Entry{{"Content-Type", "text/plain"}})
	resp, err := s.NewOutgoingResponse(ctx, 200, headers)
	if err != nil {
		return err
	}
	body := s.OutgoingResponseWrite(ctx, resp)
	if _, err := s.Write(ctx, body, []byte("Hello world!")); err != nil {
		return err
	}
	s.SetResponseOutparam(ctx, resp)
	return nil
}

func TestInvoke_Hello(t *testing.T) {
	host := hostabi.NewSim(hostabi.Request{URI: "http://example.com/"})

	var events []resource.Event
	obs := resource.ObserverFunc(func(e resource.Event) { events = append(events, e) })

	if err := Invoke(ctx, host, HandlerFunc(hello), WithObserver(obs)); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	reply, sent := host.Reply()
	if !sent || reply.Status != 200 || string(reply.Body) != "Hello world!" || reply.Get("Content-Type") != "text/plain" {
		t.Fatalf("reply = %+v, sent = %v", reply, sent)
	}

	created := 0
	for _, e := range events {
		if e.Type == resource.EventCreated {
			created++
		}
	}
	if created != 3 {
		t.Errorf("created %d handles, want 3 (fields, response, stream)", created)
	}
}

func TestInvoke_HandlerErrorSkipsSend(t *testing.T) {
	host := hostabi.NewSim(hostabi.Request{})
	boom := stderrors.New("boom")

	err := Invoke(ctx, host, HandlerFunc(func(ctx context.Context, s *State, req IncomingRequest, out ResponseOutparam) error {
		if err := hello(ctx, s, req, out); err != nil {
			return err
		}
		return boom
	}))
	if !stderrors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, sent := host.Reply(); sent {
		t.Error("reply sent after handler error")
	}
}

func TestInvoke_FaultRecovered(t *testing.T) {
	host := hostabi.NewSim(hostabi.Request{})

	err := Invoke(ctx, host, HandlerFunc(func(ctx context.Context, s *State, _ IncomingRequest, _ ResponseOutparam) error {
		s.DropFields(ctx, 99)
		return nil
	}))
	if !errors.IsFault(err) {
		t.Fatalf("err = %v, want fault", err)
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseFields, Kind: errors.KindUnknownHandle}) {
		t.Errorf("err = %v", err)
	}
}

func TestInvoke_HandlerSeesSingleton(t *testing.T) {
	host := hostabi.NewSim(hostabi.Request{Method: "DELETE", URI: "http://h/x"})

	var method Method
	err := Invoke(ctx, host, HandlerFunc(func(ctx context.Context, s *State, req IncomingRequest, out ResponseOutparam) error {
		if out != DownstreamOutparam {
			t.Errorf("outparam = %d", out)
		}
		var err error
		method, err = s.IncomingRequestMethod(ctx, req)
		return err
	}))
	if err != nil {
		t.Fatal(err)
	}
	if method.Kind != MethodDelete {
		t.Errorf("method = %v", method)
	}
}

func TestState_Live(t *testing.T) {
	s, _ := newTestState(t, hostabi.Request{})
	f := s.NewFields(ctx, nil)
	s.NewFields(ctx, nil)
	s.DropFields(ctx, f)

	if got := s.Live()[resource.KindFields]; got != 1 {
		t.Errorf("live fields = %d", got)
	}
}

func TestInvoke_HandlerFinalizesItself(t *testing.T) {
	host := hostabi.NewSim(hostabi.Request{})

	err := Invoke(ctx, host, HandlerFunc(func(ctx context.Context, s *State, req IncomingRequest, out ResponseOutparam) error {
		if err := hello(ctx, s, req, out); err != nil {
			return err
		}
		return s.DropResponseOutparam(ctx, out)
	}))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if reply, sent := host.Reply(); !sent || reply.Status != 200 {
		t.Errorf("reply = %+v, sent = %v", reply, sent)
	}
}
