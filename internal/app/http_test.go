package app

import (
	"net/http"
	"reflect"
	"testing"
)

func TestNewHTTPClient_Config(t *testing.T) {
	c := newHTTPClient(8)
	if c.Timeout == 0 {
		t.Fatalf("expected non-zero timeout")
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected http.Transport")
	}
	if tr.MaxIdleConnsPerHost < 16 {
		t.Fatalf("expected per-host pool of at least 16, got %d", tr.MaxIdleConnsPerHost)
	}
	if reflect.ValueOf(http.DefaultTransport).Pointer() == reflect.ValueOf(tr).Pointer() {
		t.Fatalf("transport should not be default")
	}
}

func TestNewHTTPClient_ScalesWithWorkers(t *testing.T) {
	tr := newHTTPClient(32).Transport.(*http.Transport)
	if tr.MaxIdleConnsPerHost != 64 {
		t.Fatalf("MaxIdleConnsPerHost=%d, want 64", tr.MaxIdleConnsPerHost)
	}
}
