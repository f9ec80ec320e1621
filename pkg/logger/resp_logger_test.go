package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseLogger(t *testing.T) {
	rr := httptest.NewRecorder()
	l := New(rr)

	l.WriteHeader(http.StatusCreated)
	n, err := l.Write([]byte(`{"status":"success"}`))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 20 {
		t.Errorf("Write returned %d, want 20", n)
	}

	if l.Status() != http.StatusCreated {
		t.Errorf("Status() = %d, want %d", l.Status(), http.StatusCreated)
	}
	if l.BytesWritten() != 20 {
		t.Errorf("BytesWritten() = %d, want 20", l.BytesWritten())
	}
	if rr.Code != http.StatusCreated {
		t.Errorf("recorder code = %d, want %d", rr.Code, http.StatusCreated)
	}
}

func TestResponseLoggerImplicitOK(t *testing.T) {
	rr := httptest.NewRecorder()
	l := New(rr)

	if _, err := l.Write([]byte("ok")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// A WriteHeader after the first Write must not change the
	// recorded status.
	l.WriteHeader(http.StatusInternalServerError)

	if l.Status() != http.StatusOK {
		t.Errorf("Status() = %d, want %d", l.Status(), http.StatusOK)
	}
	if l.BytesWritten() != 2 {
		t.Errorf("BytesWritten() = %d, want 2", l.BytesWritten())
	}
}
