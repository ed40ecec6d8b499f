package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gtodo/internal/credential"
	"gtodo/internal/service"
)

var testOp = Operation{Name: "GetUser", Query: "query GetUser { getUser { id } }"}

type capturedRequest struct {
	Auth string
	Body request
}

func newServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body request
		_ = json.NewDecoder(r.Body).Decode(&body)
		captured = append(captured, capturedRequest{Auth: r.Header.Get("Authorization"), Body: body})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func writeJSON(w http.ResponseWriter, status int, v string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(v))
}

func TestExecute_DecodesData(t *testing.T) {
	srv, captured := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"getUser":{"id":4}}}`)
	})
	c := New(srv.URL, credential.NewMemory("tok"))

	var out struct {
		GetUser struct {
			ID int `json:"id"`
		} `json:"getUser"`
	}
	if err := c.Execute(context.Background(), testOp, map[string]any{"a": 1}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.GetUser.ID != 4 {
		t.Errorf("expected id 4, got %d", out.GetUser.ID)
	}
	req := (*captured)[0]
	if req.Auth != "tok" {
		t.Errorf("expected bare credential, got %q", req.Auth)
	}
	if req.Body.OperationName != "GetUser" || req.Body.Variables["a"] != float64(1) {
		t.Errorf("unexpected request body %+v", req.Body)
	}
}

func TestExecute_ReadsCredentialAtCallTime(t *testing.T) {
	srv, captured := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{}}`)
	})
	store := credential.NewMemory("")
	c := New(srv.URL, store)

	if err := c.Execute(context.Background(), testOp, nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("later"); err != nil {
		t.Fatal(err)
	}
	if err := c.Execute(context.Background(), testOp, nil, nil); err != nil {
		t.Fatal(err)
	}

	if got := (*captured)[0].Auth; got != "" {
		t.Errorf("expected no authorization header before sign-in, got %q", got)
	}
	if got := (*captured)[1].Auth; got != "later" {
		t.Errorf("expected credential set after construction, got %q", got)
	}
}

func TestExecute_SendsBareCredential(t *testing.T) {
	srv, captured := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{}}`)
	})
	c := New(srv.URL, credential.NewMemory("jwt.abc.def"))
	if err := c.Execute(context.Background(), testOp, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := (*captured)[0].Auth; got != "jwt.abc.def" {
		t.Errorf("expected %q, got %q", "jwt.abc.def", got)
	}
}

func TestExecute_AuthScheme(t *testing.T) {
	srv, captured := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{}}`)
	})
	c := New(srv.URL, credential.NewMemory("jwt.abc.def"), WithAuthScheme("Bearer"))
	if err := c.Execute(context.Background(), testOp, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := (*captured)[0].Auth; got != "Bearer jwt.abc.def" {
		t.Errorf("expected scheme-prefixed credential, got %q", got)
	}
}

func TestExecute_RejectedClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   Kind
		is     error
	}{
		{"unauthenticated code", http.StatusOK, `{"errors":[{"message":"nope","extensions":{"code":"UNAUTHENTICATED"}}]}`, KindAuthentication, service.ErrAuthentication},
		{"not found message", http.StatusOK, `{"errors":[{"message":"Todo not found"}],"data":null}`, KindNotFound, service.ErrNotFound},
		{"bad input", http.StatusBadRequest, `{"errors":[{"message":"task required","extensions":{"code":"BAD_USER_INPUT"}}]}`, KindValidation, service.ErrValidation},
		{"401 with body", http.StatusUnauthorized, `{"errors":[{"message":"who are you"}]}`, KindAuthentication, service.ErrAuthentication},
		{"other", http.StatusOK, `{"errors":[{"message":"boom"}]}`, KindOther, service.ErrRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			err := New(srv.URL, credential.NewMemory("tok")).Execute(context.Background(), testOp, nil, nil)

			var rej *RejectedError
			if !errors.As(err, &rej) {
				t.Fatalf("expected RejectedError, got %T %v", err, err)
			}
			if rej.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, rej.Kind)
			}
			if !errors.Is(err, tt.is) {
				t.Errorf("expected errors.Is(%v)", tt.is)
			}
			if rej.Message == "" {
				t.Error("expected human-readable message")
			}
		})
	}
}

func TestExecute_StatusWithoutBody(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
	err := New(srv.URL, nil).Execute(context.Background(), testOp, nil, nil)
	if !errors.Is(err, service.ErrAuthentication) {
		t.Errorf("expected authentication rejection, got %v", err)
	}

	srv, _ = newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})
	err = New(srv.URL, nil).Execute(context.Background(), testOp, nil, nil)
	var te *TransportError
	if !errors.As(err, &te) || !errors.Is(err, service.ErrTransport) {
		t.Errorf("expected transport error, got %T %v", err, err)
	}
}

func TestExecute_MalformedBodyIsTransport(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `<html>`)
	})
	err := New(srv.URL, nil).Execute(context.Background(), testOp, nil, nil)
	if !errors.Is(err, service.ErrTransport) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestExecute_UnreachableIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url, nil).Execute(context.Background(), testOp, nil, nil)
	if !errors.Is(err, service.ErrTransport) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestExecute_NoRetry(t *testing.T) {
	var calls atomic.Int32
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})
	_ = New(srv.URL, nil).Execute(context.Background(), testOp, nil, nil)
	if calls.Load() != 1 {
		t.Errorf("expected exactly one attempt, got %d", calls.Load())
	}
}

func TestExecute_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	err := New(srv.URL, nil, WithTimeout(20*time.Millisecond)).Execute(context.Background(), testOp, nil, nil)
	if !errors.Is(err, service.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if err.Error() != "request timed out" {
		t.Errorf("expected timeout message, got %q", err.Error())
	}
}
