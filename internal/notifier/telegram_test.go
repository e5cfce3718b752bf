package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestNotifier(apiBase string) *TelegramNotifier {
	tn := NewTelegramNotifier("test-token", "4242", "")
	tn.APIBase = apiBase
	return tn
}

func TestSend_Payload(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	tn := newTestNotifier(srv.URL)
	if err := tn.Send(context.Background(), "<b>hola</b>"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotPayload["chat_id"] != "4242" || gotPayload["text"] != "<b>hola</b>" {
		t.Errorf("payload = %+v", gotPayload)
	}
	if gotPayload["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %v", gotPayload["parse_mode"])
	}
	if gotPayload["disable_web_page_preview"] != true {
		t.Errorf("link previews not disabled: %+v", gotPayload)
	}
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"Bad Request"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	tn := newTestNotifier(srv.URL)
	err := tn.Send(context.Background(), "hola")
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestStartPolling_FiltersForeignChats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		if offset == "0" || offset == "" {
			fmt.Fprint(w, `{"ok":true,"result":[
				{"update_id":1,"message":{"text":"/predict","chat":{"id":9999}}},
				{"update_id":2,"message":{"text":"/hoy","chat":{"id":4242}}}
			]}`)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []string
	tn := newTestNotifier(srv.URL)
	tn.StartPolling(ctx, func(command string) string {
		got = append(got, command)
		cancel()
		return ""
	})

	if len(got) != 1 || got[0] != "/hoy" {
		t.Errorf("handled commands = %v, want only /hoy from the configured chat", got)
	}
}
