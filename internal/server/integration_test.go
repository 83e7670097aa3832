package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mlorentedev/makenice/internal/command"
	"github.com/mlorentedev/makenice/internal/llm"
	"github.com/mlorentedev/makenice/internal/slackapp"
)

const testSecret = "e3b0c44298fc1c149afbf4c8996fb924"

type slackReply struct {
	ResponseType string `json:"response_type"`
	Text         string `json:"text"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Provider struct {
		Configured bool   `json:"configured"`
		APIType    string `json:"api_type"`
		Model      string `json:"model"`
	} `json:"provider"`
	SocketMode bool `json:"socket_mode"`
}

// replySink stands in for Slack's response_url endpoint.
type replySink struct {
	*httptest.Server
	replies chan slackReply
}

func newReplySink(t *testing.T) *replySink {
	t.Helper()
	s := &replySink{replies: make(chan slackReply, 16)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reply slackReply
		if err := json.NewDecoder(r.Body).Decode(&reply); err != nil {
			t.Errorf("decode reply: %v", err)
		}
		s.replies <- reply
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *replySink) next(t *testing.T) slackReply {
	t.Helper()
	select {
	case r := <-s.replies:
		return r
	case <-time.After(3 * time.Second):
		t.Fatal("no reply delivered to response_url")
		return slackReply{}
	}
}

func newLLMServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, cfg llm.ProviderConfig, factory llm.Factory, opts Options) *httptest.Server {
	t.Helper()
	commands := &command.Handler{
		Name:      command.DefaultName,
		Provider:  func() (llm.ProviderConfig, error) { return cfg, nil },
		NewClient: factory,
	}
	h := SetupMux(commands, slackapp.NewWebhookResponder(), opts)
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func mockTestServer(t *testing.T, secret string) *httptest.Server {
	t.Helper()
	return newTestServer(t, llm.ProviderConfig{}, llm.NewMockFactory(0), Options{SigningSecret: secret})
}

func slashForm(text, responseURL string) string {
	return url.Values{
		"command":      {"/make-nice"},
		"text":         {text},
		"response_url": {responseURL},
		"team_id":      {"T123"},
		"channel_id":   {"C123"},
		"user_id":      {"U123"},
	}.Encode()
}

// signedSlash builds a slash command POST, signed with secret unless it is empty.
func signedSlash(ts *httptest.Server, body, secret string) *http.Request {
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/slack/commands", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if secret != "" {
		stamp := strconv.FormatInt(time.Now().Unix(), 10)
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte("v0:" + stamp + ":" + body))
		req.Header.Set("X-Slack-Request-Timestamp", stamp)
		req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	}
	return req
}

func postSlash(t *testing.T, ts *httptest.Server, body, secret string) *http.Response {
	t.Helper()
	resp, err := http.DefaultClient.Do(signedSlash(ts, body, secret))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return resp
}

func TestIntegration_SlashCommandFullFlow(t *testing.T) {
	sink := newReplySink(t)
	llmSrv := newLLMServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"  Could you send the report when you have a moment?  "}}]}`)
	ts := newTestServer(t, llm.ProviderConfig{Endpoint: llmSrv.URL, APIType: llm.APIOpenAI}, llm.NewTransformer, Options{SigningSecret: testSecret})

	resp := postSlash(t, ts, slashForm("send the report now", sink.URL), testSecret)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if len(resp.Header.Get("X-Request-ID")) != 32 {
		t.Errorf("X-Request-ID: got %q, want 32 hex chars", resp.Header.Get("X-Request-ID"))
	}

	reply := sink.next(t)
	if reply.ResponseType != "in_channel" {
		t.Errorf("response_type: got %q, want %q", reply.ResponseType, "in_channel")
	}
	if reply.Text != "Could you send the report when you have a moment?" {
		t.Errorf("text: got %q", reply.Text)
	}
}

func TestIntegration_UpstreamErrorIsPrivate(t *testing.T) {
	sink := newReplySink(t)
	llmSrv := newLLMServer(t, http.StatusUnauthorized, `{"error":"bad key"}`)
	ts := newTestServer(t, llm.ProviderConfig{Endpoint: llmSrv.URL}, llm.NewTransformer, Options{SigningSecret: testSecret})

	resp := postSlash(t, ts, slashForm("fix this", sink.URL), testSecret)
	resp.Body.Close()

	reply := sink.next(t)
	if reply.ResponseType != "ephemeral" {
		t.Errorf("response_type: got %q, want %q", reply.ResponseType, "ephemeral")
	}
	want := "Sorry, I encountered an error processing your message. LLM API error: 401 - Unauthorized"
	if reply.Text != want {
		t.Errorf("text: got %q, want %q", reply.Text, want)
	}
}

func TestIntegration_MissingEndpointIsConfigError(t *testing.T) {
	sink := newReplySink(t)
	ts := newTestServer(t, llm.ProviderConfig{}, llm.NewTransformer, Options{SigningSecret: testSecret})

	resp := postSlash(t, ts, slashForm("fix this", sink.URL), testSecret)
	resp.Body.Close()

	reply := sink.next(t)
	if reply.ResponseType != "ephemeral" {
		t.Errorf("response_type: got %q, want %q", reply.ResponseType, "ephemeral")
	}
	if !strings.HasPrefix(reply.Text, "Configuration error: ") {
		t.Errorf("text: got %q, want configuration error", reply.Text)
	}
}

func TestIntegration_EmptyText(t *testing.T) {
	sink := newReplySink(t)
	ts := mockTestServer(t, testSecret)

	resp := postSlash(t, ts, slashForm("   ", sink.URL), testSecret)
	resp.Body.Close()

	reply := sink.next(t)
	want := "Please provide a message to make nice. Usage: `/make-nice <your message>`"
	if reply.ResponseType != "ephemeral" || reply.Text != want {
		t.Errorf("reply: got %+v, want ephemeral %q", reply, want)
	}
}

func TestIntegration_SignatureRequired(t *testing.T) {
	sink := newReplySink(t)
	ts := mockTestServer(t, testSecret)
	body := slashForm("hello", sink.URL)

	t.Run("unsigned returns 401", func(t *testing.T) {
		resp := postSlash(t, ts, body, "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status: got %d, want %d", resp.StatusCode, http.StatusUnauthorized)
		}
	})

	t.Run("wrong secret returns 401", func(t *testing.T) {
		resp := postSlash(t, ts, body, "not-the-secret")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status: got %d, want %d", resp.StatusCode, http.StatusUnauthorized)
		}
	})

	t.Run("health exempt", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status: got %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	select {
	case r := <-sink.replies:
		t.Errorf("rejected request produced a reply: %+v", r)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestIntegration_NoSecretLeavesSlashUnmounted(t *testing.T) {
	sink := newReplySink(t)
	llmSrv := newLLMServer(t, http.StatusOK, `{"text":"relayed"}`)
	ts := newTestServer(t, llm.ProviderConfig{Endpoint: llmSrv.URL}, llm.NewTransformer, Options{SocketMode: true})

	resp := postSlash(t, ts, slashForm("hello", sink.URL+"/elsewhere"), "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	select {
	case r := <-sink.replies:
		t.Errorf("unmounted route delivered a reply: %+v", r)
	case <-time.After(200 * time.Millisecond):
	}

	health, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("health status: got %d, want %d", health.StatusCode, http.StatusOK)
	}
}

func TestIntegration_AllowUnsignedMountsSlash(t *testing.T) {
	sink := newReplySink(t)
	ts := newTestServer(t, llm.ProviderConfig{}, llm.NewMockFactory(0), Options{AllowUnsigned: true})

	resp := postSlash(t, ts, slashForm("local run", sink.URL), "")
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := sink.next(t).Text; got != "Local run" {
		t.Errorf("text: got %q, want %q", got, "Local run")
	}
}

func TestOptionsSlashEnabled(t *testing.T) {
	tests := []struct {
		opts Options
		want bool
	}{
		{Options{}, false},
		{Options{SocketMode: true}, false},
		{Options{SigningSecret: "s"}, true},
		{Options{AllowUnsigned: true}, true},
	}
	for _, tt := range tests {
		if got := tt.opts.SlashEnabled(); got != tt.want {
			t.Errorf("SlashEnabled(%+v): got %v, want %v", tt.opts, got, tt.want)
		}
	}
}

func TestIntegration_HealthFullFlow(t *testing.T) {
	llmCfg := llm.ProviderConfig{Endpoint: "http://llm.local/api", Model: "claude-3-haiku", APIType: llm.APIAnthropic}
	ts := newTestServer(t, llmCfg, llm.NewTransformer, Options{})

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var hr healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if hr.Status != "ok" || !hr.Provider.Configured {
		t.Errorf("health: got %+v", hr)
	}
	if hr.Provider.APIType != "anthropic" || hr.Provider.Model != "claude-3-haiku" {
		t.Errorf("provider: got %+v", hr.Provider)
	}
}

func TestIntegration_UnknownRoute(t *testing.T) {
	ts := mockTestServer(t, "")

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestIntegration_ConcurrentCommands(t *testing.T) {
	sink := newReplySink(t)
	ts := mockTestServer(t, testSecret)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.DefaultClient.Do(signedSlash(ts, slashForm(fmt.Sprintf("message %d", i), sink.URL), testSecret))
			if err != nil {
				errs <- fmt.Errorf("request %d: %w", i, err)
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				errs <- fmt.Errorf("request %d: status %d", i, resp.StatusCode)
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		seen[sink.next(t).Text] = true
	}
	for i := 0; i < n; i++ {
		if want := fmt.Sprintf("Message %d", i); !seen[want] {
			t.Errorf("missing reply %q", want)
		}
	}
}

func TestIntegration_AckBeforeSlowProvider(t *testing.T) {
	sink := newReplySink(t)
	ts := newTestServer(t, llm.ProviderConfig{}, llm.NewMockFactory(4*time.Second), Options{SigningSecret: testSecret})

	start := time.Now()
	resp := postSlash(t, ts, slashForm("slow one", sink.URL), testSecret)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("ack took %v, want well under Slack's 3s window", elapsed)
	}

	select {
	case r := <-sink.replies:
		if r.Text != "Slow one" {
			t.Errorf("text: got %q", r.Text)
		}
	case <-time.After(6 * time.Second):
		t.Fatal("reply never delivered after slow provider")
	}
}

func TestIntegration_OversizedBody(t *testing.T) {
	ts := mockTestServer(t, testSecret)

	body := slashForm(strings.Repeat("x", 100*1024), "http://example.invalid")
	resp := postSlash(t, ts, body, testSecret)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status: got %d, want %d", resp.StatusCode, http.StatusRequestEntityTooLarge)
	}
}

func TestIntegration_MetricsAfterCommand(t *testing.T) {
	sink := newReplySink(t)
	ts := mockTestServer(t, testSecret)

	resp := postSlash(t, ts, slashForm("count me", sink.URL), testSecret)
	resp.Body.Close()
	sink.next(t)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	text := string(body)
	for _, name := range []string{
		"makenice_requests_total",
		"makenice_commands_total",
		"makenice_transform_duration_seconds",
		"makenice_input_chars",
		"go_goroutines",
	} {
		if !strings.Contains(text, name) {
			t.Errorf("metrics body missing %s", name)
		}
	}
}
