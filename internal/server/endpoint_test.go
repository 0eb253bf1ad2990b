package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/metalagman/paradox/internal/config"
	"github.com/metalagman/paradox/internal/sentence"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstream struct {
	srv   *httptest.Server
	calls atomic.Int32
	input atomic.Value
}

func newUpstream(t *testing.T, status int, body string) *upstream {
	t.Helper()
	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			if in, ok := req["input"].(string); ok {
				u.input.Store(in)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func outputBody(text string) string {
	b, _ := json.Marshal(text)
	return `{"error": {"code": "", "message": ""}, "output": [{"type": "message", "role": "assistant", "content": [{"type": "output_text", "text": ` + string(b) + `, "annotations": []}]}]}`
}

func setEnv(t *testing.T, baseURL, apiKey string) {
	t.Helper()
	t.Setenv("PARADOX_MODE", "")
	t.Setenv(config.EnvOpenAIBaseURL, baseURL)
	t.Setenv(config.EnvOpenAIAPIKey, apiKey)
	t.Setenv(config.EnvOpenAIOrg, "")
	t.Setenv(config.EnvOpenAIAssistantID, "")
}

func serve(t *testing.T, e *Endpoint, target string) (*httptest.ResponseRecorder, Payload) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var p Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p), "body = %s", rec.Body.String())
	assert.True(t, (p.Sentence == "") != (p.Error == ""), "exactly one of sentence or error must be set: %+v", p)
	return rec, p
}

func TestEndpoint_PromptOverrideAndPunctuation(t *testing.T) {
	up := newUpstream(t, http.StatusOK, outputBody("The frame is empty"))
	setEnv(t, up.srv.URL, "sk-test")

	rec, p := serve(t, New(Config{Client: up.srv.Client()}), "/stream?prompt=test")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sentence":"The frame is empty."}`, rec.Body.String())
	assert.Equal(t, "The frame is empty.", p.Sentence)
	assert.Equal(t, "test", up.input.Load())
}

func TestEndpoint_KeepsExistingPunctuation(t *testing.T) {
	for _, text := range []string{"Done.", "Wow!", "Why?", "Then…"} {
		up := newUpstream(t, http.StatusOK, outputBody(text))
		setEnv(t, up.srv.URL, "sk-test")

		_, p := serve(t, New(Config{Client: up.srv.Client()}), "/stream")
		assert.Equal(t, text, p.Sentence)
	}
}

func TestEndpoint_UsesDefaultPrompt(t *testing.T) {
	up := newUpstream(t, http.StatusOK, outputBody("x"))
	setEnv(t, up.srv.URL, "sk-test")

	serve(t, New(Config{Client: up.srv.Client()}), "/stream")
	assert.Equal(t, sentence.DefaultPrompt, up.input.Load())
}

func TestEndpoint_MissingAPIKeyMakesNoCalls(t *testing.T) {
	up := newUpstream(t, http.StatusOK, outputBody("x"))
	setEnv(t, up.srv.URL, "")

	rec, p := serve(t, New(Config{Client: up.srv.Client()}), "/stream")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, p.Error, config.EnvOpenAIAPIKey)
	assert.Zero(t, up.calls.Load())
}

func TestEndpoint_AssistantsModeRequiresAssistantID(t *testing.T) {
	up := newUpstream(t, http.StatusOK, `{}`)
	setEnv(t, up.srv.URL, "sk-test")
	t.Setenv("PARADOX_MODE", config.ModeAssistants)

	rec, p := serve(t, New(Config{Client: up.srv.Client()}), "/stream")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, p.Error, config.EnvOpenAIAssistantID)
	assert.Zero(t, up.calls.Load())
}

func TestEndpoint_NoExtractableTextFallsBack(t *testing.T) {
	up := newUpstream(t, http.StatusOK, `{"error": {"code": "", "message": ""}, "output": []}`)
	setEnv(t, up.srv.URL, "sk-test")

	rec, p := serve(t, New(Config{Client: up.srv.Client()}), "/stream")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sentence.FallbackSentence, p.Sentence)
}

func TestEndpoint_MirrorsUpstreamStatus(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError} {
		up := newUpstream(t, status, `{"error": {"message": "upstream says no"}}`)
		setEnv(t, up.srv.URL, "sk-test")

		rec, p := serve(t, New(Config{Client: up.srv.Client()}), "/stream")

		assert.Equal(t, status, rec.Code)
		assert.Contains(t, p.Error, strconv.Itoa(status))
		assert.Contains(t, p.Error, "upstream says no")
		assert.Equal(t, int32(1), up.calls.Load())
	}
}

func TestEndpoint_TransportFailureIs502(t *testing.T) {
	up := newUpstream(t, http.StatusOK, outputBody("x"))
	baseURL := up.srv.URL
	up.srv.Close()
	setEnv(t, baseURL, "sk-test")

	rec, p := serve(t, New(Config{}), "/stream")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, p.Error, "connection refused")
}

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) Generate(context.Context, string) (string, error) { return s.text, s.err }

func stubEndpoint(gen sentence.Generator) *Endpoint {
	return New(Config{
		LoadConfig: func() (config.Config, error) {
			return config.Config{Mode: config.ModeResponses, OpenAI: config.OpenAIConfig{APIKey: "k"}}, nil
		},
		NewGenerator: func(context.Context, config.Config) (sentence.Generator, error) { return gen, nil },
	})
}

func TestEndpoint_TimeoutIs504(t *testing.T) {
	t.Parallel()

	rec, p := serve(t, stubEndpoint(stubGenerator{err: sentence.ErrGenerationTimedOut}), "/stream")

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, p.Error, "timed out")
}

func TestEndpoint_UnclassifiedFailureIs502(t *testing.T) {
	t.Parallel()

	rec, p := serve(t, stubEndpoint(stubGenerator{err: errors.New("boom")}), "/stream")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Generation failed: boom", p.Error)
}

func TestEndpoint_AssistantsModePollsUntilCompleted(t *testing.T) {
	var polls atomic.Int32
	reply := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /threads", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, `{"id": "thread_1", "object": "thread", "created_at": 1}`)
	})
	mux.HandleFunc("POST /threads/{thread}/messages", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, `{"id": "msg_1", "object": "thread.message", "thread_id": "thread_1", "role": "user", "content": []}`)
	})
	mux.HandleFunc("POST /threads/{thread}/runs", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, `{"id": "run_1", "object": "thread.run", "thread_id": "thread_1", "status": "queued"}`)
	})
	mux.HandleFunc("GET /threads/{thread}/runs/{run}", func(w http.ResponseWriter, _ *http.Request) {
		status := "in_progress"
		if polls.Add(1) >= 3 {
			status = "completed"
		}
		reply(w, `{"id": "run_1", "object": "thread.run", "thread_id": "thread_1", "status": "`+status+`"}`)
	})
	mux.HandleFunc("GET /threads/{thread}/messages", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, `{
			"object": "list",
			"data": [{
				"id": "msg_2",
				"object": "thread.message",
				"role": "assistant",
				"content": [{"type": "text", "text": {"value": "Silence is loud", "annotations": []}}]
			}],
			"has_more": false
		}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	setEnv(t, srv.URL, "sk-test")
	t.Setenv("PARADOX_MODE", config.ModeAssistants)
	t.Setenv(config.EnvOpenAIAssistantID, "asst_1")
	t.Setenv("PARADOX_POLL_INTERVAL", "1ms")

	rec, p := serve(t, New(Config{Client: srv.Client()}), "/stream")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Silence is loud.", p.Sentence)
	assert.Equal(t, int32(3), polls.Load())
}

func TestEndpoint_AnyMethodIsServed(t *testing.T) {
	t.Parallel()

	e := stubEndpoint(stubGenerator{text: "Yes."})
	for _, method := range []string{http.MethodPost, http.MethodOptions, http.MethodDelete} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(method, "/stream", nil))
		assert.Equal(t, http.StatusOK, rec.Code, method)
	}
}

func TestRegister_RoutesPathAndHealth(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	stubEndpoint(stubGenerator{text: "Yes."}).Register(mux)

	rec := httptest.NewRecorder()
	AccessLog(zerolog.Nop(), mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleAPIGateway(t *testing.T) {
	t.Parallel()

	var gotPrompt string
	e := New(Config{
		LoadConfig: func() (config.Config, error) {
			return config.Config{Mode: config.ModeResponses, OpenAI: config.OpenAIConfig{APIKey: "k"}}, nil
		},
		NewGenerator: func(context.Context, config.Config) (sentence.Generator, error) {
			return generatorFunc(func(_ context.Context, prompt string) (string, error) {
				gotPrompt = prompt
				return "The frame is empty.", nil
			}), nil
		},
	})

	resp, err := e.HandleAPIGateway(context.Background(), events.APIGatewayProxyRequest{
		QueryStringParameters: map[string]string{"prompt": "test"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.JSONEq(t, `{"sentence":"The frame is empty."}`, resp.Body)
	assert.Equal(t, "test", gotPrompt)
}

func TestRespond_ConfigLoadErrorIs500(t *testing.T) {
	t.Parallel()

	e := New(Config{LoadConfig: func() (config.Config, error) {
		return config.Config{}, assert.AnError
	}})
	reply := e.Respond(context.Background(), url.Values{})
	assert.Equal(t, http.StatusInternalServerError, reply.Status)
	assert.NotEmpty(t, reply.Body.Error)
}

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
