package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modryn-studio/specifythat/internal/models"
)

type fakeGen struct {
	reply  string
	err    error
	system string
	prompt string
	calls  int
}

func (f *fakeGen) Generate(ctx context.Context, system, prompt string) (string, error) {
	f.calls++
	f.system = system
	f.prompt = prompt
	return f.reply, f.err
}

func (f *fakeGen) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeGen) Name() string                          { return "fake" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOllamaGenerate(t *testing.T) {
	var got ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "  Invoicely  ", Done: true})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL+"/", "llama3.2", 5*time.Second, 1, discardLogger())
	text, err := g.Generate(context.Background(), "be brief", "name it")
	require.NoError(t, err)
	assert.Equal(t, "Invoicely", text)
	assert.Equal(t, "llama3.2", got.Model)
	assert.Equal(t, "be brief", got.System)
	assert.Equal(t, "name it", got.Prompt)
	assert.False(t, got.Stream)
	assert.Equal(t, "ollama", g.Name())
}

func TestOllamaGenerate_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "ok", Done: true})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "m", 5*time.Second, 3, discardLogger())
	text, err := g.Generate(context.Background(), "", "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOllamaGenerate_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "missing", 5*time.Second, 3, discardLogger())
	_, err := g.Generate(context.Background(), "", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestOllamaGenerate_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "   ", Done: true})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "m", 5*time.Second, 1, discardLogger())
	_, err := g.Generate(context.Background(), "", "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOllamaHealthCheck(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "m", time.Second, 1, discardLogger())
	assert.NoError(t, g.HealthCheck(context.Background()))
	healthy.Store(false)
	assert.Error(t, g.HealthCheck(context.Background()))
}

func TestAnthropicGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), "path %s", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-test", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "  A summary.  "}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 3}
		}`))
	}))
	defer srv.Close()

	g, err := NewAnthropicGenerator("key", "claude-test", 1, discardLogger(), option.WithBaseURL(srv.URL))
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), "system", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "A summary.", text)
}

func TestNewGenerator(t *testing.T) {
	g, err := NewGenerator(ProviderConfig{Provider: "ollama", OllamaBaseURL: "http://localhost:11434", OllamaModel: "m"}, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "ollama", g.Name())

	_, err = NewGenerator(ProviderConfig{Provider: "anthropic"}, discardLogger())
	assert.Error(t, err)

	_, err = NewGenerator(ProviderConfig{Provider: "gpt"}, discardLogger())
	assert.Error(t, err)
}

func TestParseDecomposition(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    models.AnalysisResult
		wantErr bool
	}{
		{
			name:  "single",
			reply: `{"type":"single","summary":" Invoicing for freelancers "}`,
			want:  models.SingleResult("Invoicing for freelancers"),
		},
		{
			name: "fenced multiple",
			reply: "Here you go:\n```json\n" +
				`{"type":"multiple","units":[{"id":1,"name":"App","description":"Mobile app"},{"id":2,"name":"Admin","description":"Back office"}]}` +
				"\n```",
			want: models.MultipleResult([]models.BuildableUnit{
				{ID: 1, Name: "App", Description: "Mobile app"},
				{ID: 2, Name: "Admin", Description: "Back office"},
			}),
		},
		{
			name:  "one usable unit becomes single",
			reply: `{"type":"multiple","units":[{"id":1,"name":"App","description":"Mobile app"},{"id":2,"name":"Empty","description":""}]}`,
			want:  models.SingleResult("Mobile app"),
		},
		{
			name:  "duplicate ids renumbered",
			reply: `{"type":"Multiple","units":[{"id":1,"name":"A","description":"a"},{"id":1,"name":"","description":"b"}]}`,
			want: models.MultipleResult([]models.BuildableUnit{
				{ID: 1, Name: "A", Description: "a"},
				{ID: 2, Name: "Unit 2", Description: "b"},
			}),
		},
		{name: "no json", reply: "I think it is one project", wantErr: true},
		{name: "unknown type", reply: `{"type":"maybe"}`, wantErr: true},
		{name: "empty summary", reply: `{"type":"single","summary":""}`, wantErr: true},
		{name: "no units", reply: `{"type":"multiple","units":[]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDecomposition(tt.reply)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecomposer_IncludesAttachment(t *testing.T) {
	gen := &fakeGen{reply: `{"type":"single","summary":"s"}`}
	d := NewDecomposer(gen)

	_, err := d.Decompose(context.Background(), "my description", "")
	require.NoError(t, err)
	assert.Contains(t, gen.prompt, "my description")
	assert.NotContains(t, gen.prompt, "Attached document")

	_, err = d.Decompose(context.Background(), "my description", "# Notes\nMore detail")
	require.NoError(t, err)
	assert.Contains(t, gen.prompt, "Attached document")
	assert.Contains(t, gen.prompt, "More detail")
	assert.Equal(t, decomposeSystem, gen.system)

	gen.err = errors.New("down")
	_, err = d.Decompose(context.Background(), "x", "")
	assert.Error(t, err)
}

type countingDecomposer struct {
	calls int
	err   error
}

func (c *countingDecomposer) Decompose(ctx context.Context, description, attachment string) (models.AnalysisResult, error) {
	c.calls++
	if c.err != nil {
		return models.AnalysisResult{}, c.err
	}
	return models.MultipleResult([]models.BuildableUnit{{ID: 1, Name: "a", Description: description}}), nil
}

func TestCachedDecomposer(t *testing.T) {
	inner := &countingDecomposer{}
	c, err := NewCachedDecomposer(inner, 100, time.Hour)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	first, err := c.Decompose(ctx, "desc", "")
	require.NoError(t, err)
	first.Units[0].Name = "mutated"

	second, err := c.Decompose(ctx, "desc", "")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "a", second.Units[0].Name)

	_, err = c.Decompose(ctx, "desc", "attachment")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	inner.err = errors.New("down")
	_, err = c.Decompose(ctx, "other", "")
	require.Error(t, err)
	_, err = c.Decompose(ctx, "other", "")
	require.Error(t, err)
	assert.Equal(t, 4, inner.calls)
}

func TestAnswerer(t *testing.T) {
	gen := &fakeGen{reply: "Freelancers"}
	a := NewAnswerer(gen)

	text, err := a.GenerateAnswer(context.Background(), models.AnswerRequest{
		Question:     "Who are the users?",
		PriorAnswers: []models.Answer{{Question: "Name?", Answer: "Invoicely"}, {Question: "Skipped?", Answer: ""}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Freelancers", text)
	assert.Contains(t, gen.prompt, "Who are the users?")
	assert.Contains(t, gen.prompt, "A: Invoicely")
	assert.Contains(t, gen.prompt, "(skipped)")
	assert.Contains(t, gen.prompt, DefaultHint)
}

func TestNamer(t *testing.T) {
	gen := &fakeGen{reply: "Project name: \"Invoicely\".\nIt fits because..."}
	n := NewNamer(NewAnswerer(gen), "What's the name of your project?", "Describe your project.")

	name, err := n.GenerateName(context.Background(), "Invoicing for freelancers")
	require.NoError(t, err)
	assert.Equal(t, "Invoicely", name)
	assert.Contains(t, gen.prompt, "What's the name of your project?")
	assert.Contains(t, gen.prompt, "Invoicing for freelancers")
	assert.Contains(t, gen.prompt, nameHint)

	gen.reply = "  \n  "
	_, err = n.GenerateName(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCleanName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Invoicely", "Invoicely"},
		{"**Invoicely**", "Invoicely"},
		{"Name: PayPal Lite.", "PayPal Lite"},
		{"\n\n'Quoted'\nsecond line", "Quoted"},
	}
	for _, tt := range tests {
		if got := cleanName(tt.in); got != tt.want {
			t.Errorf("cleanName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSpecWriter_StripsFence(t *testing.T) {
	gen := &fakeGen{reply: "```markdown\n# Invoicely\n## Overview\nText\n```"}
	w := NewSpecWriter(gen)

	md, err := w.WriteSpec(context.Background(), "", []models.Answer{{Question: "Q", Answer: "A"}})
	require.NoError(t, err)
	assert.Equal(t, "# Invoicely\n## Overview\nText", md)
	assert.Contains(t, gen.prompt, "(not provided)")
}

func TestComposer(t *testing.T) {
	gen := &fakeGen{reply: "A marketplace for bakers."}
	c := NewComposer(gen)
	out, err := c.ComposeDescription(context.Background(), []models.Answer{{Question: "Problem?", Answer: "Bakers waste bread"}})
	require.NoError(t, err)
	assert.Equal(t, "A marketplace for bakers.", out)
	assert.Contains(t, gen.prompt, "Bakers waste bread")
}

func TestExtractJSONAndTruncate(t *testing.T) {
	got, err := extractJSON("prefix {\"a\":1} suffix")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, got)

	long := strings.Repeat("a", 100) + strings.Repeat("b", 100)
	out := truncate(long, 40)
	assert.True(t, strings.HasPrefix(out, strings.Repeat("a", 10)))
	assert.True(t, strings.HasSuffix(out, strings.Repeat("b", 30)))
	assert.Equal(t, "short", truncate("short", 40))
}
