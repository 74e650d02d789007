package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabula/tabula/internal/dataset"
	"github.com/tabula/tabula/internal/service"
)

// messagesServer answers /v1/messages with the content blocks returned by
// reply and records every request body it receives.
type messagesServer struct {
	mu       sync.Mutex
	requests []map[string]interface{}
	reply    func(call int) string
}

func (m *messagesServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/v1/messages" {
		http.NotFound(w, r)
		return
	}
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.requests = append(m.requests, body)
	call := len(m.requests)
	m.mu.Unlock()

	content := m.reply(call)
	stop := "end_turn"
	if json.Valid([]byte(content)) && containsToolUse(content) {
		stop = "tool_use"
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"id":"msg_%d","type":"message","role":"assistant","model":"test-model",`+
		`"content":%s,"stop_reason":%q,"stop_sequence":null,"usage":{"input_tokens":1,"output_tokens":1}}`,
		call, content, stop)
}

func (m *messagesServer) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *messagesServer) request(i int) map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[i]
}

func containsToolUse(content string) bool {
	var blocks []struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(content), &blocks); err != nil {
		return false
	}
	for _, b := range blocks {
		if b.Type == "tool_use" {
			return true
		}
	}
	return false
}

func toolUse(id, name, input string) string {
	return fmt.Sprintf(`[{"type":"tool_use","id":%q,"name":%q,"input":%s}]`, id, name, input)
}

func text(s string) string {
	return fmt.Sprintf(`[{"type":"text","text":%q}]`, s)
}

func newTestAgent(t *testing.T, srv *httptest.Server, timeout time.Duration) *IntentAgent {
	t.Helper()
	c := dataset.NewCatalog()
	c.Register(dataset.DefaultTable, dataset.SeedLoader(dataset.DefaultRowCount, 1))
	return NewIntentAgent(Config{
		APIKey:  "sk-test",
		BaseURL: srv.URL + "/",
		Model:   "test-model",
		Timeout: timeout,
	}, c, dataset.DefaultTable)
}

func TestTranslateSubmitIntent(t *testing.T) {
	fake := &messagesServer{reply: func(int) string {
		return toolUse("toolu_1", "submit_query_intent", `{"operation":"COUNT","regions":["North"],"product":"laptop"}`)
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	got, err := newTestAgent(t, srv, time.Second).Translate(context.Background(), "How many laptops in North?")
	require.NoError(t, err)
	assert.Equal(t, service.QueryIntent{
		SourceTable: dataset.DefaultTable,
		Operation:   service.OpCount,
		Filters:     service.FilterSet{Region: []string{"north"}, Product: "laptop"},
	}, got)
	assert.Equal(t, 1, fake.calls())

	req := fake.request(0)
	assert.Equal(t, "test-model", req["model"])
	tools := req["tools"].([]interface{})
	assert.Len(t, tools, 4)
}

func TestTranslateToolRoundTrip(t *testing.T) {
	fake := &messagesServer{reply: func(call int) string {
		if call == 1 {
			return toolUse("toolu_schema", "get_table_schema", `{"table":"sales"}`)
		}
		return toolUse("toolu_submit", "submit_query_intent", `{"operation":"SUM","regions":["west"]}`)
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	got, err := newTestAgent(t, srv, time.Second).Translate(context.Background(), "total sales in west")
	require.NoError(t, err)
	assert.Equal(t, service.OpSum, got.Operation)
	assert.Equal(t, []string{"west"}, got.Filters.Region)
	require.Equal(t, 2, fake.calls())

	// The second request replays the assistant turn and answers the tool call.
	messages := fake.request(1)["messages"].([]interface{})
	require.Len(t, messages, 3)
	assistant := messages[1].(map[string]interface{})
	assert.Equal(t, "assistant", assistant["role"])

	result := messages[2].(map[string]interface{})
	assert.Equal(t, "user", result["role"])
	block := result["content"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "tool_result", block["type"])
	assert.Equal(t, "toolu_schema", block["tool_use_id"])
	assert.Contains(t, fmt.Sprint(block["content"]), "Table: sales")
}

func TestTranslateUnknownToolReportsError(t *testing.T) {
	fake := &messagesServer{reply: func(call int) string {
		if call == 1 {
			return toolUse("toolu_x", "drop_table", `{}`)
		}
		return text(`{"operation":"SELECT"}`)
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	got, err := newTestAgent(t, srv, time.Second).Translate(context.Background(), "show sales")
	require.NoError(t, err)
	assert.Equal(t, service.OpSelect, got.Operation)

	messages := fake.request(1)["messages"].([]interface{})
	block := messages[2].(map[string]interface{})["content"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, true, block["is_error"])
}

func TestTranslateTextReply(t *testing.T) {
	fake := &messagesServer{reply: func(int) string {
		return text("```json\n{\"operation\":\"AVG\",\"product\":\"tablet\"}\n```")
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	got, err := newTestAgent(t, srv, time.Second).Translate(context.Background(), "average tablet sale")
	require.NoError(t, err)
	assert.Equal(t, service.OpAverage, got.Operation)
	assert.Equal(t, "tablet", got.Filters.Product)
}

func TestTranslateEmptyReply(t *testing.T) {
	fake := &messagesServer{reply: func(int) string { return text("  ") }}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := newTestAgent(t, srv, time.Second).Translate(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNoIntent)
}

func TestTranslateInvalidSubmission(t *testing.T) {
	fake := &messagesServer{reply: func(int) string {
		return toolUse("toolu_1", "submit_query_intent", `{"operation":"MEDIAN"}`)
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := newTestAgent(t, srv, time.Second).Translate(context.Background(), "median sale")
	assert.ErrorIs(t, err, service.ErrUnknownOperation)
}

func TestTranslateMaxIterations(t *testing.T) {
	fake := &messagesServer{reply: func(call int) string {
		return toolUse(fmt.Sprintf("toolu_%d", call), "list_tables", `{}`)
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := newTestAgent(t, srv, time.Second).Translate(context.Background(), "loop forever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max iterations")
	assert.Equal(t, maxIterations, fake.calls())
}

func TestTranslateTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := newTestAgent(t, srv, 50*time.Millisecond).Translate(context.Background(), "slow question")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
