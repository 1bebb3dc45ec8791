package bedrock

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-inbox-prioritizer/internal/ports"
	"go.uber.org/zap/zaptest"
)

type fakeRuntime struct {
	body  []byte
	input *bedrockruntime.InvokeModelInput
}

func (f *fakeRuntime) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = in
	return &bedrockruntime.InvokeModelOutput{Body: f.body}, nil
}

var history = []ports.Turn{
	{Role: ports.RoleUser, Text: "example question"},
	{Role: ports.RoleModel, Text: `yes ["job"]`},
}

func TestAnthropicPayload(t *testing.T) {
	rt := &fakeRuntime{body: []byte(`{"completion":" no []"}`)}
	c := NewBedrockClient(rt, "anthropic.claude-v2", 50, 0.1, 0.9, zaptest.NewLogger(t))

	got, err := c.Chat(context.Background(), history, "is this urgent?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != " no []" {
		t.Fatalf("Chat = %q", got)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(rt.input.Body, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	prompt := payload["prompt"].(string)
	want := "\n\nHuman: example question\n\nAssistant: yes [\"job\"]\n\nHuman: is this urgent?\n\nAssistant:"
	if prompt != want {
		t.Fatalf("prompt = %q, want %q", prompt, want)
	}
	if *rt.input.ModelId != "anthropic.claude-v2" {
		t.Fatalf("unexpected model id %q", *rt.input.ModelId)
	}
}

func TestTitanResponse(t *testing.T) {
	rt := &fakeRuntime{body: []byte(`{"results":[{"outputText":"yes [\"offer\"]"}]}`)}
	c := NewBedrockClient(rt, "amazon.titan-text-express-v1", 50, 0, 1, zaptest.NewLogger(t))

	got, err := c.Chat(context.Background(), history, "prompt")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != `yes ["offer"]` {
		t.Fatalf("Chat = %q", got)
	}
	if !strings.Contains(string(rt.input.Body), "inputText") {
		t.Fatalf("titan payload missing inputText: %s", rt.input.Body)
	}
}

func TestTitanEmptyResults(t *testing.T) {
	rt := &fakeRuntime{body: []byte(`{"results":[]}`)}
	c := NewBedrockClient(rt, "amazon.titan-text-lite-v1", 50, 0, 1, zaptest.NewLogger(t))
	if _, err := c.Chat(context.Background(), nil, "prompt"); err == nil {
		t.Fatal("expected error for empty results")
	}
}

func TestGenericResponseFallsBackToBody(t *testing.T) {
	rt := &fakeRuntime{body: []byte(`{"unexpected":"shape"}`)}
	c := NewBedrockClient(rt, "meta.llama3", 50, 0, 1, zaptest.NewLogger(t))

	got, err := c.Chat(context.Background(), nil, "prompt")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != `{"unexpected":"shape"}` {
		t.Fatalf("Chat = %q", got)
	}
}
