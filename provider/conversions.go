package provider

import (
	"encoding/json"

	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"dbchat/model"
)

// ConvertToOpenAIMessages converts model messages to OpenAI format.
//
// Tool results are sent as user messages: the conversation keeps its own
// record of which tool produced them, and the chat API only needs the text.
func ConvertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))

	for i, msg := range messages {
		switch msg.Role {
		case "system":
			result[i] = openai.SystemMessage(msg.Content)
		case "user":
			result[i] = openai.UserMessage(msg.Content)
		case "assistant":
			result[i] = openai.AssistantMessage(msg.Content)
		case "tool":
			result[i] = openai.UserMessage(msg.Content)
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}

	return result
}

// ConvertToOllamaMessages converts model messages to Ollama api.Message.
// The Timestamp field is not preserved; the Ollama API has no place for it.
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return result
}

// ConvertToProviderToolCalls converts Ollama api.ToolCall to provider-agnostic
// model.ToolCall. Returns nil for empty input, matching the API's semantics.
func ConvertToProviderToolCalls(ollamaCalls []api.ToolCall) []model.ToolCall {
	if len(ollamaCalls) == 0 {
		return nil
	}

	result := make([]model.ToolCall, len(ollamaCalls))
	for i, call := range ollamaCalls {
		result[i] = model.ToolCall{
			Name:      call.Function.Name,
			Arguments: map[string]any(call.Function.Arguments),
		}
	}
	return result
}

// ParseToolArguments parses a JSON arguments string into a map.
// Used by the OpenAI provider for tool call parsing.
func ParseToolArguments(argsJSON string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		// If parsing fails, return empty map
		return make(map[string]any)
	}
	return args
}
