// Package router drives one conversation turn: user message in, assistant
// reply out, with any model-requested database operations executed in
// between.
package router

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"dbchat/model"
	"dbchat/tools"
)

// maxToolRounds bounds the tool-call loop. The model normally needs one or
// two rounds (inspect schema, then write); eight is already pathological.
const maxToolRounds = 8

// apologyReply is what the user sees when the provider call fails. Failures
// end the turn, never the process.
const apologyReply = "Sorry, I couldn't reach the language model just now. Please try again in a moment."

// emptyReply covers the rare round where the model returns neither text nor
// tool calls.
const emptyReply = "I didn't get a response that time. Could you rephrase that?"

// Router forwards a user utterance plus history to the provider along with
// the declared database tools, executes whatever the model requests, and
// loops until the model produces plain text.
type Router struct {
	provider model.Provider
	executor *tools.Executor
}

// New creates a Router over a provider and a tool executor.
func New(p model.Provider, e *tools.Executor) *Router {
	return &Router{provider: p, executor: e}
}

// HandleTurn runs one conversation turn. history is the prior turn sequence
// (without system prompt); userMsg is the new user utterance.
//
// It returns the turns to append to the conversation, starting with the user
// message and ending with the assistant's final text reply, plus that reply.
// Provider failures are converted into an apology reply here at the router
// boundary; they are logged but never returned as errors.
func (r *Router) HandleTurn(ctx context.Context, history []model.Message, userMsg string) ([]model.Message, string) {
	now := time.Now()

	turns := []model.Message{{
		Role:      "user",
		Content:   userMsg,
		Timestamp: now,
	}}

	// system prompt + history + this turn's messages so far
	buildMessages := func() []model.Message {
		msgs := make([]model.Message, 0, len(history)+len(turns)+1)
		msgs = append(msgs, model.Message{
			Role:      "system",
			Content:   buildSystemPrompt(now),
			Timestamp: now,
		})
		msgs = append(msgs, history...)
		msgs = append(msgs, turns...)
		return msgs
	}

	toolMenu := tools.All()

	var reply string
	for round := 0; round <= maxToolRounds; round++ {
		var contentBuilder strings.Builder
		var requested []model.ToolCall

		err := r.provider.ChatWithTools(ctx, buildMessages(), toolMenu, func(chunk string, toolCalls []model.ToolCall) error {
			contentBuilder.WriteString(chunk)
			requested = append(requested, toolCalls...)
			return nil
		})
		if err != nil {
			log.Printf("[router] provider error: %v", err)
			reply = apologyReply
			turns = append(turns, model.Message{
				Role:      "assistant",
				Content:   reply,
				Timestamp: time.Now(),
			})
			return turns, reply
		}

		content := strings.TrimSpace(contentBuilder.String())

		if len(requested) == 0 {
			// Plain text answer, the turn is done. An empty response still
			// gets a visible reply rather than a blank bubble.
			reply = content
			if reply == "" {
				reply = emptyReply
			}
			turns = append(turns, model.Message{
				Role:      "assistant",
				Content:   reply,
				Timestamp: time.Now(),
			})
			return turns, reply
		}

		if round == maxToolRounds {
			break
		}

		// Record the assistant's tool request, execute each call, and feed
		// the results back for a follow-up response.
		turns = append(turns, model.Message{
			Role:      "assistant",
			Content:   describeToolCalls(content, requested),
			Timestamp: time.Now(),
		})

		for _, call := range requested {
			result := r.executor.Execute(ctx, call)
			turns = append(turns, model.Message{
				Role:      "tool",
				Content:   fmt.Sprintf("Result of %s: %s", call.Name, result),
				Timestamp: time.Now(),
			})
		}
	}

	// The model never settled into plain text. Close the turn anyway.
	log.Printf("[router] tool loop exceeded %d rounds", maxToolRounds)
	reply = "I ran the requested database operations but couldn't produce a final summary. Please ask again."
	turns = append(turns, model.Message{
		Role:      "assistant",
		Content:   reply,
		Timestamp: time.Now(),
	})
	return turns, reply
}

// describeToolCalls records an assistant turn that requested tool calls.
// The text the model produced alongside the calls (often empty) is kept.
func describeToolCalls(content string, calls []model.ToolCall) string {
	names := make([]string, len(calls))
	for i, call := range calls {
		names[i] = call.Name
	}
	tag := fmt.Sprintf("[requested tools: %s]", strings.Join(names, ", "))
	if content == "" {
		return tag
	}
	return content + "\n" + tag
}
