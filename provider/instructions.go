package provider

import (
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// buildOpenAIToolInstructions creates tool instructions for OpenAI models.
// GPT models prefer brief, direct guidance.
func buildOpenAIToolInstructions(tools []mcptypes.Tool) string {
	toolNames := []string{}
	for _, tool := range tools {
		toolNames = append(toolNames, tool.Name)
	}

	return strings.Join([]string{
		"TOOLS: " + strings.Join(toolNames, ", "),
		"",
		"When the user wants to store or look up data:",
		"1. Call list_tables first if you are unsure what already exists",
		"2. Reuse an existing table when one fits; otherwise create one",
		"3. Execute the tool calls, then confirm what you did in plain text",
		"",
		"DO NOT:",
		"- List the available tools to the user",
		"- Announce that you are about to call a tool",
		"",
		"Example:",
		"User: 'log my energy as 7 today'",
		"You: [call list_tables, then insert_row into the energy table]",
	}, "\n")
}

// buildAnthropicToolInstructions creates tool instructions for Claude models.
// Claude responds well to short guidance about when tools apply.
func buildAnthropicToolInstructions(tools []mcptypes.Tool) string {
	toolNames := []string{}
	for _, tool := range tools {
		toolNames = append(toolNames, tool.Name)
	}

	return strings.Join([]string{
		"You have these database tools: " + strings.Join(toolNames, ", ") + ".",
		"",
		"Use list_tables to see what the user already tracks before creating",
		"anything. Reuse existing tables when the columns fit. After a tool",
		"result comes back, answer the user in plain conversational text.",
		"Never describe the tool mechanics to the user.",
	}, "\n")
}
