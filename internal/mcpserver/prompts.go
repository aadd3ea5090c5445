package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt(
		"telegram_message",
		mcp.WithPromptDescription("Compose and deliver a Telegram message to a recipient"),
		mcp.WithArgument("recipient",
			mcp.ArgumentDescription("Who the message is for"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("message",
			mcp.ArgumentDescription("What the message should say"),
			mcp.RequiredArgument(),
		),
	), s.getTelegramMessagePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt(
		"create_welcome_message",
		mcp.WithPromptDescription("Draft a welcome message for new chat members"),
		mcp.WithArgument("bot_name",
			mcp.ArgumentDescription("Name the bot introduces itself with"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("features",
			mcp.ArgumentDescription("Comma-separated capabilities to mention"),
		),
	), s.getCreateWelcomePrompt)
}

func (s *Server) getTelegramMessagePrompt(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	recipient := req.Params.Arguments["recipient"]
	message := req.Params.Arguments["message"]
	if recipient == "" || message == "" {
		return nil, fmt.Errorf("telegram_message prompt requires 'recipient' and 'message' arguments")
	}

	text := fmt.Sprintf(
		"Write a short, friendly Telegram message for %s conveying the following, then deliver it with the send_telegram_message tool:\n\n%s",
		recipient, message)

	return mcp.NewGetPromptResult(
		"Compose a Telegram message",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}

func (s *Server) getCreateWelcomePrompt(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	botName := req.Params.Arguments["bot_name"]
	if botName == "" {
		return nil, fmt.Errorf("create_welcome_message prompt requires a 'bot_name' argument")
	}
	features := req.Params.Arguments["features"]

	text := fmt.Sprintf("Write a welcome message that the bot %q sends to new chat members.", botName)
	if features != "" {
		text += fmt.Sprintf(" Mention that it can: %s.", features)
	}
	text += " Keep it under three sentences and end by inviting the member to type /help."

	return mcp.NewGetPromptResult(
		"Draft a welcome message",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}
