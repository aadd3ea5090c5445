package config

import "time"

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"

	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8000
	DefaultMCPPort    = 8001

	DefaultDBPath             = "storage.db"
	DefaultDBRetention        = 30 * 24 * time.Hour
	DefaultMaxHistoryMessages = 100

	DefaultAIModel       = "gemini-2.0-flash"
	DefaultAITemperature = 1.0
	DefaultAITimeout     = 2 * time.Minute
	DefaultAIInstruction = "You are a helpful Telegram bot assistant. Reply concisely to the user's message, taking the recent conversation into account."

	// Every day at 04:00.
	DefaultMaintenanceSchedule = "0 0 4 * * *"
)

// Default user-facing bot reply templates.
var DefaultMessages = MessagesConfig{
	Welcome:      "🤖 Welcome! I'm a Telegram bot backed by an MCP tool server.\n\nAvailable commands:\n/start - Show this welcome message\n/help - Get help information\n/info - Show your user information\n/stats - View bot statistics\n/clear - Clear your conversation history\n\nJust send me any message and I'll respond!",
	Help:         "🔧 Bot commands:\n\n/start - Initialize the bot\n/help - Show this help message\n/info - Show your profile and session info\n/stats - View global bot statistics\n/clear - Clear your personal conversation history\n\nSend any text message and I'll reply. The same bot can be driven remotely through the MCP tool endpoint.",
	HistoryReset: "🗑️ Your conversation history has been cleared. Your profile information remains unchanged.",
	GeneralError: "❌ An error occurred. Please try again later.",
}
