package parsecommand

import "xpilot-copilot/internal/copilot/command"

type Input struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

type Output struct {
	Command *command.Descriptor `json:"command"`
	Parsed  bool                `json:"parsed"`
}
