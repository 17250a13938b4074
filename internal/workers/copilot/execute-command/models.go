package executecommand

import "xpilot-copilot/internal/copilot/command"

type Input struct {
	Command   *command.Descriptor `json:"command"`
	SessionID string              `json:"sessionId,omitempty"`
}

type Output struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Code    string      `json:"code,omitempty"`
}
