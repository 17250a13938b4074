package chatrespond

type Input struct {
	Prompt    string `json:"prompt"`
	Model     string `json:"model"`
	Context   string `json:"context,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

type Output struct {
	Response  string `json:"response"`
	ModelUsed string `json:"modelUsed"`
	Status    string `json:"status"`
}
