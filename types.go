package quackquery

// --- Automation types ---

// Intent is a structured representation of a recognized automation command.
// Produced by a Capability's parser, consumed by the same capability's
// executor, and discarded after the command completes.
type Intent struct {
	Operation string            `json:"operation"`
	Params    map[string]string `json:"params,omitempty"`
}

// Param returns a named parameter, or "" if absent.
func (i Intent) Param(key string) string {
	return i.Params[key]
}

// ExecResult is the outcome of executing an Intent. Expected failures
// (file not found, API rejection, app not installed) are reported in Error
// rather than as Go errors, so the command loop always survives them.
type ExecResult struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// OK reports whether the execution succeeded.
func (r ExecResult) OK() bool { return r.Error == "" }

// --- LLM protocol types ---

type ChatMessage struct {
	Role    string      `json:"role"` // "system", "user", "assistant"
	Content string      `json:"content"`
	Images  []ImageData `json:"images,omitempty"`
}

type ImageData struct {
	MimeType string `json:"mime_type"`
	Base64   string `json:"base64"`
}

// AudioData carries a recorded audio clip for transcription.
type AudioData struct {
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

type ChatResponse struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// --- Conversation history (database records) ---

type Conversation struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	CreatedAt int64  `json:"created_at"`
}

type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"` // "user" or "assistant"
	Content        string `json:"content"`
	CreatedAt      int64  `json:"created_at"`
}

// --- ChatMessage constructors ---

func UserMessage(text string) ChatMessage {
	return ChatMessage{Role: "user", Content: text}
}

func SystemMessage(text string) ChatMessage {
	return ChatMessage{Role: "system", Content: text}
}

func AssistantMessage(text string) ChatMessage {
	return ChatMessage{Role: "assistant", Content: text}
}
