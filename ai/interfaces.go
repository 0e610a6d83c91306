package ai

import (
	"context"
	"time"

	"github.com/poiesic/ledgersync/core"
)

// Provider performs remote classification calls against one model backend.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name returns the registry name of the provider, e.g. "openai".
	Name() string

	// Process sends messages to the backend and returns the model output.
	// Backend failures are returned as *ProviderError; deadline expiry
	// matches ErrProviderTimeout.
	Process(ctx context.Context, messages []Message, opts Options) (*Response, error)
}

// Availability is implemented by providers that can report readiness,
// for example whether credentials are configured.
type Availability interface {
	Available() bool
}

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a provider conversation.
type Message struct {
	Role    Role
	Content string
}

// Options tune a single Process call. Zero values use provider defaults.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// Response is the output of a Process call.
type Response struct {
	Result  string
	Model   string
	Usage   core.Usage
	Latency time.Duration
}
