// Package mock provides test doubles for ai.Provider.
//
// MockProvider lets tests run without a remote model and exercise the
// registry's failover and the classifier's retry and timeout handling.
//
// # Usage in Tests
//
//	// Default behavior returns DefaultResult
//	primary := mock.NewMockProvider("openai")
//
//	// Custom behavior injection
//	slow := mock.NewMockProvider("ollama").
//	    WithProcessFunc(func(ctx context.Context, msgs []ai.Message, opts ai.Options) (*ai.Response, error) {
//	        <-ctx.Done()
//	        return nil, ctx.Err()
//	    })
//
//	// Simulate a provider without credentials
//	primary.SetAvailable(false)
//
//	// Check call counts
//	count := primary.CallCount()
package mock
