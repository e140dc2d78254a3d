// Package llm provides an OpenRouter chat completion client.
//
// This package is used by:
//   - Nutrition service: compute macro-nutrients for a recipe's ingredient list
//   - recipectl: list upstream models and stream ad-hoc prompts
//
// # Structured Output
//
// A ChatRequest may carry a ResponseFormat describing a JSON schema. The schema
// is rendered into the system message as an instruction. The response_format
// field itself is only forwarded upstream when Config.NativeSchema is set.
// Strict formats are validated
// locally after the call; a mismatch is an InvalidSchema error.
//
// # Entry Points
//
// New: construct client from Config.
// Client.SendChat: single completion with retry and optional schema validation.
// Client.StreamChat: server-sent-event streaming, one callback per text delta.
// Client.GetModels: upstream model catalogue.
// Client.WithDefaultModel, Client.WithDefaultParams: derive a reconfigured copy.
//
// # Retry Behaviour
//
// SendChat makes up to 3 attempts. Only Network and RateLimit errors are
// retried, after 2^attempt seconds. Context cancellation aborts retries
// immediately. Every other error kind is returned on first occurrence.
//
// # Concurrency
//
// A Client is immutable after construction and safe for concurrent use.
// Per-call model and parameters are passed through ChatRequest.
package llm
