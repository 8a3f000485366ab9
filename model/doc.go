// Package model defines the Gateway interface to a remote text-generation
// service (one-shot completion, multi-turn chat, batch embedding) plus a
// scriptable mock for tests and examples. Concrete transports live in
// sub-packages (ollama, openai); orchestration code depends only on Gateway.
package model
