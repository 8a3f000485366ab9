// Package runner drives the conversational turn loop: append user input,
// optionally augment the transcript with vector-recalled context, call the
// inference gateway, route replies through the tool invocation engine, and
// repeat until the model produces a final answer or the tool-loop bound is
// hit. One turn of a conversation runs at a time; distinct conversations are
// fully independent.
package runner
