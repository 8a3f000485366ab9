// Package engine inspects assistant messages for embedded tool calls,
// validates them against the registered tool schemas, executes the matching
// tool and renders the outcome as a tool-role message ready to append to the
// transcript. Inspection is pure; execution never retries and never lets a
// handler failure escape as anything but a message the model can react to.
package engine
