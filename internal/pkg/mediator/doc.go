// Package mediator dispatches typed requests to their handlers through a
// statically composed chain of behaviors.
//
// Every registered handler is wrapped, outermost first, by:
//
//	validation -> logging -> observability -> handler
//
// The validation behavior runs the validators registered for the request type
// concurrently. When any of them reports a finding, the chain short-circuits
// with an Invalid result of the handler's response type and the handler is not
// called. Response types describe their own failure through
// result.InvalidFactory; the mapping from response type to factory is cached
// process-wide.
package mediator
