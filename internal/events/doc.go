// Package events lets the store announce committed changes without knowing
// who listens.
//
// The store emits a ChangeEvent after every successful mutation. Handlers
// (the generation service, loggers, tests) register with an EventEmitter and
// react to the collections they care about.
package events
