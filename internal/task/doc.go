// Package task runs background jobs: generating study artifacts for a new
// material and producing tutor replies. Jobs are queued in memory and
// processed by a fixed pool of workers so that they never block request
// handling. Jobs are not persisted; a restart drops whatever is queued.
package task
