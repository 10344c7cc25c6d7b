// package tasks implements the recording transfer pipeline.
//
// The core abstraction is TransferEngine, which walks each discovered
// recording through a download → upload → notify → cleanup state machine.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks
