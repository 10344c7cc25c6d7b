// Package services contains the external-facing clients behind the
// recording transfer pipeline.
//
//   - [TokenManager] : cached server-to-server OAuth credential exchange
//   - [ZoomService] : user resolution and recording discovery
//   - [Downloader] : chunked recording file retrieval with type-based naming
//   - [RcloneClient] : remote storage operations via the exec'd rclone tool
//   - [SlackClient] : webhook notifications for uploaded videos
//
// Pure classification helpers ([ExtensionFor], [BaseName], [FileName]) live
// here as package functions; everything stateful takes its dependencies
// through an options struct so tests can inject fakes.
package services
