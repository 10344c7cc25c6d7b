// Package models defines domain entities for the zdx recording transfer pipeline.
//
// All types here are transient: they are produced by the Zoom API client
// and the downloader during a single run and are never persisted.
//
//   - [Credential] : a cached API session token with its refresh deadline
//   - [User] : the resolved Zoom account a run operates on
//   - [Recording] / [RecordingFile] : one meeting's set of media streams
//   - [DownloadedFile] : a recording file written to local disk
//   - [RemoteLocation] : where a recording's files live on the rclone remote
//   - [NotificationMessage] : the payload summarized for Slack
package models
