package services

import (
	"fmt"
	"strings"
	"time"
)

// extensionsByType maps provider recording type tags to output
// extensions. Tags are matched case-insensitively; anything not listed is
// skipped by the downloader with a warning.
var extensionsByType = map[string]string{
	"shared_screen_with_speaker_view(cc)": ".mp4",
	"shared_screen_with_speaker_view":     ".mp4",
	"shared_screen_with_gallery_view":     ".mp4",
	"shared_screen":                       ".mp4",
	"speaker_view":                        ".mp4",
	"gallery_view":                        ".mp4",
	"active_speaker":                      ".mp4",
	"audio_only":                          ".m4a",
	"closed_caption":                      ".vtt",
	"audio_transcript":                    ".vtt",
	"chat_file":                           ".txt",
}

// videoExtension marks the primary video artifact; only files carrying it
// trigger notifications.
const videoExtension = ".mp4"

// ExtensionFor returns the output extension for a recording file type
// tag. The second return value is false for unrecognized tags, which is a
// normal skip branch rather than an error.
func ExtensionFor(typeTag string) (string, bool) {
	ext, ok := extensionsByType[strings.ToLower(strings.TrimSpace(typeTag))]
	return ext, ok
}

// IsVideoFile reports whether a file name denotes the primary video
// artifact of a recording.
func IsVideoFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), videoExtension)
}

// BaseName builds the shared file name stem for a recording from its
// start time in the target timezone and the meeting name, e.g.
// "20 June 2024 - Weekly Sync Meeting".
func BaseName(localStart time.Time, meetingName string) string {
	return localStart.Format("02 January 2006") + " - " + meetingName
}

// FileName appends the group ordinal and extension to a base name. Files
// sharing a type tag are numbered _1.._N when the group holds more than
// one file; a lone file gets no suffix.
func FileName(base, ext string, index, groupSize int) string {
	if groupSize > 1 {
		return fmt.Sprintf("%s_%d%s", base, index, ext)
	}
	return base + ext
}
