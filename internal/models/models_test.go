package models

import (
	"testing"
	"time"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("failed to load location %s: %v", name, err)
	}
	return loc
}

func TestCredentialValid(t *testing.T) {
	now := time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC)

	tc := []struct {
		name string
		cred *Credential
		want bool
	}{
		{name: "nil credential", cred: nil, want: false},
		{name: "empty token", cred: &Credential{ExpiresAt: now.Add(time.Hour)}, want: false},
		{name: "expired", cred: &Credential{AccessToken: "tok", ExpiresAt: now.Add(-time.Second)}, want: false},
		{name: "expiring now", cred: &Credential{AccessToken: "tok", ExpiresAt: now}, want: false},
		{name: "valid", cred: &Credential{AccessToken: "tok", ExpiresAt: now.Add(time.Hour)}, want: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cred.Valid(now); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEffectiveDuration(t *testing.T) {
	start := time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)

	tc := []struct {
		name     string
		declared int
		files    []RecordingFile
		want     int
	}{
		{
			name:     "declared wins without files",
			declared: 45,
			want:     45,
		},
		{
			name:     "computed wins over short declared",
			declared: 3,
			files: []RecordingFile{
				{Start: start, End: start.Add(40 * time.Minute)},
			},
			want: 40,
		},
		{
			name:     "declared wins over short computed",
			declared: 45,
			files: []RecordingFile{
				{Start: start, End: start.Add(10 * time.Minute)},
			},
			want: 45,
		},
		{
			name:     "span covers earliest start to latest end",
			declared: 1,
			files: []RecordingFile{
				{Start: start.Add(5 * time.Minute), End: start.Add(20 * time.Minute)},
				{Start: start, End: start.Add(10 * time.Minute)},
			},
			want: 20,
		},
		{
			name:     "partial span rounds up",
			declared: 1,
			files: []RecordingFile{
				{Start: start, End: start.Add(2*time.Minute + 30*time.Second)},
			},
			want: 3,
		},
		{
			name:     "files without timestamps ignored",
			declared: 7,
			files: []RecordingFile{
				{},
				{Start: start},
			},
			want: 7,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Recording{Duration: tt.declared, Files: tt.files}
			if got := rec.EffectiveDuration(); got != tt.want {
				t.Errorf("EffectiveDuration() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDatePartition(t *testing.T) {
	melbourne := mustLoc(t, "Australia/Melbourne")

	// 20 June 2024 23:30 UTC is already 21 June in Melbourne.
	rec := &Recording{StartTime: time.Date(2024, 6, 20, 23, 30, 0, 0, time.UTC)}

	if got := rec.DatePartition(time.UTC); got != "2024-06-20" {
		t.Errorf("DatePartition(UTC) = %s, want 2024-06-20", got)
	}
	if got := rec.DatePartition(melbourne); got != "2024-06-21" {
		t.Errorf("DatePartition(Melbourne) = %s, want 2024-06-21", got)
	}
}

func TestRemoteLocation(t *testing.T) {
	loc := RemoteLocation{RemoteName: "recordingdrive", BasePath: "Recordings/Meetings", DatePartition: "2024-06-20"}

	if got := loc.Dir(); got != "recordingdrive:Recordings/Meetings/2024-06-20" {
		t.Errorf("Dir() = %s", got)
	}
	if got := loc.RelativePath(); got != "Recordings/Meetings/2024-06-20" {
		t.Errorf("RelativePath() = %s", got)
	}

	loc.BasePath = ""
	if got := loc.RelativePath(); got != "2024-06-20" {
		t.Errorf("RelativePath() without base = %s", got)
	}
}
