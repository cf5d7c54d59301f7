package extract

import (
	"context"
	"os"

	"github.com/dhowden/tag"

	"github.com/hippo-mem/hippo/internal/memory"
)

// AudioExtractor reads embedded tags (ID3/MP4/FLAC/Vorbis) via
// github.com/dhowden/tag, then falls back to the same ffprobe invocation
// VideoExtractor uses for codec/sample-rate/channels/duration.
type AudioExtractor struct{}

// NewAudioExtractor builds an AudioExtractor.
func NewAudioExtractor() *AudioExtractor {
	return &AudioExtractor{}
}

// Extract reads tags and container properties for path. Metadata.Title is
// overwritten by the embedded tag title when present.
func (e *AudioExtractor) Extract(_ context.Context, path string, _ memory.Kind) (memory.Metadata, error) {
	info := &memory.AudioInfo{}
	var meta memory.Metadata

	if f, err := os.Open(path); err == nil {
		defer f.Close()
		if m, err := tag.ReadFrom(f); err == nil {
			info.Artist = m.Artist()
			info.Album = m.Album()
			info.Title = m.Title()
			info.Year = m.Year()
			if info.Title != "" {
				title := info.Title
				meta.Title = &title
			}
		}
	}

	if ffprobePath, err := ffprobeLookup(); err == nil {
		if result, err := runFFprobe(ffprobePath, path); err == nil {
			info.DurationMs = result.durationMs()
			if a := result.audioStream(); a != nil {
				info.Channels = a.Channels
				info.SampleRate = a.sampleRate()
				info.Bitrate = a.bitrate()
			}
			// Approximate bitrate when ffprobe didn't report one directly,
			// from overall file size and duration.
			if info.Bitrate == 0 && info.DurationMs > 0 {
				info.Bitrate = result.fileSize() * 8 * 1000 / info.DurationMs
			}
		}
	}

	meta.Audio = info
	return meta, nil
}
