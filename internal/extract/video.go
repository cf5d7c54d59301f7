package extract

import (
	"context"

	"github.com/hippo-mem/hippo/internal/memory"
)

// VideoExtractor shells out to ffprobe for duration, codec, and the first
// audio stream's codec/sample-rate/channels.
type VideoExtractor struct{}

// NewVideoExtractor builds a VideoExtractor.
func NewVideoExtractor() *VideoExtractor {
	return &VideoExtractor{}
}

// Extract probes path with ffprobe. If the binary isn't on PATH, it
// returns an empty Metadata rather than an error — a missing probe binary
// is an environment condition, not a per-file failure, and is logged once
// per pipeline run by the caller rather than once per file here.
func (e *VideoExtractor) Extract(_ context.Context, path string, _ memory.Kind) (memory.Metadata, error) {
	ffprobePath, err := ffprobeLookup()
	if err != nil {
		return memory.Metadata{}, nil
	}

	result, err := runFFprobe(ffprobePath, path)
	if err != nil {
		return memory.Metadata{}, nil
	}

	info := &memory.VideoInfo{DurationMs: result.durationMs()}
	if v := result.videoStream(); v != nil {
		info.Width = v.Width
		info.Height = v.Height
		info.Codec = v.CodecName
		info.FrameRate = v.frameRate()
		info.Bitrate = v.bitrate()
	}
	if info.Bitrate == 0 {
		info.Bitrate = result.Format.bitrateInt()
	}

	meta := memory.Metadata{Video: info}

	if a := result.audioStream(); a != nil {
		meta.Audio = &memory.AudioInfo{
			Channels:   a.Channels,
			SampleRate: a.sampleRate(),
			Bitrate:    a.bitrate(),
		}
	}

	return meta, nil
}
