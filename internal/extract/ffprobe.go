package extract

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
)

// ffprobeResult is the subset of ffprobe's JSON output extractors need:
// container duration/bitrate plus the first video and audio stream.
type ffprobeResult struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
	Bitrate  string `json:"bit_rate"`
}

type ffprobeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Channels   int    `json:"channels"`
	SampleRate string `json:"sample_rate"`
	BitRate    string `json:"bit_rate"`
	FrameRate  string `json:"r_frame_rate"`
}

// runFFprobe invokes `ffprobe -v quiet -print_format json -show_format
// -show_streams <path>` and parses the result.
func runFFprobe(ffprobePath, path string) (*ffprobeResult, error) {
	cmd := exec.Command(ffprobePath, "-v", "quiet", "-print_format", "json",
		"-show_format", "-show_streams", path)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	var result ffprobeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &result, nil
}

func (r *ffprobeResult) durationMs() int64 {
	d, _ := strconv.ParseFloat(r.Format.Duration, 64)
	return int64(d * 1000)
}

func (r *ffprobeResult) fileSize() int64 {
	s, _ := strconv.ParseInt(r.Format.Size, 10, 64)
	return s
}

func (f ffprobeFormat) bitrateInt() int64 {
	n, _ := strconv.ParseInt(f.Bitrate, 10, 64)
	return n
}

func (r *ffprobeResult) videoStream() *ffprobeStream {
	for i := range r.Streams {
		if r.Streams[i].CodecType == "video" {
			return &r.Streams[i]
		}
	}
	return nil
}

func (r *ffprobeResult) audioStream() *ffprobeStream {
	for i := range r.Streams {
		if r.Streams[i].CodecType == "audio" {
			return &r.Streams[i]
		}
	}
	return nil
}

func (s *ffprobeStream) frameRate() float64 {
	parts := splitFraction(s.FrameRate)
	if parts == nil {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}

func splitFraction(s string) []string {
	for i, c := range s {
		if c == '/' {
			return []string{s[:i], s[i+1:]}
		}
	}
	return nil
}

func (s *ffprobeStream) sampleRate() int {
	n, _ := strconv.Atoi(s.SampleRate)
	return n
}

func (s *ffprobeStream) bitrate() int64 {
	n, _ := strconv.ParseInt(s.BitRate, 10, 64)
	return n
}

// ffprobeLookup caches whether the ffprobe binary is available, so a
// missing binary is only logged once per pipeline run rather than once
// per file.
var ffprobeLookup = sync.OnceValues(func() (string, error) {
	return exec.LookPath("ffprobe")
})
