package memory

import "time"

// Location is an optional geographic tag on a Memory, typically derived
// from image or video EXIF/GPS data. Alt, Place, City, and Country are
// optional; Lat/Lon are only meaningful when Location itself is present.
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Alt     *float64 `json:"alt,omitempty"`
	Place   *string  `json:"place,omitempty"`
	City    *string  `json:"city,omitempty"`
	Country *string  `json:"country,omitempty"`
}

// ExifInfo is the image-specific sub-record of Metadata, populated by the
// image extractor from EXIF tags when present.
type ExifInfo struct {
	CameraMake  string     `json:"camera_make,omitempty"`
	CameraModel string     `json:"camera_model,omitempty"`
	TakenAt     *time.Time `json:"taken_at,omitempty"`
	ISO         int        `json:"iso,omitempty"`
	FocalLength float64    `json:"focal_length_mm,omitempty"`
	Orientation int        `json:"orientation,omitempty"`
}

// VideoInfo is the video-specific sub-record of Metadata. DurationMs
// duplicates Kind.Video.DurationMs; it is the extractor's raw probe
// result, which the pipeline copies onto Kind when building it.
type VideoInfo struct {
	DurationMs int64   `json:"duration_ms,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Codec      string  `json:"codec,omitempty"`
	FrameRate  float64 `json:"frame_rate,omitempty"`
	Bitrate    int64   `json:"bitrate,omitempty"`
}

// AudioInfo is the audio-specific sub-record of Metadata, combining
// container-level probing with embedded tag data.
type AudioInfo struct {
	DurationMs int64  `json:"duration_ms,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	Title      string `json:"title,omitempty"`
	Year       int    `json:"year,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Channels   int    `json:"channels,omitempty"`
	Bitrate    int64  `json:"bitrate,omitempty"`
}

// CodeFunction is a single top-level function or method found in a source
// file, by tree-sitter AST walk or line-based pattern match.
type CodeFunction struct {
	Name       string `json:"name"`
	LineStart  int    `json:"line_start"`
	LineEnd    int    `json:"line_end"`
	IsPublic   bool   `json:"is_public"`
	DocComment string `json:"doc_comment,omitempty"`
}

// CodeInfo is the source-code sub-record of Metadata, populated from a
// tree-sitter parse (or the line-based fallback when no grammar applies).
// Lines duplicates Kind.Code.Lines; it is the extractor's raw count, which
// the pipeline copies onto Kind when building it.
type CodeInfo struct {
	Lines        int            `json:"lines,omitempty"`
	Imports      []string       `json:"imports,omitempty"`
	Exports      []string       `json:"exports,omitempty"`
	Functions    []CodeFunction `json:"functions,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
}

// AIInfo holds fields an external AI service derived for a Memory. hippo
// never computes these itself; extractors only attach them when an AI
// service was configured and responded.
type AIInfo struct {
	Summary       *string  `json:"summary,omitempty"`
	Caption       *string  `json:"caption,omitempty"`
	SuggestedTags []string `json:"suggested_tags,omitempty"`
}

// Metadata is a bag of optional derived fields attached to a Memory. Every
// field is optional; extractors populate only what they could determine.
type Metadata struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	FileSize    *int64  `json:"file_size,omitempty"`
	MimeType    *string `json:"mime_type,omitempty"`
	// Hash is the content fingerprint defined by the hashing strategy, hex
	// encoded. Absent for files that were never hashed (e.g. too large).
	Hash *string `json:"hash,omitempty"`

	Exif  *ExifInfo  `json:"exif,omitempty"`
	Video *VideoInfo `json:"video,omitempty"`
	Audio *AudioInfo `json:"audio,omitempty"`

	Location *Location `json:"location,omitempty"`

	TextPreview *string `json:"text_preview,omitempty"`
	WordCount   *int    `json:"word_count,omitempty"`

	Code *CodeInfo `json:"code,omitempty"`
	AI   *AIInfo   `json:"ai,omitempty"`
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func i64Ptr(i int64) *int64   { return &i }
