package memory

// KindName discriminates the Kind tagged union.
type KindName string

const (
	KindImage        KindName = "image"
	KindVideo        KindName = "video"
	KindAudio        KindName = "audio"
	KindCode         KindName = "code"
	KindDocument     KindName = "document"
	KindSpreadsheet  KindName = "spreadsheet"
	KindPresentation KindName = "presentation"
	KindArchive      KindName = "archive"
	KindDatabase     KindName = "database"
	KindFolder       KindName = "folder"
	KindUnknown      KindName = "unknown"
)

// ImageAttrs holds the attributes of an Image kind. Missing numeric
// attributes are zero-valued, never absent.
type ImageAttrs struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// VideoAttrs holds the attributes of a Video kind.
type VideoAttrs struct {
	DurationMs int64  `json:"duration_ms"`
	Format     string `json:"format"`
}

// AudioAttrs holds the attributes of an Audio kind.
type AudioAttrs struct {
	DurationMs int64  `json:"duration_ms"`
	Format     string `json:"format"`
}

// CodeAttrs holds the attributes of a Code kind.
type CodeAttrs struct {
	Language string `json:"language"`
	Lines    int    `json:"lines"`
}

// DocumentAttrs holds the attributes of a Document kind. PageCount is
// optional since not every document format exposes a page count.
type DocumentAttrs struct {
	Format    string `json:"format"`
	PageCount *int   `json:"page_count,omitempty"`
}

// SpreadsheetAttrs holds the attributes of a Spreadsheet kind.
type SpreadsheetAttrs struct {
	SheetCount int `json:"sheet_count"`
}

// PresentationAttrs holds the attributes of a Presentation kind.
type PresentationAttrs struct {
	SlideCount int `json:"slide_count"`
}

// ArchiveAttrs holds the attributes of an Archive kind.
type ArchiveAttrs struct {
	ItemCount int `json:"item_count"`
}

// Kind is a sum type over a Memory's logical file category, implemented as
// a discriminant plus one populated attribute pointer. Exactly the field
// matching Name is non-nil; this keeps invalid combinations (e.g. an Image
// with a duration) unrepresentable outside of constructing Kind by hand.
type Kind struct {
	Name         KindName          `json:"name"`
	Image        *ImageAttrs       `json:"image,omitempty"`
	Video        *VideoAttrs       `json:"video,omitempty"`
	Audio        *AudioAttrs       `json:"audio,omitempty"`
	Code         *CodeAttrs        `json:"code,omitempty"`
	Document     *DocumentAttrs    `json:"document,omitempty"`
	Spreadsheet  *SpreadsheetAttrs `json:"spreadsheet,omitempty"`
	Presentation *PresentationAttrs `json:"presentation,omitempty"`
	Archive      *ArchiveAttrs     `json:"archive,omitempty"`
}

// NewImageKind builds an Image variant.
func NewImageKind(width, height int, format string) Kind {
	return Kind{Name: KindImage, Image: &ImageAttrs{Width: width, Height: height, Format: format}}
}

// NewVideoKind builds a Video variant.
func NewVideoKind(durationMs int64, format string) Kind {
	return Kind{Name: KindVideo, Video: &VideoAttrs{DurationMs: durationMs, Format: format}}
}

// NewAudioKind builds an Audio variant.
func NewAudioKind(durationMs int64, format string) Kind {
	return Kind{Name: KindAudio, Audio: &AudioAttrs{DurationMs: durationMs, Format: format}}
}

// NewCodeKind builds a Code variant.
func NewCodeKind(language string, lines int) Kind {
	return Kind{Name: KindCode, Code: &CodeAttrs{Language: language, Lines: lines}}
}

// NewDocumentKind builds a Document variant. pageCount may be nil.
func NewDocumentKind(format string, pageCount *int) Kind {
	return Kind{Name: KindDocument, Document: &DocumentAttrs{Format: format, PageCount: pageCount}}
}

// NewSpreadsheetKind builds a Spreadsheet variant.
func NewSpreadsheetKind(sheetCount int) Kind {
	return Kind{Name: KindSpreadsheet, Spreadsheet: &SpreadsheetAttrs{SheetCount: sheetCount}}
}

// NewPresentationKind builds a Presentation variant.
func NewPresentationKind(slideCount int) Kind {
	return Kind{Name: KindPresentation, Presentation: &PresentationAttrs{SlideCount: slideCount}}
}

// NewArchiveKind builds an Archive variant.
func NewArchiveKind(itemCount int) Kind {
	return Kind{Name: KindArchive, Archive: &ArchiveAttrs{ItemCount: itemCount}}
}

// NewDatabaseKind builds a Database variant; it carries no attributes.
func NewDatabaseKind() Kind {
	return Kind{Name: KindDatabase}
}

// NewFolderKind builds a Folder variant; it carries no attributes.
func NewFolderKind() Kind {
	return Kind{Name: KindFolder}
}

// NewUnknownKind builds the Unknown variant used when a file's category
// cannot be determined from its extension or content.
func NewUnknownKind() Kind {
	return Kind{Name: KindUnknown}
}

// KindFromExtension maps a lowercase, dot-less file extension to its Kind
// name per the recognized-extension tables. It returns KindUnknown for
// anything not in those tables; callers still need to fill in attributes
// via the matching constructor once the file has been inspected.
func KindFromExtension(ext string) KindName {
	switch ext {
	case "jpg", "jpeg", "png", "gif", "webp", "bmp", "tiff", "heic", "heif", "raw", "cr2", "nef":
		return KindImage
	case "mp4", "mov", "avi", "mkv", "webm", "m4v":
		return KindVideo
	case "mp3", "wav", "flac", "m4a", "ogg", "aac":
		return KindAudio
	case "pdf", "doc", "docx", "txt", "md", "rtf", "odt":
		return KindDocument
	case "xls", "xlsx", "csv", "ods":
		return KindSpreadsheet
	case "ppt", "pptx", "odp":
		return KindPresentation
	case "rs", "py", "js", "ts", "jsx", "tsx", "go", "java", "c", "cpp", "h", "hpp",
		"rb", "php", "swift", "kt", "scala", "sh", "bash", "zsh", "sql", "html", "css",
		"json", "yaml", "yml", "toml", "xml":
		return KindCode
	case "zip", "tar", "gz", "7z", "rar":
		return KindArchive
	default:
		return KindUnknown
	}
}
