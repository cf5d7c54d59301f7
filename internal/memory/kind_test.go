package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindFromExtension(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want KindName
	}{
		{name: "jpeg", ext: "jpg", want: KindImage},
		{name: "heic", ext: "heic", want: KindImage},
		{name: "mp4", ext: "mp4", want: KindVideo},
		{name: "flac", ext: "flac", want: KindAudio},
		{name: "go source", ext: "go", want: KindCode},
		{name: "rust source", ext: "rs", want: KindCode},
		{name: "markdown", ext: "md", want: KindDocument},
		{name: "spreadsheet", ext: "xlsx", want: KindSpreadsheet},
		{name: "presentation", ext: "pptx", want: KindPresentation},
		{name: "archive", ext: "tar", want: KindArchive},
		{name: "unrecognized", ext: "xyz", want: KindUnknown},
		{name: "empty", ext: "", want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindFromExtension(tt.ext))
		})
	}
}

func TestNewImageKind_PopulatesOnlyImageAttrs(t *testing.T) {
	k := NewImageKind(10, 10, "jpeg")

	assert.Equal(t, KindImage, k.Name)
	assert.NotNil(t, k.Image)
	assert.Equal(t, 10, k.Image.Width)
	assert.Equal(t, 10, k.Image.Height)
	assert.Equal(t, "jpeg", k.Image.Format)

	assert.Nil(t, k.Video)
	assert.Nil(t, k.Audio)
	assert.Nil(t, k.Code)
	assert.Nil(t, k.Document)
}

func TestNewCodeKind_PopulatesLanguageAndLines(t *testing.T) {
	k := NewCodeKind("rust", 4)

	assert.Equal(t, KindCode, k.Name)
	assert.Equal(t, 4, k.Code.Lines)
	assert.Equal(t, "rust", k.Code.Language)
}

func TestNewDatabaseKind_CarriesNoAttrs(t *testing.T) {
	k := NewDatabaseKind()

	assert.Equal(t, KindDatabase, k.Name)
	assert.Nil(t, k.Image)
	assert.Nil(t, k.Video)
	assert.Nil(t, k.Audio)
	assert.Nil(t, k.Code)
	assert.Nil(t, k.Document)
	assert.Nil(t, k.Spreadsheet)
	assert.Nil(t, k.Presentation)
	assert.Nil(t, k.Archive)
}
