package model

import (
	"regexp"
	"strconv"
)

// Supported image content types.
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeGIF  = "image/gif"
)

// FilenameRefMaxLen bounds the length of a stored filename reference.
// Values at or above it are always treated as image bytes.
const FilenameRefMaxLen = 100

var (
	mimeToExt = map[string]string{MimeJPEG: "jpg", MimePNG: "png", MimeGIF: "gif"}
	extToMime = map[string]string{"jpg": MimeJPEG, "png": MimePNG, "gif": MimeGIF}

	// Only this service writes references and it always writes <id>.<ext>.
	filenameRef = regexp.MustCompile(`^[0-9]+\.(jpg|png|gif)$`)
)

// ExtensionForMime returns the canonical extension (without dot) of a
// supported mime type.
func ExtensionForMime(mime string) (string, bool) {
	ext, ok := mimeToExt[mime]
	return ext, ok
}

// MimeForExtension is the inverse of ExtensionForMime.
func MimeForExtension(ext string) (string, bool) {
	mime, ok := extToMime[ext]
	return mime, ok
}

// ImageFilename returns the deterministic blob name of a post image.
func ImageFilename(postID uint64, mime string) (string, bool) {
	ext, ok := ExtensionForMime(mime)
	if !ok {
		return "", false
	}
	return strconv.FormatUint(postID, 10) + "." + ext, true
}

// ImageKind tells which representation an ImageData holds.
type ImageKind int

const (
	ImageInline ImageKind = iota
	ImageReferenced
)

func (k ImageKind) String() string {
	if k == ImageReferenced {
		return "referenced"
	}
	return "inline"
}

// ImageData is the decoded content of posts.imgdata: either the raw image
// bytes (legacy rows) or the filename of a blob in the image directory.
type ImageData struct {
	Kind     ImageKind
	Inline   []byte
	Filename string
}

func InlineImage(b []byte) ImageData { return ImageData{Kind: ImageInline, Inline: b} }

func ReferencedImage(name string) ImageData {
	return ImageData{Kind: ImageReferenced, Filename: name}
}

// DecodeImageData classifies a raw column value. A value is a reference
// only when it is short and shaped exactly like a name this service
// writes; everything else, including tiny images, is inline bytes.
func DecodeImageData(raw []byte) ImageData {
	if len(raw) < FilenameRefMaxLen && filenameRef.Match(raw) {
		return ReferencedImage(string(raw))
	}
	return InlineImage(raw)
}
