package avatar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ErrUnsupportedImage is returned for payloads that cannot be decoded as an
// image, or whose extension names a format the pipeline cannot re-encode.
var ErrUnsupportedImage = errors.New("unsupported or corrupt image")

// Side is the edge length avatars are normalized to.
const Side = 250

// URLPrefix is the public route processed avatars are served under.
const URLPrefix = "/avatars"

// extensions imaging can both decode and encode by filename.
var supportedExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
}

// Result describes a processed avatar.
type Result struct {
	URL      string // public relative URL, e.g. /avatars/avatar-<id>.png
	FileName string
	Path     string // final location inside the public directory
}

// Pipeline stages uploaded images in a temporary directory, normalizes them
// to a fixed square, and moves them into the public avatar directory.
type Pipeline struct {
	tmpDir    string
	publicDir string
}

func NewPipeline(tmpDir, publicDir string) (*Pipeline, error) {
	for _, dir := range []string{tmpDir, publicDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create avatar dir %s: %w", dir, err)
		}
	}
	return &Pipeline{tmpDir: tmpDir, publicDir: publicDir}, nil
}

// PublicDir returns the directory processed avatars are served from.
func (p *Pipeline) PublicDir() string {
	return p.publicDir
}

// Process consumes the uploaded image stream and publishes the normalized
// avatar for userID. The staging file never survives Process: it is either
// moved into the public directory or removed on the way out.
func (p *Pipeline) Process(userID string, upload io.Reader, originalName string) (Result, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := supportedExts[ext]; !ok {
		return Result{}, fmt.Errorf("%w: extension %q", ErrUnsupportedImage, ext)
	}

	staging := filepath.Join(p.tmpDir, fmt.Sprintf("avatar-%s%s", uuid.NewString(), ext))
	if err := stage(staging, upload); err != nil {
		return Result{}, err
	}
	defer os.Remove(staging) // no-op once the file has been moved

	img, err := imaging.Open(staging)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	resized := imaging.Resize(img, Side, Side, imaging.Lanczos)
	if err := imaging.Save(resized, staging); err != nil {
		return Result{}, fmt.Errorf("save resized avatar: %w", err)
	}

	fileName := fmt.Sprintf("avatar-%s%s", userID, ext)
	dest := filepath.Join(p.publicDir, fileName)
	if err := os.Rename(staging, dest); err != nil {
		return Result{}, fmt.Errorf("move avatar into place: %w", err)
	}

	return Result{
		URL:      URLPrefix + "/" + fileName,
		FileName: fileName,
		Path:     dest,
	}, nil
}

func stage(path string, upload io.Reader) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	if _, err := io.Copy(f, upload); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("stage upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close staging file: %w", err)
	}
	return nil
}
