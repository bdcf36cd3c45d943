package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SameriteRL/Face-Recognizer/pkg/face"
	"github.com/SameriteRL/Face-Recognizer/pkg/logging"
	"github.com/SameriteRL/Face-Recognizer/pkg/vision"
)

// supportedExts lists the raster formats cv::imread can decode. Files with
// any other extension inside a subject directory are ignored.
var supportedExts = map[string]bool{
	"bmp": true, "dib": true,
	"jpeg": true, "jpg": true, "jpe": true, "jp2": true,
	"png": true, "webp": true, "avif": true,
	"pbm": true, "pgm": true, "ppm": true, "pxm": true, "pnm": true, "pfm": true,
	"sr": true, "ras": true,
	"tiff": true, "tif": true,
	"exr": true, "hdr": true, "pic": true,
}

// SupportedImage reports whether the file name has a supported raster
// image extension.
func SupportedImage(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return supportedExts[ext]
}

// Builder walks a directory of labeled sample images and harvests one
// embedding per detected face.
//
// The expected layout is one subdirectory per subject, with the sample
// images directly inside:
//
//	known-faces/
//	├── alice/
//	│   ├── photo1.png
//	│   └── photo2.jpg
//	└── bob/
//	    └── photo1.pgm
//
// Plain files at the root and unsupported files inside subject directories
// are ignored.
type Builder struct {
	Detector  *face.MultiScaleDetector
	Extractor *face.Extractor

	// Decode opens one sample image. Defaults to vision.Decode.
	Decode func(path string) (vision.Image, error)

	// OnImage, when set, is called before each sample image is processed.
	OnImage func(subject, path string)
}

// NewBuilder returns a Builder using the default image decoder.
func NewBuilder(detector *face.MultiScaleDetector, extractor *face.Extractor) *Builder {
	return &Builder{
		Detector:  detector,
		Extractor: extractor,
		Decode:    vision.Decode,
	}
}

// Build walks the root directory and returns the resulting gallery.
//
// An unreadable sample image is logged and skipped; a detector or embedder
// failure aborts the whole build and no partial gallery is returned. A walk
// that produces zero embeddings overall fails with ErrEmptyGallery.
func (b *Builder) Build(root string) (Gallery, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read gallery directory: %w", err)
	}

	g := Gallery{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		subject := entry.Name()
		embs, err := b.buildSubject(subject, filepath.Join(root, subject))
		if err != nil {
			return nil, err
		}
		if len(embs) == 0 {
			continue
		}
		g[subject] = embs
	}

	if g.Count() == 0 {
		return nil, fmt.Errorf("%s: %w", root, ErrEmptyGallery)
	}

	logging.Infof("gallery built: %d subject(s), %d embedding(s)", len(g), g.Count())
	return g, nil
}

// buildSubject harvests the embeddings for one subject directory. Every
// detected region of every readable sample contributes one embedding.
func (b *Builder) buildSubject(subject, dir string) ([]face.Embedding, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Warnf("skipping unreadable subject directory %s: %v", dir, err)
		return nil, nil
	}

	var embs []face.Embedding
	for _, entry := range entries {
		if entry.IsDir() || !SupportedImage(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if b.OnImage != nil {
			b.OnImage(subject, path)
		}

		sampleEmbs, err := b.buildSample(path)
		if err != nil {
			return nil, err
		}
		embs = append(embs, sampleEmbs...)
	}
	return embs, nil
}

// buildSample embeds every face found in one sample image. A decode failure
// is recovered locally by skipping the file.
func (b *Builder) buildSample(path string) ([]face.Embedding, error) {
	decode := b.Decode
	if decode == nil {
		decode = vision.Decode
	}

	img, err := decode(path)
	if err != nil {
		logging.Warnf("skipping unreadable sample %s: %v", path, err)
		return nil, nil
	}
	defer img.Close()

	regions, err := b.Detector.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("detect faces in %s: %w", path, err)
	}

	var embs []face.Embedding
	for _, region := range regions {
		emb, err := b.Extractor.Extract(img, region)
		if err != nil {
			return nil, fmt.Errorf("embed face %s in %s: %w", region, path, err)
		}
		embs = append(embs, emb)
	}
	return embs, nil
}

// CountSamples returns the number of supported sample images under the
// gallery root, for progress reporting.
func CountSamples(root string) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("read gallery directory: %w", err)
	}

	total := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(root, entry.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			if !f.IsDir() && SupportedImage(f.Name()) {
				total++
			}
		}
	}
	return total, nil
}
