// Package recognizer wires the detector, embedder, gallery and matcher into
// one service that identifies the faces in an image file.
package recognizer

import (
	"errors"
	"fmt"

	"github.com/SameriteRL/Face-Recognizer/pkg/config"
	"github.com/SameriteRL/Face-Recognizer/pkg/face"
	"github.com/SameriteRL/Face-Recognizer/pkg/gallery"
	"github.com/SameriteRL/Face-Recognizer/pkg/logging"
	"github.com/SameriteRL/Face-Recognizer/pkg/match"
	"github.com/SameriteRL/Face-Recognizer/pkg/vision"
)

// ErrNoGallery is returned when identification is attempted before a gallery
// has been built or loaded.
var ErrNoGallery = errors.New("no gallery loaded")

// Service owns the native model handles and the gallery for one matching
// session. It is not safe for concurrent use; the underlying models are not
// reentrant.
type Service struct {
	cfg *config.Config

	detector vision.Detector
	embedder vision.Embedder

	multiScale *face.MultiScaleDetector
	extractor  *face.Extractor
	matcher    *match.Matcher

	gallery gallery.Gallery
}

// New acquires the detector and embedder models named in the configuration.
// The caller must Close the service to release them.
func New(cfg *config.Config) (*Service, error) {
	backend, err := vision.ParseBackend(cfg.Models.Backend)
	if err != nil {
		return nil, err
	}

	detector, err := vision.NewYuNet(cfg.Models.DetectorPath, backend)
	if err != nil {
		return nil, err
	}

	embedder, err := vision.NewSFace(cfg.Models.EmbedderPath, backend)
	if err != nil {
		detector.Close()
		return nil, err
	}

	return &Service{
		cfg:      cfg,
		detector: detector,
		embedder: embedder,
		multiScale: face.NewMultiScaleDetector(
			detector,
			cfg.Detection.Window,
			cfg.Detection.ScaleStep,
			cfg.Detection.ScaleFloor,
		),
		extractor: face.NewExtractor(embedder),
		matcher:   match.NewMatcher(embedder.Similarity, cfg.Match.Threshold),
	}, nil
}

// Gallery returns the currently loaded gallery, or nil.
func (s *Service) Gallery() gallery.Gallery {
	return s.gallery
}

// BuildGallery walks the configured known-faces directory and replaces the
// session's gallery. When a cache file is configured, the result is saved
// to it. The onImage hook, if non-nil, is called per sample image.
func (s *Service) BuildGallery(onImage func(subject, path string)) error {
	builder := gallery.NewBuilder(s.multiScale, s.extractor)
	builder.OnImage = onImage

	g, err := builder.Build(s.cfg.Gallery.Dir)
	if err != nil {
		return err
	}
	s.gallery = g

	if s.cfg.Gallery.CacheFile == "" {
		return nil
	}
	cache, err := gallery.NewCache(s.cfg.Gallery.CacheFile, s.cfg.Gallery.EncryptCache)
	if err != nil {
		return err
	}
	return cache.Save(g)
}

// LoadGallery loads the cached gallery if one exists, falling back to a
// fresh build of the known-faces directory.
func (s *Service) LoadGallery() error {
	if s.cfg.Gallery.CacheFile != "" {
		cache, err := gallery.NewCache(s.cfg.Gallery.CacheFile, s.cfg.Gallery.EncryptCache)
		if err != nil {
			return err
		}
		g, err := cache.Load()
		if err == nil {
			s.gallery = g
			return nil
		}
		if !errors.Is(err, gallery.ErrCacheMiss) {
			logging.Warnf("gallery cache unusable, rebuilding: %v", err)
		}
	}
	return s.BuildGallery(nil)
}

// IdentifyFile detects every face in the image file and assigns each one an
// identity from the gallery. Overlapping multi-scale detections are
// collapsed first when dedup is enabled in the configuration.
func (s *Service) IdentifyFile(path string) ([]match.Match, error) {
	if s.gallery == nil {
		return nil, ErrNoGallery
	}

	img, err := vision.Decode(path)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	regions, err := s.multiScale.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("detect faces in %s: %w", path, err)
	}
	if s.cfg.Detection.DedupOverlap > 0 {
		regions = face.Dedupe(regions, s.cfg.Detection.DedupOverlap)
	}
	logging.Infof("%s: %d face(s) detected", path, len(regions))

	probes := make([]match.Probe, 0, len(regions))
	for _, region := range regions {
		emb, err := s.extractor.Extract(img, region)
		if err != nil {
			return nil, fmt.Errorf("embed face %s in %s: %w", region, path, err)
		}
		probes = append(probes, match.Probe{Region: region, Embedding: emb})
	}

	return s.matcher.IdentifyAll(probes, s.gallery), nil
}

// Close releases the native model handles. Safe to call once.
func (s *Service) Close() error {
	var firstErr error
	if s.detector != nil {
		if err := s.detector.Close(); err != nil {
			firstErr = err
		}
		s.detector = nil
	}
	if s.embedder != nil {
		if err := s.embedder.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.embedder = nil
	}
	return firstErr
}
