package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/SameriteRL/Face-Recognizer/pkg/logging"
)

// The models are published in the OpenCV model zoo; the media endpoint
// resolves the repository's LFS pointers to the actual ONNX files.
const modelZoo = "https://media.githubusercontent.com/media/opencv/opencv_zoo/main/models"

// cmdDownloadModels fetches the detector and embedder models into the
// configured locations.
func cmdDownloadModels(args []string) error {
	models := []struct {
		Name string
		URL  string
		Path string
	}{
		{
			Name: "YuNet face detector",
			URL:  modelZoo + "/face_detection_yunet/face_detection_yunet_2023mar.onnx",
			Path: cfg.Models.DetectorPath,
		},
		{
			Name: "SFace face embedder",
			URL:  modelZoo + "/face_recognition_sface/face_recognition_sface_2021dec.onnx",
			Path: cfg.Models.EmbedderPath,
		},
	}

	for _, model := range models {
		if _, err := os.Stat(model.Path); err == nil {
			logging.Infof("%s already exists at %s, skipping", model.Name, model.Path)
			continue
		}

		logging.Infof("Downloading %s...", model.Name)
		if err := downloadModel(model.Name, model.URL, model.Path); err != nil {
			return fmt.Errorf("failed to download %s: %w", model.Name, err)
		}
	}

	logging.Info("All models downloaded")
	return nil
}

func downloadModel(name, url, targetPath string) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	client := &http.Client{
		Timeout: 10 * time.Minute,
	}

	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	// Download to a temp file first so an interrupted transfer never leaves
	// a truncated model behind.
	tmpPath := targetPath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	bar := progressbar.DefaultBytes(resp.ContentLength, name)
	_, err = io.Copy(io.MultiWriter(out, bar), resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, targetPath)
}
