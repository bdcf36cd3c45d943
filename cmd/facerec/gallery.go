package main

import (
	"fmt"
	"os"

	"github.com/SameriteRL/Face-Recognizer/pkg/gallery"
	"github.com/SameriteRL/Face-Recognizer/pkg/recognizer"
	"github.com/schollz/progressbar/v3"
)

// cmdBuildGallery walks the known-faces directory, embeds every sample and
// saves the result to the configured cache.
func cmdBuildGallery(args []string) error {
	svc, err := recognizer.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	total, err := gallery.CountSamples(cfg.Gallery.Dir)
	if err != nil {
		return err
	}
	if total == 0 {
		return fmt.Errorf("no supported sample images under %s", cfg.Gallery.Dir)
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Building gallery"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	err = svc.BuildGallery(func(subject, path string) {
		bar.Add(1)
	})
	bar.Finish()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	g := svc.Gallery()
	fmt.Printf("Gallery built: %d subject(s), %d embedding(s)\n", len(g), g.Count())
	for _, subject := range g.Subjects() {
		fmt.Printf("  %-20s %d embedding(s)\n", subject, len(g[subject]))
	}
	return nil
}

// cmdIdentify detects the faces in an image and prints the identity assigned
// to each one.
func cmdIdentify(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s", commands["identify"].Usage)
	}
	imagePath := args[0]

	svc, err := recognizer.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.LoadGallery(); err != nil {
		return err
	}

	matches, err := svc.IdentifyFile(imagePath)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Println("No known faces identified.")
		return nil
	}

	fmt.Printf("Identified %d face(s):\n", len(matches))
	for _, m := range matches {
		fmt.Printf("  %-20s score=%.3f at %s\n", m.Label, m.Score, m.Region)
	}
	return nil
}
