// Command facerec locates faces in an image and identifies them against a
// gallery of known subjects.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/SameriteRL/Face-Recognizer/pkg/config"
	"github.com/SameriteRL/Face-Recognizer/pkg/logging"
)

const version = "1.0.0"

// Command represents a CLI command.
type Command struct {
	Name        string
	Description string
	Usage       string
	Run         func(args []string) error
}

var (
	cfg      *config.Config
	commands map[string]*Command
)

func init() {
	commands = map[string]*Command{
		"build-gallery": {
			Name:        "build-gallery",
			Description: "Build the known-faces gallery from the configured directory",
			Usage:       "facerec build-gallery",
			Run:         cmdBuildGallery,
		},
		"identify": {
			Name:        "identify",
			Description: "Identify the faces in an image against the gallery",
			Usage:       "facerec identify <image>",
			Run:         cmdIdentify,
		},
		"download-models": {
			Name:        "download-models",
			Description: "Download the detector and embedder models",
			Usage:       "facerec download-models",
			Run:         cmdDownloadModels,
		},
		"config": {
			Name:        "config",
			Description: "Show current configuration",
			Usage:       "facerec config",
			Run:         cmdConfig,
		},
		"version": {
			Name:        "version",
			Description: "Show version information",
			Usage:       "facerec version",
			Run:         cmdVersion,
		},
		"help": {
			Name:        "help",
			Description: "Show help information",
			Usage:       "facerec help [command]",
			Run:         cmdHelp,
		},
	}
}

func main() {
	configFile := flag.String("config", "", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	args := flag.Args()

	var err error
	if *configFile != "" {
		cfg, err = config.Load(*configFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	cfg.ExpandPaths()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logLevel := cfg.Logging.Level
	if *debug {
		logLevel = "debug"
	}
	if err := logging.Init(logLevel, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}

	logging.Debugf("facerec v%s starting", version)

	if len(args) < 1 {
		printUsage()
		os.Exit(0)
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}

	if err := cmd.Run(args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("facerec - face detection and identification")
	fmt.Println()
	fmt.Println("Usage: facerec [flags] <command> [arguments]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -config <path>  Path to configuration file")
	fmt.Println("  -debug          Enable debug logging")
	fmt.Println()
	fmt.Println("Commands:")
	for _, name := range []string{"build-gallery", "identify", "download-models", "config", "version", "help"} {
		cmd := commands[name]
		fmt.Printf("  %-16s %s\n", cmd.Name, cmd.Description)
	}
}

func cmdVersion(args []string) error {
	fmt.Printf("facerec v%s\n", version)
	return nil
}

func cmdHelp(args []string) error {
	if len(args) < 1 {
		printUsage()
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	fmt.Printf("%s - %s\n", cmd.Name, cmd.Description)
	fmt.Printf("Usage: %s\n", cmd.Usage)
	return nil
}

func cmdConfig(args []string) error {
	fmt.Println("Current configuration:")
	fmt.Printf("  Detector model:  %s\n", cfg.Models.DetectorPath)
	fmt.Printf("  Embedder model:  %s\n", cfg.Models.EmbedderPath)
	fmt.Printf("  Backend:         %s\n", cfg.Models.Backend)
	fmt.Printf("  Detection:       window=%dpx step=%.2f floor=%.2f dedup=%d%%\n",
		cfg.Detection.Window, cfg.Detection.ScaleStep, cfg.Detection.ScaleFloor,
		cfg.Detection.DedupOverlap)
	fmt.Printf("  Match threshold: %.3f\n", cfg.Match.Threshold)
	fmt.Printf("  Gallery dir:     %s\n", cfg.Gallery.Dir)
	fmt.Printf("  Gallery cache:   %s (encrypted: %v)\n", cfg.Gallery.CacheFile, cfg.Gallery.EncryptCache)
	fmt.Printf("  Log level:       %s\n", cfg.Logging.Level)
	return nil
}
