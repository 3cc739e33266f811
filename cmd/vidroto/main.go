// vidroto extracts per-object tracking statistics and per-frame alpha matte
// sequences from video files.
//
// Usage:
//
//	vidroto analyze -v input.mp4 [-annotate]
//	vidroto export -v input.mp4 -id 3 [-o outdir]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vidroto/vidroto"
	"github.com/vidroto/vidroto/detect"
	"github.com/vidroto/vidroto/segment"
	"github.com/vidroto/vidroto/track"
	"github.com/vidroto/vidroto/video"
)

// config holds environment defaults, overridable per invocation with flags.
type config struct {
	ModelPath  string  `env:"VIDROTO_MODEL"     envDefault:"yolov8n.onnx"`
	LabelsPath string  `env:"VIDROTO_LABELS"    envDefault:"coco_80_labels_list.txt"`
	SegModel   string  `env:"VIDROTO_SEG_MODEL" envDefault:"grabcut"`
	Confidence float64 `env:"VIDROTO_CONF"      envDefault:"0.3"`
	Pad        int     `env:"VIDROTO_PAD"       envDefault:"40"`
	FourCC     string  `env:"VIDROTO_FOURCC"    envDefault:"mp4v"`
	LogLevel   string  `env:"VIDROTO_LOG_LEVEL" envDefault:"info"`
}

func main() {
	var cfg config

	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "parse environment: %v\n", err)
		os.Exit(1)
	}

	log, err := buildLogger(cfg.LogLevel)

	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}

	defer log.Sync()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "analyze":
		err = runAnalyze(cfg, log, os.Args[2:])
	case "export":
		err = runExport(cfg, log, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal("run failed", zap.Error(err))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: vidroto <analyze|export> [flags]")
	fmt.Fprintln(os.Stderr, "  analyze -v video [-annotate] [-o dir]  track objects and collect per-id stats")
	fmt.Fprintln(os.Stderr, "  export  -v video -id N [-o dir]        export RGBA alpha mattes for one id")
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)

	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	return zcfg.Build()
}

func runAnalyze(cfg config, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	videoFile := fs.String("v", "", "video file to analyze")
	outDir := fs.String("o", "", "output directory, defaults to <video>_outputs next to the input")
	annotate := fs.Bool("annotate", false, "write a video with detection overlays")
	modelFile := fs.String("m", cfg.ModelPath, "ONNX YOLO detection model")
	labelFile := fs.String("l", cfg.LabelsPath, "text file with one class name per line")
	conf := fs.Float64("c", cfg.Confidence, "detection confidence threshold")
	fourcc := fs.String("fourcc", cfg.FourCC, "four-character codec tag for annotated output")
	fs.Parse(args)

	if *videoFile == "" {
		fs.Usage()
		return fmt.Errorf("missing -v video file")
	}

	dir := *outDir

	if dir == "" {
		dir = defaultOutDir(*videoFile, "_outputs")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tracker, closeDetector, err := buildTracker(*modelFile, *labelFile, float32(*conf))

	if err != nil {
		return err
	}

	defer closeDetector()

	src, err := video.OpenFile(*videoFile)

	if err != nil {
		return err
	}

	defer src.Close()

	rc := vidroto.NewRunContext(tracker, nil, log)

	bar := newBar(src.FrameCount(), "analyzing")
	base := baseName(*videoFile)

	stats, err := rc.Analyze(src, vidroto.AnalyzeOptions{
		Annotated:     *annotate,
		AnnotatedPath: filepath.Join(dir, base+"_annot_analysis.mp4"),
		FourCC:        *fourcc,
		Progress: func(current, total int, elapsed, remaining time.Duration) {
			bar.Set(current)
		},
	})

	bar.Finish()
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return err
	}

	statsPath := filepath.Join(dir, base+"_tracks.json")

	if err := stats.WriteJSON(statsPath); err != nil {
		return err
	}

	log.Info("analysis complete",
		zap.Int("identities", len(stats)),
		zap.String("stats", statsPath))

	for id, rec := range stats {
		fmt.Printf("id %d: %s seen in %d frames\n", id, rec.Label, rec.Frames)
	}

	return nil
}

func runExport(cfg config, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	videoFile := fs.String("v", "", "video file to export from")
	targetID := fs.Int64("id", 0, "track identity to isolate")
	outDir := fs.String("o", "", "output directory, defaults to <video>_alpha next to the input")
	pad := fs.Int("pad", cfg.Pad, "pixels of padding around the tracked box before segmentation")
	segModel := fs.String("seg", cfg.SegModel, "segmentation model: grabcut or path to an ONNX mask model")
	modelFile := fs.String("m", cfg.ModelPath, "ONNX YOLO detection model")
	labelFile := fs.String("l", cfg.LabelsPath, "text file with one class name per line")
	conf := fs.Float64("c", cfg.Confidence, "detection confidence threshold")
	fs.Parse(args)

	if *videoFile == "" || *targetID == 0 {
		fs.Usage()
		return fmt.Errorf("missing -v video file or -id target identity")
	}

	dir := *outDir

	if dir == "" {
		dir = defaultOutDir(*videoFile, "_alpha")
	}

	tracker, closeDetector, err := buildTracker(*modelFile, *labelFile, float32(*conf))

	if err != nil {
		return err
	}

	defer closeDetector()

	segmenter, closer, err := segment.New(*segModel)

	if err != nil {
		return fmt.Errorf("segmentation model %q: %w", *segModel, err)
	}

	if closer != nil {
		defer closer.Close()
	}

	src, err := video.OpenFile(*videoFile)

	if err != nil {
		return err
	}

	defer src.Close()

	rc := vidroto.NewRunContext(tracker, segmenter, log)

	bar := newBar(src.FrameCount(), "exporting")

	err = rc.ExportAlpha(src, vidroto.ExportOptions{
		TargetID: *targetID,
		OutDir:   dir,
		Pad:      *pad,
		Progress: func(current, total int) {
			bar.Set(current)
		},
	})

	bar.Finish()
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return err
	}

	log.Info("export complete", zap.String("out_dir", dir))

	return nil
}

// buildTracker assembles the detector-backed tracking capability. The
// returned func releases the detector's network.
func buildTracker(modelFile, labelFile string, conf float32) (vidroto.Tracker, func(), error) {
	classes, err := detect.LoadLabels(labelFile)

	if err != nil {
		return nil, nil, err
	}

	detector, err := detect.NewYOLO(detect.YOLOConfig{
		ModelPath:     modelFile,
		Classes:       classes,
		ConfThreshold: conf,
	})

	if err != nil {
		return nil, nil, err
	}

	tracker := track.NewDetectionTracker(detector, track.DefaultConfig())

	return tracker, func() { detector.Close() }, nil
}

// newBar builds a terminal progress bar. An unknown total (0) becomes a
// spinner instead of a percentage, so unreliable containers never divide
// by zero.
func newBar(total int, description string) *progressbar.ProgressBar {
	if total == 0 {
		total = -1
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr))
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func defaultOutDir(videoFile, suffix string) string {
	dir := filepath.Dir(videoFile)

	return filepath.Join(dir, baseName(videoFile)+suffix)
}
