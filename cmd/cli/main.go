package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eligwz/spectrogram"

	"github.com/priyankverma/notescribe/internal/audio"
	"github.com/priyankverma/notescribe/internal/inference"
	"github.com/priyankverma/notescribe/internal/midi"
	"github.com/priyankverma/notescribe/internal/service"
	"github.com/priyankverma/notescribe/pkg/logger"
)

// Global flags
var (
	dbPath    string
	tempDir   string
	outputDir string
	runnerCmd string
)

func init() {
	// Global flags that can be used with any command
	flag.StringVar(&dbPath, "db", getEnvOrDefault("NOTESCRIBE_DB_PATH", "notescribe.sqlite3"), "Path to the SQLite catalog file")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("NOTESCRIBE_TEMP_DIR", "/tmp"), "Directory for temporary audio conversion files")
	flag.StringVar(&outputDir, "out", getEnvOrDefault("NOTESCRIBE_OUT_DIR", "."), "Directory MIDI files are written to")
	flag.StringVar(&runnerCmd, "runner", os.Getenv("NOTESCRIBE_RUNNER"), "Model runner executable used for inference")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// createService creates a transcription service with the configured options.
// Commands that never touch inference pass requireRunner=false.
func createService(requireRunner bool) (*service.TranscriptionService, error) {
	if requireRunner && runnerCmd == "" {
		return nil, fmt.Errorf("no model runner configured (set --runner or NOTESCRIBE_RUNNER)")
	}
	return service.NewService(
		service.WithDBPath(dbPath),
		service.WithTempDir(tempDir),
		service.WithOutputDir(outputDir),
		service.WithPredictor(inference.NewRunner(runnerCmd)),
	)
}

func main() {
	log := logger.GetLogger()

	printBanner()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	log.Infof("Executing command: %s", command)

	switch command {
	case "transcribe":
		handleTranscribe()
	case "analyze":
		handleAnalyze()
	case "list":
		handleList()
	case "info":
		handleInfo()
	case "delete":
		handleDelete()
	case "spectrogram":
		handleSpectrogram()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
             _                      _ _
 _ __   ___ | |_ ___  ___  ___ _ __(_) |__   ___
| '_ \ / _ \| __/ _ \/ __|/ __| '__| | '_ \ / _ \
| | | | (_) | ||  __/\__ \ (__| |  | | |_) |  __/
|_| |_|\___/ \__\___||___/\___|_|  |_|_.__/ \___|

          Audio to MIDI Transcription CLI
`
	fmt.Println(banner)
}

func handleTranscribe() {
	log := logger.GetLogger()

	// Manually extract the input path so it can appear before the flags
	args := os.Args[2:]
	var inputPath string
	var flagArgs []string
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") && inputPath == "" {
			inputPath = arg
		} else {
			flagArgs = append(flagArgs, args[i:]...)
			break
		}
	}

	transcribeCmd := flag.NewFlagSet("transcribe", flag.ExitOnError)
	title := transcribeCmd.String("title", "", "Title stored in the catalog (default: input file name)")
	youtubeURL := transcribeCmd.String("youtube-url", "", "YouTube URL to download and transcribe (alternative to a local file)")
	transcribeCmd.Parse(flagArgs)

	if *youtubeURL != "" {
		if inputPath != "" {
			fmt.Println("Error: cannot specify both an input file and --youtube-url")
			log.Errorf("Both input file and --youtube-url specified")
			os.Exit(1)
		}
		inputPath = *youtubeURL
	} else if inputPath == "" {
		fmt.Println("Error: input file path or --youtube-url required")
		fmt.Println("Usage: notescribe transcribe <media_file> [--title <title>]")
		fmt.Println("   OR: notescribe transcribe --youtube-url <url> [--title <title>]")
		os.Exit(1)
	}

	fmt.Println("\n🔧 Initializing service...")
	svc, err := createService(true)
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("🎹 Transcribing audio...")
	fmt.Println("   This may take a few moments for long recordings")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	res, err := svc.Transcribe(ctx, inputPath, *title)
	if err != nil {
		fmt.Printf("\n❌ Transcription failed: %v\n", err)
		log.Errorf("Transcribe failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("\n✅ Transcription complete!")
	fmt.Printf("   ID:       %s\n", res.ID)
	fmt.Printf("   Title:    %s\n", res.Title)
	fmt.Printf("   MIDI:     %s\n", res.MIDIPath)
	fmt.Printf("   Notes:    %d\n", len(res.Notes))
	fmt.Printf("   Duration: %.2fs\n", res.Duration)
	fmt.Printf("   Tempo:    %.1f BPM\n", res.Features.Tempo)
	log.Infof("Transcribed %s -> %s (%d notes)", inputPath, res.MIDIPath, len(res.Notes))
}

func handleAnalyze() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: notescribe analyze <media_file>")
		os.Exit(1)
	}
	inputPath := os.Args[2]

	svc, err := createService(false)
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("🔍 Analyzing audio file...")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := svc.Analyze(ctx, inputPath)
	if err != nil {
		fmt.Printf("\n❌ Analysis failed: %v\n", err)
		log.Errorf("Analyze failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("\n📊 Feature summary for %s:\n\n", filepath.Base(inputPath))
	fmt.Printf("   Tempo:             %.1f BPM (%d beats)\n", summary.Tempo, summary.NumBeats)
	fmt.Printf("   Spectral centroid: %.1f Hz (±%.1f)\n", summary.SpectralCentroidMean, summary.SpectralCentroidStd)
	fmt.Printf("   Zero crossings:    %.4f\n", summary.ZeroCrossingRateMean)
	fmt.Printf("   RMS energy:        %.4f (±%.4f)\n", summary.RMSEnergyMean, summary.RMSEnergyStd)
	fmt.Printf("   Chroma:            %v\n", formatVector(summary.ChromaMean[:]))
	fmt.Printf("   MFCC:              %v\n", formatVector(summary.MFCCMean[:]))
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.2f", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func handleList() {
	log := logger.GetLogger()

	svc, err := createService(false)
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	recs, err := svc.ListTranscriptions()
	if err != nil {
		fmt.Printf("❌ Failed to list transcriptions: %v\n", err)
		log.Errorf("ListTranscriptions failed: %v", err)
		os.Exit(1)
	}

	if len(recs) == 0 {
		fmt.Println("\n📭 No transcriptions in catalog")
		log.Infof("No transcriptions in catalog")
		return
	}

	fmt.Printf("\n📚 Found %d transcription(s):\n\n", len(recs))
	for i, rec := range recs {
		fmt.Printf("%d. %q (ID: %s)\n", i+1, rec.Title, rec.ID)
		fmt.Printf("   MIDI: %s | %d notes | %.2fs | %.1f BPM\n",
			rec.MIDIPath, rec.NoteCount, rec.DurationSec, rec.Tempo)
		fmt.Println()
	}
	log.Infof("Listed %d transcriptions", len(recs))
}

func handleInfo() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: notescribe info <transcription_id>")
		os.Exit(1)
	}
	id := os.Args[2]

	svc, err := createService(false)
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	rec, err := svc.GetTranscriptionByID(id)
	if err != nil {
		fmt.Printf("❌ Transcription not found (ID: %s)\n", id)
		log.Warnf("Transcription %s not found: %v", id, err)
		os.Exit(1)
	}

	fmt.Printf("\n🎼 %s\n", rec.Title)
	fmt.Printf("   ID:       %s\n", rec.ID)
	fmt.Printf("   Source:   %s\n", rec.SourcePath)
	fmt.Printf("   MIDI:     %s\n", rec.MIDIPath)
	fmt.Printf("   Notes:    %d\n", rec.NoteCount)
	fmt.Printf("   Duration: %.2fs\n", rec.DurationSec)
	fmt.Printf("   Tempo:    %.1f BPM\n", rec.Tempo)
	fmt.Printf("   Created:  %s\n", rec.CreatedAt.Format(time.RFC3339))

	if info, err := midi.ReadInfo(rec.MIDIPath); err == nil {
		fmt.Printf("   Pitch range: %d..%d\n", info.PitchMin, info.PitchMax)
	}
}

func handleDelete() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: notescribe delete <transcription_id>")
		os.Exit(1)
	}
	id := os.Args[2]

	svc, err := createService(false)
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	rec, err := svc.GetTranscriptionByID(id)
	if err != nil {
		fmt.Printf("❌ Transcription not found (ID: %s)\n", id)
		log.Warnf("Transcription %s not found: %v", id, err)
		os.Exit(1)
	}

	if err := svc.DeleteTranscription(id); err != nil {
		fmt.Printf("❌ Failed to delete transcription: %v\n", err)
		log.Errorf("DeleteTranscription failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("\n✅ Deleted transcription %q (ID: %s)\n", rec.Title, rec.ID)
	log.Infof("Deleted transcription ID=%s (%q)", rec.ID, rec.Title)
}

// handleSpectrogram renders a PNG spectrogram of the input, handy for eyeballing
// what the model sees.
func handleSpectrogram() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: notescribe spectrogram <media_file> [output.png]")
		os.Exit(1)
	}
	inputPath := os.Args[2]

	outputPath := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".png"
	if len(os.Args) > 3 {
		outputPath = os.Args[3]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	wavPath := inputPath
	if !strings.EqualFold(filepath.Ext(inputPath), ".wav") {
		converted, err := audio.ConvertToMonoWAV(ctx, inputPath, tempDir, audio.ConvertWAVConfig{
			SampleRate: audio.DefaultSampleRate,
		})
		if err != nil {
			fmt.Printf("❌ Conversion failed: %v\n", err)
			log.Errorf("ConvertToMonoWAV failed: %v", err)
			os.Exit(1)
		}
		wavPath = converted
	}

	samples, rate, err := audio.ReadWAVAsFloat64(wavPath)
	if err != nil {
		fmt.Printf("❌ Failed to read audio: %v\n", err)
		log.Errorf("ReadWAVAsFloat64 failed: %v", err)
		os.Exit(1)
	}

	width, height := 2048, 512
	img := spectrogram.NewImage128(image.Rect(0, 0, width, height))
	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	// Hamming window, FFT, magnitude, linear scale.
	spectrogram.Drawfft(img, samples, uint32(rate), uint32(height), false, false, true, false)

	if err := spectrogram.SavePng(img, outputPath); err != nil {
		fmt.Printf("❌ Failed to save PNG: %v\n", err)
		log.Errorf("SavePng failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Saved spectrogram to %s\n", outputPath)
	log.Infof("Saved spectrogram %s -> %s", inputPath, outputPath)
}

func printUsage() {
	fmt.Println("notescribe - Audio to MIDI Transcription CLI")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --db <path>        Path to SQLite catalog (env: NOTESCRIBE_DB_PATH, default: notescribe.sqlite3)")
	fmt.Println("  --temp <dir>       Temporary directory for audio conversion (env: NOTESCRIBE_TEMP_DIR, default: /tmp)")
	fmt.Println("  --out <dir>        Directory MIDI files are written to (env: NOTESCRIBE_OUT_DIR, default: .)")
	fmt.Println("  --runner <exe>     Model runner executable (env: NOTESCRIBE_RUNNER)")
	fmt.Println("\nUsage:")
	fmt.Println("  notescribe [global-options] transcribe <media_file> [--title <title>]")
	fmt.Println("  notescribe [global-options] transcribe --youtube-url <url> [--title <title>]")
	fmt.Println("  notescribe [global-options] analyze <media_file>")
	fmt.Println("  notescribe [global-options] list")
	fmt.Println("  notescribe [global-options] info <transcription_id>")
	fmt.Println("  notescribe [global-options] delete <transcription_id>")
	fmt.Println("  notescribe [global-options] spectrogram <media_file> [output.png]")
	fmt.Println("\nExamples:")
	fmt.Println("  # Transcribe a local recording")
	fmt.Println("  notescribe --runner ./model-runner transcribe piano.wav --title \"Nocturne\"")
	fmt.Println()
	fmt.Println("  # Transcribe straight from YouTube")
	fmt.Println("  notescribe --runner ./model-runner transcribe --youtube-url \"https://youtu.be/4Tr0otuiQuU\"")
	fmt.Println()
	fmt.Println("  # Inspect a recording without running the model")
	fmt.Println("  notescribe analyze take3.mp3")
}
