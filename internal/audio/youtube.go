package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/priyankverma/notescribe/pkg/utils"
)

// DownloadYouTubeAudio fetches the audio track of a YouTube video as WAV into
// outputDir and returns the downloaded path. The sample rate is left as-is;
// ConvertToMonoWAV normalizes it afterwards.
func DownloadYouTubeAudio(ctx context.Context, youtubeURL, outputDir string) (string, error) {
	videoID, err := utils.ExtractYouTubeID(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("parsing youtube url: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 3*time.Minute)
		defer cancel()
	}

	if err := utils.MakeDir(outputDir); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	dl := ytdlp.New().
		NoPlaylist().
		ExtractAudio().
		AudioFormat("wav").
		Output(filepath.Join(outputDir, "%(id)s.%(ext)s"))

	if _, err := dl.Run(ctx, youtubeURL); err != nil {
		return "", fmt.Errorf("yt-dlp download failed: %w", err)
	}

	downloaded := filepath.Join(outputDir, videoID+".wav")
	if _, err := os.Stat(downloaded); err != nil {
		return "", fmt.Errorf("downloaded audio not found: %w", err)
	}
	return downloaded, nil
}
