package speech

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const stderrLimit = 500

// YTDLPDownloader shells out to yt-dlp for the audio stream.
type YTDLPDownloader struct {
	binary string
	log    *logrus.Logger
}

// YTDLPConfig tunes the downloader.
type YTDLPConfig struct {
	// Binary is the yt-dlp executable; empty resolves from PATH.
	Binary string
}

func NewYTDLPDownloader(cfg YTDLPConfig, log *logrus.Logger) *YTDLPDownloader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	binary := cfg.Binary
	if binary == "" {
		binary = "yt-dlp"
	}
	return &YTDLPDownloader{binary: binary, log: log}
}

// Download fetches the best audio stream as m4a into dir.
func (d *YTDLPDownloader) Download(ctx context.Context, videoID, dir string) (string, int64, error) {
	outputTemplate := filepath.Join(dir, "%(id)s.%(ext)s")
	args := []string{
		"--ignore-config",
		"--no-progress",
		"--no-playlist",
		"-f", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "m4a",
		"--output", outputTemplate,
		"https://www.youtube.com/watch?v=" + videoID,
	}

	cmd := exec.CommandContext(ctx, d.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	d.log.WithFields(logrus.Fields{
		"video_id": videoID,
		"binary":   d.binary,
	}).Debug("Downloading audio")

	if err := cmd.Run(); err != nil {
		return "", 0, fmt.Errorf("yt-dlp failed: %v (stderr: %s)", err, truncate(stderr.String(), stderrLimit))
	}

	path := filepath.Join(dir, videoID+".m4a")
	info, err := os.Stat(path)
	if err != nil {
		// Post-processing sometimes keeps the original container.
		matches, globErr := filepath.Glob(filepath.Join(dir, videoID+".*"))
		if globErr != nil || len(matches) == 0 {
			return "", 0, errors.Errorf("yt-dlp produced no output file for %s", videoID)
		}
		path = matches[0]
		if info, err = os.Stat(path); err != nil {
			return "", 0, errors.Wrap(err, "stat downloaded audio")
		}
	}
	return path, info.Size(), nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
