// yt-dlp implementation of [MediaFetcher]
package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/splib/internal/models"
	"github.com/desertthunder/splib/internal/shared"
	"github.com/lrstanley/go-ytdlp"
)

const (
	audioFormat   = "mp3"
	fallbackStem  = "track"
	extTemplate   = ".%(ext)s"
	bestAudioOnly = "bestaudio/best"
)

// ConverterOpts configures a [Converter].
type ConverterOpts struct {
	FFmpegLocation string // directory or binary; empty uses PATH
	Executable     string // yt-dlp binary; empty uses PATH
	AudioQuality   string // e.g. "192K"
	Timeout        time.Duration
	Logger         *log.Logger
}

// downloadFunc runs a single download of url, writing to outputTemplate.
type downloadFunc func(ctx context.Context, url, outputTemplate string) error

// Converter downloads the best audio stream of a video with yt-dlp and
// transcodes it to MP3 with ffmpeg.
type Converter struct {
	opts     ConverterOpts
	download downloadFunc
	logger   *log.Logger
}

// NewConverter creates a [Converter]. Neither yt-dlp nor ffmpeg is looked up until the first download.
func NewConverter(opts ConverterOpts) *Converter {
	if opts.AudioQuality == "" {
		opts.AudioQuality = shared.DefaultAudioQuality
	}
	if opts.Timeout <= 0 {
		opts.Timeout = shared.DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	c := &Converter{opts: opts, logger: shared.WithLogger(opts.Logger, "service", "yt-dlp")}
	c.download = c.runYtDlp
	return c
}

// FetchAndEncode sanitizes baseName, reserves a free .mp3 path in dir, and
// downloads match into it. The returned path is verified to exist.
func (c *Converter) FetchAndEncode(ctx context.Context, match models.VideoMatch, dir, baseName string) (string, error) {
	stem := shared.Sanitize(baseName)
	if stem == "" {
		stem = fallbackStem
	}

	target := shared.AllocatePath(dir, stem, audioFormat)
	template := strings.TrimSuffix(target, "."+audioFormat) + extTemplate

	c.logger.Debug("downloading", "url", match.URL(), "target", target)
	if err := c.download(ctx, match.URL(), template); err != nil {
		return "", err
	}

	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("%w: %s", shared.ErrOutputMissing, target)
	}

	return target, nil
}

func (c *Converter) command(outputTemplate string) *ytdlp.Command {
	cmd := ytdlp.New().
		Format(bestAudioOnly).
		ExtractAudio().
		AudioFormat(audioFormat).
		AudioQuality(c.opts.AudioQuality).
		Output(outputTemplate).
		SocketTimeout(c.opts.Timeout.Seconds()).
		NoPlaylist().
		NoWarnings().
		Quiet()

	if c.opts.FFmpegLocation != "" {
		cmd = cmd.FFmpegLocation(c.opts.FFmpegLocation)
	}
	if c.opts.Executable != "" {
		cmd = cmd.SetExecutable(c.opts.Executable)
	}
	return cmd
}

func (c *Converter) runYtDlp(ctx context.Context, url, outputTemplate string) error {
	result, err := c.command(outputTemplate).Run(ctx, url)
	if err != nil {
		if result != nil && result.Stderr != "" {
			c.logger.Debug("yt-dlp output", "stderr", strings.TrimSpace(result.Stderr))
		}
		return fmt.Errorf("yt-dlp failed for %s: %w", url, err)
	}
	return nil
}
