package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeResult is the clip metadata the editor needs before opening a
// session: duration drives the timeline, dimensions drive reframing.
type ProbeResult struct {
	Duration   float64
	Width      int
	Height     int
	Codec      string
	FrameRate  float64
	AudioCodec string
	SizeBytes  int64
}

// Prober extracts metadata from a video file.
type Prober interface {
	Probe(ctx context.Context, path string) (*ProbeResult, error)
}

// FFProbe shells out to ffprobe for real metadata.
type FFProbe struct {
	binary string
	logger *slog.Logger
}

func NewFFProbe(logger *slog.Logger) *FFProbe {
	return &FFProbe{binary: "ffprobe", logger: logger}
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
}

func (f *FFProbe) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, f.binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output for %s: %w", path, err)
	}

	result := &ProbeResult{}
	result.Duration, _ = strconv.ParseFloat(parsed.Format.Duration, 64)
	result.SizeBytes, _ = strconv.ParseInt(parsed.Format.Size, 10, 64)

	for _, stream := range parsed.Streams {
		switch stream.CodecType {
		case "video":
			if result.Codec != "" {
				continue
			}
			result.Codec = stream.CodecName
			result.Width = stream.Width
			result.Height = stream.Height
			result.FrameRate = parseFrameRate(stream.AvgFrameRate)
		case "audio":
			if result.AudioCodec == "" {
				result.AudioCodec = stream.CodecName
			}
		}
	}

	if result.Duration <= 0 {
		return nil, fmt.Errorf("ffprobe %s: no duration in output", path)
	}
	f.logger.Debug("probed clip",
		"path", path, "duration", result.Duration,
		"codec", result.Codec, "size", result.SizeBytes)
	return result, nil
}

// parseFrameRate handles ffprobe's rational notation ("30000/1001").
func parseFrameRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	if !found {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// StubProber returns fixed metadata, for tests and for development hosts
// without ffprobe installed.
type StubProber struct {
	Result ProbeResult
}

func (p *StubProber) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	r := p.Result
	if r.Duration == 0 {
		r.Duration = 60
	}
	return &r, nil
}
