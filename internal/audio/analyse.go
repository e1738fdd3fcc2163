package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Analysis is the part of an Essentia run the sequencer cares about.
type Analysis struct {
	BPM     float64
	Key     string // "C#"
	Scale   string // "minor"
	Camelot string
	Length  float64
}

// DisplayKey returns "C# minor", or "" when no key was detected.
func (a *Analysis) DisplayKey() string {
	if a.Key == "" {
		return ""
	}
	return strings.TrimSpace(a.Key + " " + a.Scale)
}

type essentiaJSON struct {
	Metadata struct {
		AudioProperties struct {
			Length float64 `json:"length"`
		} `json:"audio_properties"`
	} `json:"metadata"`
	Rhythm struct {
		BPM float64 `json:"bpm"`
	} `json:"rhythm"`
	Tonal struct {
		KeyKey   string `json:"key_key"`
		KeyScale string `json:"key_scale"`
	} `json:"tonal"`
}

var supportedFormats = []string{
	".mp3", ".flac", ".wav", ".ogg", ".m4a", ".aac", ".aiff", ".opus",
}

func IsSupportedFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range supportedFormats {
		if ext == e {
			return true
		}
	}
	return false
}

// AnalyzeDeep transcodes the file to a mono 44.1kHz WAV with ffmpeg and runs
// Essentia's streaming_extractor_music on it to detect BPM and key.
func AnalyzeDeep(ctx context.Context, path string) (*Analysis, error) {
	absPath, _ := filepath.Abs(path)

	safeWav := absPath + ".safe.wav"
	jsonPath := absPath + ".json"

	log.Printf("🧪 Pre-transcoding to WAV for analysis: %s", filepath.Base(path))

	convCmd := exec.CommandContext(ctx, "ffmpeg", "-y", "-i", absPath, "-ar", "44100", "-ac", "1", "-f", "wav", safeWav)
	if out, err := convCmd.CombinedOutput(); err != nil {
		log.Printf("❌ Pre-transcode failed: %v | %s", err, string(out))
		return nil, fmt.Errorf("transcode: %w", err)
	}
	defer os.Remove(safeWav)

	cmd := exec.CommandContext(ctx, "streaming_extractor_music", safeWav, jsonPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Printf("❌ Essentia failed: %v\nOutput: %s", err, string(out))
		return nil, fmt.Errorf("essentia: %w", err)
	}
	defer os.Remove(jsonPath)

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}

	analysis, err := parseEssentia(data)
	if err != nil {
		return nil, err
	}

	log.Printf("✨ Analysis complete for %s (%.2f BPM, %s)", filepath.Base(path), analysis.BPM, analysis.Camelot)
	return analysis, nil
}

func parseEssentia(data []byte) (*Analysis, error) {
	var raw essentiaJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse essentia output: %w", err)
	}

	a := &Analysis{
		BPM:    raw.Rhythm.BPM,
		Key:    raw.Tonal.KeyKey,
		Scale:  raw.Tonal.KeyScale,
		Length: raw.Metadata.AudioProperties.Length,
	}
	if c, ok := FromKeyScale(a.Key, a.Scale); ok {
		a.Camelot = c.String()
	}
	return a, nil
}
