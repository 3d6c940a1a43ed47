package debug

import (
	"fmt"
	"math"
)

// AudioAnalyzer summarizes rendered audio: level, DC, clipping and NaNs.
type AudioAnalyzer struct {
	clippingThreshold float32
	dcThreshold       float32
	silenceThreshold  float32
}

// NewAudioAnalyzer creates a new audio analyzer with default thresholds.
func NewAudioAnalyzer() *AudioAnalyzer {
	return &AudioAnalyzer{
		clippingThreshold: 0.99,
		dcThreshold:       0.01,
		silenceThreshold:  0.0001,
	}
}

// AnalysisResult contains the results of audio buffer analysis.
type AnalysisResult struct {
	Samples        int
	Peak           float32
	RMS            float32
	DC             float32
	Clipping       bool
	ClippedSamples int
	Silent         bool
	HasNaN         bool
	NaNCount       int
	ZeroCrossings  int
}

// Analyze reads every stride-th sample of buffer starting at offset,
// so one channel of an interleaved block can be analyzed in place.
func (a *AudioAnalyzer) analyze(buffer []float32, offset, stride int) AnalysisResult {
	result := AnalysisResult{}
	if stride < 1 {
		stride = 1
	}

	var sum, sumSquares float64
	var lastSample float32
	first := true

	for i := offset; i < len(buffer); i += stride {
		sample := buffer[i]
		result.Samples++

		if math.IsNaN(float64(sample)) {
			result.HasNaN = true
			result.NaNCount++
			continue
		}

		absSample := float32(math.Abs(float64(sample)))
		if absSample > result.Peak {
			result.Peak = absSample
		}
		if absSample >= a.clippingThreshold {
			result.Clipping = true
			result.ClippedSamples++
		}

		sum += float64(sample)
		sumSquares += float64(sample * sample)

		if !first && (lastSample < 0) != (sample < 0) {
			result.ZeroCrossings++
		}
		lastSample = sample
		first = false
	}

	if result.Samples == 0 {
		return result
	}
	result.RMS = float32(math.Sqrt(sumSquares / float64(result.Samples)))
	result.DC = float32(sum / float64(result.Samples))
	result.Silent = result.RMS < a.silenceThreshold
	return result
}

// Analyze performs analysis on a mono buffer.
func (a *AudioAnalyzer) Analyze(buffer []float32) AnalysisResult {
	return a.analyze(buffer, 0, 1)
}

// AnalyzeInterleaved returns one result per channel of an interleaved buffer.
func (a *AudioAnalyzer) AnalyzeInterleaved(buffer []float32, channels int) []AnalysisResult {
	if channels < 1 {
		channels = 1
	}
	results := make([]AnalysisResult, channels)
	for ch := range results {
		results[ch] = a.analyze(buffer, ch, channels)
	}
	return results
}

// Issues lists problems found in a result, prefixed with name.
func (a *AudioAnalyzer) Issues(result AnalysisResult, name string) []string {
	var issues []string

	if result.HasNaN {
		issues = append(issues, fmt.Sprintf("%s: Contains %d NaN values", name, result.NaNCount))
	}
	if result.Clipping {
		issues = append(issues, fmt.Sprintf("%s: Clipping detected (%d samples)", name, result.ClippedSamples))
	}
	if math.Abs(float64(result.DC)) > float64(a.dcThreshold) {
		issues = append(issues, fmt.Sprintf("%s: DC offset detected (%.3f)", name, result.DC))
	}
	if result.Peak > 1.0 {
		issues = append(issues, fmt.Sprintf("%s: Peak exceeds 1.0 (%.3f)", name, result.Peak))
	}

	return issues
}

// CheckBuffer performs basic sanity checks on a mono buffer.
func CheckBuffer(buffer []float32, name string) []string {
	analyzer := NewAudioAnalyzer()
	return analyzer.Issues(analyzer.Analyze(buffer), name)
}

// LogRenderStats logs per-channel statistics of an interleaved render
// and warns about any issues found.
func LogRenderStats(l *Logger, buffer []float32, channels int, name string) {
	analyzer := NewAudioAnalyzer()
	for ch, result := range analyzer.AnalyzeInterleaved(buffer, channels) {
		label := fmt.Sprintf("%s[%d]", name, ch)
		l.Info("%s: %d samples, peak %.3f, rms %.3f, dc %.6f",
			label, result.Samples, result.Peak, result.RMS, result.DC)
		if result.Silent {
			l.Info("%s: silent", label)
		}
		for _, issue := range analyzer.Issues(result, label) {
			l.Warn("%s", issue)
		}
	}
}
