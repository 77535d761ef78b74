package pii

import (
	"context"
	"log/slog"
	"slices"

	"screendoc/internal/logging"
	"screendoc/internal/ocr"
)

// Match records one detected piece of PII inside a text region.
type Match struct {
	Region     ocr.TextRegion `json:"region"`
	Type       string         `json:"type"`
	Confidence string         `json:"confidence"`
	Text       string         `json:"text"`
}

// Scanner applies the pattern detectors and, when available, a name
// detector to text regions.
type Scanner struct {
	optional []string
	names    NameDetector
	logger   *slog.Logger
}

// NewScanner constructs a Scanner. enableOptional selects which optional
// detectors run; names may be nil to skip person-name recognition.
func NewScanner(enableOptional []string, names NameDetector, logger *slog.Logger) *Scanner {
	if names == nil {
		names = UnavailableNameDetector{}
	}
	return &Scanner{
		optional: slices.Clone(enableOptional),
		names:    names,
		logger:   logging.NewComponentLogger(logger, "pii"),
	}
}

// Scan returns every match across the supplied regions. The first matched
// substring per detector per region is recorded. Credit card candidates must
// pass the Luhn checksum.
func (s *Scanner) Scan(ctx context.Context, regions []ocr.TextRegion) []Match {
	var matches []Match
	for _, region := range regions {
		for _, d := range detectors {
			if d.optional && !slices.Contains(s.optional, d.name) {
				continue
			}
			found := d.pattern.FindString(region.Text)
			if found == "" {
				continue
			}
			if d.name == TypeCreditCard && !luhnValid(found) {
				continue
			}
			confidence := ConfidenceHigh
			if d.optional {
				confidence = ConfidenceMedium
			}
			matches = append(matches, Match{
				Region:     region,
				Type:       d.name,
				Confidence: confidence,
				Text:       found,
			})
		}
	}

	matches = append(matches, s.scanNames(ctx, regions)...)
	return matches
}

func (s *Scanner) scanNames(ctx context.Context, regions []ocr.TextRegion) []Match {
	if !s.names.Available() {
		return nil
	}
	names, err := s.names.DetectNames(ctx, regions)
	if err != nil {
		s.logger.Warn("name detection failed, continuing without names", logging.Error(err))
		return nil
	}
	return names
}
