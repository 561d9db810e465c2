package transcripts

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultWatchURL        = "https://www.youtube.com/watch"
	playerResponseMarker   = "ytInitialPlayerResponse = "
	maxWatchPageBytes      = 6 * 1024 * 1024
	autoGeneratedTrackKind = "asr"
)

// ErrNoTranscript is returned when no track matches the preferred languages
var ErrNoTranscript = errors.New("no transcript in preferred languages")

// Segment is one timed caption line
type Segment struct {
	Text     string
	Start    float64
	Duration float64
}

// Track is an available caption track of a video
type Track struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []Track `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type timedText struct {
	Lines []struct {
		Text     string  `xml:",chardata"`
		Start    float64 `xml:"start,attr"`
		Duration float64 `xml:"dur,attr"`
	} `xml:"text"`
}

// Fetcher retrieves video transcripts from YouTube caption tracks
type Fetcher struct {
	client    *resty.Client
	watchURL  string
	languages []string
	limiter   *rate.Limiter
}

// NewFetcher creates a fetcher preferring languages in the given order.
// Fetches are spaced at least delay apart; zero disables pacing.
func NewFetcher(languages []string, delay time.Duration) *Fetcher {
	f := &Fetcher{
		client: resty.New().
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36").
			SetHeader("Accept-Language", "es-ES,es;q=0.9,en;q=0.8"),
		watchURL:  defaultWatchURL,
		languages: languages,
	}
	if delay > 0 {
		f.limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return f
}

// Fetch returns the full transcript text of a video
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("transcript pacing: %w", err)
		}
	}

	tracks, err := f.ListTracks(ctx, videoID)
	if err != nil {
		return "", err
	}

	track, ok := SelectTrack(tracks, f.languages)
	if !ok {
		available := make([]string, 0, len(tracks))
		for _, t := range tracks {
			available = append(available, t.LanguageCode)
		}
		return "", fmt.Errorf("%w (wanted %v, available %v)", ErrNoTranscript, f.languages, available)
	}

	segments, err := f.FetchSegments(ctx, track)
	if err != nil {
		return "", err
	}

	text := JoinSegments(segments)
	if text == "" {
		return "", errors.New("transcript is empty")
	}

	logrus.WithFields(logrus.Fields{
		"video_id": videoID,
		"language": track.LanguageCode,
		"kind":     track.Kind,
		"chars":    len(text),
	}).Info("Fetched transcript")

	return text, nil
}

// ListTracks scrapes the watch page and returns the caption tracks listed in
// ytInitialPlayerResponse
func (f *Fetcher) ListTracks(ctx context.Context, videoID string) ([]Track, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("v", videoID).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		Get(f.watchURL)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("watch page returned status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxWatchPageBytes {
		body = body[:maxWatchPageBytes]
	}

	idx := strings.Index(string(body), playerResponseMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(playerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var player playerResponse
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}

	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", player.PlayabilityStatus.Reason)
		}
		return nil, errors.New("transcripts are disabled for this video")
	}

	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, errors.New("no caption tracks")
	}
	return tracks, nil
}

// FetchSegments downloads the timed-text XML of a track
func (f *Fetcher) FetchSegments(ctx context.Context, track Track) ([]Segment, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("timedtext returned status %d", resp.StatusCode())
	}

	return parseTimedText(resp.Body())
}

func parseTimedText(data []byte) ([]Segment, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]Segment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		segments = append(segments, Segment{
			Text:     html.UnescapeString(line.Text),
			Start:    line.Start,
			Duration: line.Duration,
		})
	}
	return segments, nil
}

// SelectTrack picks the first preferred language that has a track, a manual
// track winning over an auto-generated one of the same language
func SelectTrack(tracks []Track, languages []string) (Track, bool) {
	for _, lang := range languages {
		var generated *Track
		for i := range tracks {
			if !strings.EqualFold(tracks[i].LanguageCode, lang) {
				continue
			}
			if tracks[i].Kind != autoGeneratedTrackKind {
				return tracks[i], true
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return *generated, true
		}
	}
	return Track{}, false
}

// JoinSegments concatenates segment texts with single spaces, in order
func JoinSegments(segments []Segment) string {
	var sb strings.Builder
	for _, seg := range segments {
		text := strings.Join(strings.Fields(seg.Text), " ")
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// extractJSON returns the balanced JSON object at the start of b
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
