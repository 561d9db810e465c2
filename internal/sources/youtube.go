package sources

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
	"github.com/palma21/yt-analysis-bot/internal/models"
	"github.com/sirupsen/logrus"
)

const youTubeGUIDPrefix = "yt:video:"

// YouTubeSource reads a channel's uploads from its public Atom feed
type YouTubeSource struct {
	feedURL     string
	filterToday bool
	location    *time.Location
	client      *resty.Client
	parser      *gofeed.Parser
}

var _ Source = (*YouTubeSource)(nil)

// NewYouTubeSource creates a new YouTube feed source
func NewYouTubeSource(feedURL string, filterToday bool, location *time.Location) *YouTubeSource {
	if location == nil {
		location = time.UTC
	}
	return &YouTubeSource{
		feedURL:     feedURL,
		filterToday: filterToday,
		location:    location,
		client: resty.New().
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", "YT-Analysis-Bot/1.0"),
		parser: gofeed.NewParser(),
	}
}

func (y *YouTubeSource) GetName() string {
	return "youtube"
}

// FetchNew downloads the feed and returns the unseen videos
func (y *YouTubeSource) FetchNew(ctx context.Context, seen models.SeenSet, ref time.Time) ([]models.Video, error) {
	resp, err := y.client.R().
		SetContext(ctx).
		Get(y.feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	feed, err := y.parser.ParseString(resp.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	videos := y.selectNew(feed.Items, seen, ref)
	logrus.Infof("Feed '%s' has %d entries, %d new", feed.Title, len(feed.Items), len(videos))
	return videos, nil
}

// selectNew applies the seen-set difference, the same-day filter and the
// chronological ordering to the parsed feed entries
func (y *YouTubeSource) selectNew(items []*gofeed.Item, seen models.SeenSet, ref time.Time) []models.Video {
	refDate := ref.In(y.location).Format("2006-01-02")
	videos := make([]models.Video, 0, len(items))

	for _, item := range items {
		if item == nil {
			continue
		}

		videoID := y.videoID(item)
		if videoID == "" {
			logrus.Warnf("Skipping feed entry without video ID: %s", item.Title)
			continue
		}
		if seen.Has(videoID) {
			continue
		}

		publishedAt, ok := y.publishedAt(item)
		if !ok {
			logrus.WithField("video_id", videoID).
				Warnf("Skipping entry with unparseable publication time %q", item.Published)
			continue
		}

		if y.filterToday && publishedAt.In(y.location).Format("2006-01-02") != refDate {
			logrus.Debugf("Skipping %s published %s (not %s)", videoID, publishedAt.Format(time.RFC3339), refDate)
			continue
		}

		link := item.Link
		if link == "" {
			link = "https://www.youtube.com/watch?v=" + videoID
		}

		videos = append(videos, models.Video{
			ID:          videoID,
			Title:       item.Title,
			Link:        link,
			Published:   item.Published,
			PublishedAt: publishedAt,
		})
	}

	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].PublishedAt.Before(videos[j].PublishedAt)
	})

	return videos
}

// videoID prefers the yt:videoId extension, then the Atom id, then the link
func (y *YouTubeSource) videoID(item *gofeed.Item) string {
	if yt, ok := item.Extensions["yt"]; ok {
		if ids := yt["videoId"]; len(ids) > 0 && ids[0].Value != "" {
			return strings.TrimSpace(ids[0].Value)
		}
	}
	if strings.HasPrefix(item.GUID, youTubeGUIDPrefix) {
		return strings.TrimPrefix(item.GUID, youTubeGUIDPrefix)
	}
	return y.extractVideoID(item.Link)
}

func (y *YouTubeSource) publishedAt(item *gofeed.Item) (time.Time, bool) {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed, true
	}
	if item.Published == "" {
		return time.Time{}, false
	}
	parsed, err := dateparse.ParseIn(item.Published, y.location)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func (y *YouTubeSource) extractVideoID(url string) string {
	// Extract video ID from YouTube URL
	if strings.Contains(url, "youtube.com/watch?v=") {
		parts := strings.Split(url, "v=")
		if len(parts) > 1 {
			return strings.Split(parts[1], "&")[0]
		}
	}
	if strings.Contains(url, "youtu.be/") {
		parts := strings.SplitN(url, "youtu.be/", 2)
		return strings.SplitN(parts[1], "?", 2)[0]
	}
	return ""
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length] + "..."
}
