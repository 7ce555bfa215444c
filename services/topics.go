package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"contentbot/types"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

const (
	extractorTimeout = 30 * time.Second
	maxExcerptLength = 500
)

// FeedPresets maps friendly names to RSS feed URLs
var FeedPresets = map[string]string{
	"tiny":     "https://tinybuddha.com/feed/",
	"zen":      "https://zenhabits.net/feed/",
	"goodnews": "https://www.goodnewsnetwork.org/feed/",
	"hn":       "https://hnrss.org/newest",
}

// ResolveFeedURL resolves a feed identifier to a URL
// If the input is a preset name, returns the corresponding URL
// Otherwise, returns the input as-is (assuming it's a direct URL)
func ResolveFeedURL(feedInput string) string {
	if url, exists := FeedPresets[feedInput]; exists {
		return url
	}
	return feedInput
}

// SeenFilter remembers topics used by earlier runs
type SeenFilter interface {
	Seen(ctx context.Context, topic *types.Topic) (bool, error)
	Remember(ctx context.Context, topic *types.Topic) error
}

// TopicSource picks a current headline from an RSS feed to seed the script
type TopicSource struct {
	feedURL string
	extract bool
	parser  *gofeed.Parser
	seen    SeenFilter
	// fromURL extracts the readable text of an article
	fromURL func(url string, timeout time.Duration) (readability.Article, error)
}

// TopicOption configures a TopicSource
type TopicOption func(*TopicSource)

// WithSeenFilter skips topics that f reports as already used
func WithSeenFilter(f SeenFilter) TopicOption {
	return func(t *TopicSource) { t.seen = f }
}

// NewTopicSource creates a topic source, or returns nil when feed is empty
func NewTopicSource(feed string, extract bool, opts ...TopicOption) *TopicSource {
	if feed == "" {
		return nil
	}
	t := &TopicSource{
		feedURL: ResolveFeedURL(feed),
		extract: extract,
		parser:  gofeed.NewParser(),
		fromURL: func(url string, timeout time.Duration) (readability.Article, error) {
			return readability.FromURL(url, timeout)
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Pick returns the newest item of the feed that no earlier run used. When
// every item was used, the newest one is returned anyway.
func (t *TopicSource) Pick(ctx context.Context) (*types.Topic, error) {
	feed, err := t.parser.ParseURLWithContext(t.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	var items []*gofeed.Item
	for _, item := range feed.Items {
		if strings.TrimSpace(item.Title) != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("feed %s has no items", t.feedURL)
	}
	slices.SortStableFunc(items, func(a, b *gofeed.Item) int {
		return publishedAt(b).Compare(publishedAt(a))
	})
	candidates := make([]*types.Topic, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, &types.Topic{
			Title:   strings.TrimSpace(item.Title),
			Link:    item.Link,
			Excerpt: truncate(stripSpace(item.Description), maxExcerptLength),
		})
	}

	topic := t.firstUnseen(ctx, candidates)

	if t.extract && topic.Link != "" {
		article, err := t.fromURL(topic.Link, extractorTimeout)
		if err == nil {
			text := article.Excerpt
			if text == "" {
				text = article.TextContent
			}
			if text = stripSpace(text); text != "" {
				topic.Excerpt = truncate(text, maxExcerptLength)
			}
		}
	}
	return topic, nil
}

func (t *TopicSource) firstUnseen(ctx context.Context, candidates []*types.Topic) *types.Topic {
	if t.seen == nil {
		return candidates[0]
	}

	chosen := candidates[0]
	for _, c := range candidates {
		seen, err := t.seen.Seen(ctx, c)
		if err != nil {
			log.Printf("⚠️  Topic filter unavailable: %v", err)
			break
		}
		if !seen {
			chosen = c
			break
		}
	}

	if err := t.seen.Remember(ctx, chosen); err != nil {
		log.Printf("⚠️  Failed to remember topic: %v", err)
	}
	return chosen
}

func publishedAt(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
