package engine

import (
	"context"
	"sort"

	"vigilnet/internal/domain"
	"vigilnet/internal/store"
)

// postTimeLayout matches the original sheet's post timestamps; it sorts
// lexicographically in time order.
const postTimeLayout = "2006-01-02 15:04"

func postFromRecord(rec store.Record) domain.Post {
	return domain.Post{
		Feed:         rec["feed"],
		PostedBy:     rec["posted_by"],
		PostedByType: rec["posted_by_type"],
		Title:        rec["title"],
		ImageURL:     rec["image_url"],
		Body:         rec["body"],
		Timestamp:    rec["timestamp"],
		CycleID:      rec["cycle_id"],
	}
}

// Feed returns the visible posts of one feed, newest first.
func (e Engine) Feed(ctx context.Context, feedName string) ([]domain.Post, error) {
	if feedName == "" {
		return nil, invalidf("feed name is required")
	}
	rows, err := e.Store.ReadRows(ctx, store.TabFeeds)
	if err != nil {
		return nil, err
	}
	var posts []domain.Post
	for _, row := range rows {
		if row.Record["feed"] == feedName && row.Record["visible"] == "yes" {
			posts = append(posts, postFromRecord(row.Record))
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp > posts[j].Timestamp
	})
	return posts, nil
}

// PostOptions are the fields of a new feed post.
type PostOptions struct {
	Feed         string
	PostedBy     string
	PostedByType string
	Title        string
	ImageURL     string
	Body         string
}

// CreatePost appends a visible post stamped with the wall clock and the
// current cycle coordinate. The bliink feed is image-only and rejects
// posts without one.
func (e Engine) CreatePost(ctx context.Context, opts PostOptions) (domain.Post, error) {
	if opts.Feed == "" || opts.PostedBy == "" || opts.Body == "" {
		return domain.Post{}, invalidf("feed, posted_by and body are required")
	}
	if opts.Feed == "bliink" && opts.ImageURL == "" {
		return domain.Post{}, invalidf("bliink posts require an image")
	}
	if opts.PostedByType == "" {
		opts.PostedByType = "character"
	}
	cycleID, err := e.CurrentCycleID(ctx)
	if err != nil {
		return domain.Post{}, err
	}
	post := domain.Post{
		Feed:         opts.Feed,
		PostedBy:     opts.PostedBy,
		PostedByType: opts.PostedByType,
		Title:        opts.Title,
		ImageURL:     opts.ImageURL,
		Body:         opts.Body,
		Timestamp:    e.now().Format(postTimeLayout),
		CycleID:      cycleID,
	}
	err = e.Store.AppendRow(ctx, store.TabFeeds, store.Record{
		"feed":           post.Feed,
		"posted_by":      post.PostedBy,
		"posted_by_type": post.PostedByType,
		"title":          post.Title,
		"image_url":      post.ImageURL,
		"body":           post.Body,
		"timestamp":      post.Timestamp,
		"visible":        "yes",
		"cycle_id":       post.CycleID,
	})
	if err != nil {
		return domain.Post{}, err
	}
	return post, nil
}
