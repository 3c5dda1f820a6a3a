package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	// IndexPagePrefix keys the cached global feed by requested page number.
	IndexPagePrefix = "index_page:%d"
)

const (
	// IndexPageTTL bounds how stale the cached global feed may get. Post
	// creation and deletion do NOT invalidate entries; a deleted post keeps
	// appearing until expiry or an explicit flush. The contract is
	// "eventually consistent within TTL".
	IndexPageTTL = 20 * time.Second
)

// IndexPageKey returns the cache key for the given global feed page.
func IndexPageKey(page int) string {
	return fmt.Sprintf(IndexPagePrefix, page)
}

// FlushIndex drops every cached global feed page. This is the only
// event-based invalidation path the page cache has.
func FlushIndex(ctx context.Context) error {
	if client == nil {
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, "index_page:*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
