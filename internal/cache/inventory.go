package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix        = "user:%d"
	EventKeyPrefix       = "event:%d"
	NewsKeyPrefix        = "news:%d"
	ListingKeyPrefix     = "listing:%s"
	ReactionCountsPrefix = "reactions:%s:%d"
	TeamListKey          = "team:list"
)

const (
	UserTTL           = 5 * time.Minute
	EventTTL          = 10 * time.Minute
	NewsTTL           = 10 * time.Minute
	ListingTTL        = 30 * time.Minute
	ReactionCountsTTL = 1 * time.Minute
	TeamListTTL       = 30 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func EventKey(eventID uint) string {
	return fmt.Sprintf(EventKeyPrefix, eventID)
}

func NewsKey(articleID uint) string {
	return fmt.Sprintf(NewsKeyPrefix, articleID)
}

func ListingKey(slug string) string {
	return fmt.Sprintf(ListingKeyPrefix, slug)
}

func ReactionCountsKey(contentType string, contentID uint) string {
	return fmt.Sprintf(ReactionCountsPrefix, contentType, contentID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateEvent(ctx context.Context, eventID uint) {
	Invalidate(ctx, EventKey(eventID))
}

func InvalidateNews(ctx context.Context, articleID uint) {
	Invalidate(ctx, NewsKey(articleID))
}

func InvalidateListing(ctx context.Context, slug string) {
	Invalidate(ctx, ListingKey(slug))
}

func InvalidateReactions(ctx context.Context, contentType string, contentID uint) {
	Invalidate(ctx, ReactionCountsKey(contentType, contentID))
}

func InvalidateTeamList(ctx context.Context) {
	Invalidate(ctx, TeamListKey)
}
