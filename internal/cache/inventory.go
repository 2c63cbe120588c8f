package cache

import (
	"context"
	"fmt"
	"time"
)

const ProfileKeyPrefix = "profile:%s"

const ProfileTTL = 5 * time.Minute

func ProfileKey(username string) string {
	return fmt.Sprintf(ProfileKeyPrefix, username)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateProfile(ctx context.Context, usernames ...string) {
	keys := make([]string, 0, len(usernames))
	for _, u := range usernames {
		keys = append(keys, ProfileKey(u))
	}
	Invalidate(ctx, keys...)
}
