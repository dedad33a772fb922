package cache

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// commentTTL keeps recent comment lists warm without letting stale
// projects accumulate in memory
const commentTTL = 24 * time.Hour

// CachedComment is the JSON shape stored in the comment list
type CachedComment struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisClient caches per-project comment threads. The database stays
// the source of truth; a cold or failing cache only costs a query.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects to Redis. Returns nil without error when no
// address is configured; all methods tolerate a nil receiver.
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	if addr == "" {
		log.Println("[Redis] REDIS_ADDR not set, comment caching disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("[Redis] Connected to %s", addr)
	return &RedisClient{client: client}, nil
}

func commentKey(projectID int64) string {
	return "project:" + strconv.FormatInt(projectID, 10) + ":comments"
}

// AppendComment appends one comment to the project's cached thread
func (r *RedisClient) AppendComment(ctx context.Context, c *CachedComment) error {
	if r == nil {
		return nil
	}
	key := commentKey(c.ProjectID)

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := r.client.RPush(ctx, key, data).Err(); err != nil {
		log.Printf("[Redis] Failed to cache comment: %v", err)
		return err
	}
	r.client.Expire(ctx, key, commentTTL)
	return nil
}

// GetComments returns the cached thread for a project. A nil slice
// means cache miss; an empty cached thread is not distinguishable from
// a miss, which is fine since both fall through to the database.
func (r *RedisClient) GetComments(ctx context.Context, projectID int64) ([]CachedComment, error) {
	if r == nil {
		return nil, nil
	}
	results, err := r.client.LRange(ctx, commentKey(projectID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	comments := make([]CachedComment, 0, len(results))
	for _, data := range results {
		var c CachedComment
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			continue
		}
		comments = append(comments, c)
	}
	return comments, nil
}

// PrimeComments replaces the cached thread with a full list from the
// database, preserving insertion order
func (r *RedisClient) PrimeComments(ctx context.Context, projectID int64, comments []CachedComment) error {
	if r == nil || len(comments) == 0 {
		return nil
	}
	key := commentKey(projectID)

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	for i := range comments {
		data, err := json.Marshal(&comments[i])
		if err != nil {
			return err
		}
		pipe.RPush(ctx, key, data)
	}
	pipe.Expire(ctx, key, commentTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateComments drops the cached thread, e.g. when the project is
// deleted
func (r *RedisClient) InvalidateComments(ctx context.Context, projectID int64) error {
	if r == nil {
		return nil
	}
	return r.client.Del(ctx, commentKey(projectID)).Err()
}

// Health checks connectivity
func (r *RedisClient) Health(ctx context.Context) error {
	if r == nil {
		return nil
	}
	return r.client.Ping(ctx).Err()
}

// Close closes the connection
func (r *RedisClient) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}
