package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/carbonintel/market-scout/internal/provider"
)

// Opportunity is the persisted form of a provider item. Rows are written
// once on fetch+enrich and never updated in place; de-duplication rides on
// the link unique index with (topic, title) as the fallback natural key.
type Opportunity struct {
	ID          string            `gorm:"primaryKey;size:40" json:"id"`
	Topic       string            `gorm:"size:128;index;uniqueIndex:idx_topic_title" json:"topic"`
	Title       string            `gorm:"size:512;uniqueIndex:idx_topic_title" json:"title"`
	Link        string            `gorm:"size:1024;uniqueIndex:idx_link,where:link <> ''" json:"link"`
	Source      string            `gorm:"size:128" json:"source"`
	Summary     string            `gorm:"size:600" json:"summary"`
	PublishedAt time.Time         `gorm:"index" json:"publishedAt"`
	ExtraData   datatypes.JSONMap `gorm:"type:jsonb" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// Item converts a row back into the wire shape.
func (o *Opportunity) Item() provider.Item {
	return provider.Item{
		Title:       o.Title,
		Link:        o.Link,
		Source:      o.Source,
		Summary:     o.Summary,
		PublishedAt: o.PublishedAt,
		Topic:       o.Topic,
	}
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Opportunity{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}

	return &Store{DB: db, Redis: rdb}, nil
}

// toValidUTF8 normalizes strings to legal UTF-8 so postgres never rejects
// a row over a stray byte sequence from an upstream feed.
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunesDB caps a string at limit runes. Second line of defense
// behind the enrichment budget, protecting the varchar(600) column.
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// naturalKeyID hashes the item's natural key (link, falling back to
// topic+title) into a stable row ID.
func naturalKeyID(it provider.Item) string {
	key := it.Link
	if key == "" {
		key = it.Topic + "|" + it.Title
	}
	h := sha1.New()
	h.Write([]byte(key))
	return hex.EncodeToString(h.Sum(nil))
}

// naturalKeyClause builds the dedupe predicate for a row. The link clause
// only applies when a link is present: an empty link is not a key and must
// never match other linkless rows, so those dedupe on (topic, title) alone.
func naturalKeyClause(row *Opportunity) (string, []any) {
	if row.Link == "" {
		return "topic = ? AND title = ?", []any{row.Topic, row.Title}
	}
	return "link = ? OR (topic = ? AND title = ?)", []any{row.Link, row.Topic, row.Title}
}

// Insert persists one item. Idempotent: an existing row with the same link
// or (topic, title) makes this a no-op. Returns whether a row was created.
func (s *Store) Insert(ctx context.Context, it provider.Item) (bool, error) {
	row := &Opportunity{
		ID:          naturalKeyID(it),
		Topic:       it.Topic,
		Title:       truncateRunesDB(toValidUTF8(it.Title), 512),
		Link:        it.Link,
		Source:      toValidUTF8(it.Source),
		Summary:     truncateRunesDB(toValidUTF8(it.Summary), 600),
		PublishedAt: it.PublishedAt,
		ExtraData:   datatypes.JSONMap(it.Raw),
	}

	clause, args := naturalKeyClause(row)
	var existing Opportunity
	err := s.DB.WithContext(ctx).
		Where(clause, args...).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := s.DB.WithContext(ctx).Create(row).Error; err != nil {
		// Concurrent fill for the same topic can race us to the unique
		// index; losing that race is the same no-op as finding the row.
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// queryCacheKey builds the redis key for a query. The floor is derived
// from time.Now() per request, so it is quantized to the hour; keying on
// the raw timestamp would mint a fresh key every second and the
// read-through would never hit. The drift this allows is bounded by the
// cache TTL, well under the hour.
func queryCacheKey(topic string, floor time.Time, skip, limit int, dir string) string {
	return fmt.Sprintf("opps:%s:%d:%d:%d:%s", topic, floor.Truncate(time.Hour).Unix(), skip, limit, dir)
}

// Query returns items for a topic, optionally floored on published_at,
// sorted and paginated. The floor applies before sorting and pagination.
// Results go through a short-TTL redis cache keyed on the full parameter
// tuple.
func (s *Store) Query(ctx context.Context, topic string, floor time.Time, skip, limit int, descending bool) ([]provider.Item, error) {
	dir := "ASC"
	if descending {
		dir = "DESC"
	}
	cacheKey := queryCacheKey(topic, floor, skip, limit, dir)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []provider.Item
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var rows []Opportunity
	db := s.DB.WithContext(ctx).Model(&Opportunity{}).Where("topic = ?", topic)
	if !floor.IsZero() {
		db = db.Where("published_at >= ?", floor)
	}
	db = db.Order("published_at " + dir)
	if skip > 0 {
		db = db.Offset(skip)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]provider.Item, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].Item())
	}

	const queryCacheTTL = 5 * time.Minute
	if s.Redis != nil && len(items) > 0 {
		if bs, err := json.Marshal(items); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, queryCacheTTL).Err()
		}
	}

	return items, nil
}

// Recent returns the n most recently inserted items for a topic, newest
// first. Used to build the chat prompt context.
func (s *Store) Recent(ctx context.Context, topic string, n int) ([]provider.Item, error) {
	if n <= 0 {
		n = 5
	}
	var rows []Opportunity
	if err := s.DB.WithContext(ctx).Model(&Opportunity{}).
		Where("topic = ?", topic).
		Order("created_at DESC").
		Limit(n).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]provider.Item, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].Item())
	}
	return items, nil
}
