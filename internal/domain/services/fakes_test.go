package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shotbox/shotbox/internal/domain/repositories"
	"github.com/shotbox/shotbox/internal/infrastructure/database/models"
)

// In-memory repository fakes for exercising the services without a
// database.

type fakeScreenshotRepo struct {
	mu          sync.Mutex
	screenshots map[uuid.UUID]*models.Screenshot
	links       map[uuid.UUID]map[uuid.UUID]bool
}

func newFakeScreenshotRepo() *fakeScreenshotRepo {
	return &fakeScreenshotRepo{
		screenshots: make(map[uuid.UUID]*models.Screenshot),
		links:       make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (r *fakeScreenshotRepo) Create(ctx context.Context, screenshot *models.Screenshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if screenshot.ID == uuid.Nil {
		screenshot.ID = uuid.New()
	}
	if screenshot.CreatedAt.IsZero() {
		screenshot.CreatedAt = time.Now().UTC()
	}
	copied := *screenshot
	r.screenshots[screenshot.ID] = &copied
	return nil
}

func (r *fakeScreenshotRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Screenshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.screenshots[id]
	if !ok || s.IsDeleted {
		return nil, repositories.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeScreenshotRepo) Update(ctx context.Context, screenshot *models.Screenshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.screenshots[screenshot.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *screenshot
	r.screenshots[screenshot.ID] = &copied
	return nil
}

func (r *fakeScreenshotRepo) List(ctx context.Context, userID uuid.UUID, filter repositories.ScreenshotFilter) ([]models.Screenshot, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matches []models.Screenshot
	for _, s := range r.screenshots {
		if s.UserID == userID && !s.IsDeleted {
			matches = append(matches, *s)
		}
	}
	total := int64(len(matches))
	if filter.Offset >= len(matches) {
		return nil, total, nil
	}
	matches = matches[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matches) {
		matches = matches[:filter.Limit]
	}
	return matches, total, nil
}

func (r *fakeScreenshotRepo) SemanticSearch(ctx context.Context, userID uuid.UUID, embedding []float32, limit int) ([]models.Screenshot, error) {
	screenshots, _, err := r.List(ctx, userID, repositories.ScreenshotFilter{Limit: limit})
	return screenshots, err
}

func (r *fakeScreenshotRepo) AttachTags(ctx context.Context, screenshotID uuid.UUID, tagIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.links[screenshotID] == nil {
		r.links[screenshotID] = make(map[uuid.UUID]bool)
	}
	for _, tagID := range tagIDs {
		r.links[screenshotID][tagID] = true
	}
	return nil
}

func (r *fakeScreenshotRepo) DetachTag(ctx context.Context, screenshotID, tagID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.links[screenshotID][tagID] {
		return false, nil
	}
	delete(r.links[screenshotID], tagID)
	return true, nil
}

func (r *fakeScreenshotRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.screenshots[id]
	if !ok {
		return repositories.ErrNotFound
	}
	s.AIProcessed = true
	return nil
}

func (r *fakeScreenshotRepo) ListUnprocessed(ctx context.Context, limit int) ([]models.Screenshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Screenshot
	for _, s := range r.screenshots {
		if !s.AIProcessed && !s.IsDeleted {
			result = append(result, *s)
		}
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (r *fakeScreenshotRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.screenshots[id]
	if !ok || s.IsDeleted {
		return repositories.ErrNotFound
	}
	now := time.Now().UTC()
	s.IsDeleted = true
	s.DeletedAt = &now
	return nil
}

func (r *fakeScreenshotRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.screenshots[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.screenshots, id)
	return nil
}

type fakeTagRepo struct {
	mu   sync.Mutex
	tags map[uuid.UUID]*models.Tag
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: make(map[uuid.UUID]*models.Tag)}
}

func (r *fakeTagRepo) Create(ctx context.Context, tag *models.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tags {
		if existing.UserID == tag.UserID && existing.Name == tag.Name {
			return repositories.ErrDuplicate
		}
	}
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	copied := *tag
	r.tags[tag.ID] = &copied
	return nil
}

func (r *fakeTagRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tag, ok := r.tags[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *tag
	return &copied, nil
}

func (r *fakeTagRepo) GetByName(ctx context.Context, userID uuid.UUID, name string) (*models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tag := range r.tags {
		if tag.UserID == userID && tag.Name == name {
			copied := *tag
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeTagRepo) Update(ctx context.Context, tag *models.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tags[tag.ID]; !ok {
		return repositories.ErrNotFound
	}
	for _, existing := range r.tags {
		if existing.ID != tag.ID && existing.UserID == tag.UserID && existing.Name == tag.Name {
			return repositories.ErrDuplicate
		}
	}
	copied := *tag
	r.tags[tag.ID] = &copied
	return nil
}

func (r *fakeTagRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]repositories.TagWithCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []repositories.TagWithCount
	for _, tag := range r.tags {
		if tag.UserID == userID {
			result = append(result, repositories.TagWithCount{Tag: *tag})
		}
	}
	return result, nil
}

func (r *fakeTagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tags[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.tags, id)
	return nil
}

type fakeOcrRepo struct {
	mu       sync.Mutex
	contents map[uuid.UUID]*models.OcrContent
	upserts  int
}

func newFakeOcrRepo() *fakeOcrRepo {
	return &fakeOcrRepo{contents: make(map[uuid.UUID]*models.OcrContent)}
}

func (r *fakeOcrRepo) GetByScreenshotID(ctx context.Context, screenshotID uuid.UUID) (*models.OcrContent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	content, ok := r.contents[screenshotID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *content
	return &copied, nil
}

func (r *fakeOcrRepo) Upsert(ctx context.Context, content *models.OcrContent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	if content.ID == uuid.Nil {
		content.ID = uuid.New()
	}
	copied := *content
	r.contents[content.ScreenshotID] = &copied
	return nil
}

func (r *fakeOcrRepo) Delete(ctx context.Context, screenshotID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contents[screenshotID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.contents, screenshotID)
	return nil
}

// fakeEngine returns canned OCR output, or an error when failWith is
// set. It counts invocations.
type fakeEngine struct {
	mu       sync.Mutex
	text     string
	failWith error
	calls    int
}

func (e *fakeEngine) Recognize(ctx context.Context, imagePath string) (*OcrResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.failWith != nil {
		return nil, e.failWith
	}
	confidence := 0.9
	return &OcrResult{Text: e.text, Confidence: &confidence, Language: "en"}, nil
}

func (e *fakeEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// fakeStorage keeps stored files in memory.
type fakeStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (s *fakeStorage) Store(ctx context.Context, params StorageParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := io.ReadAll(params.FileReader)
	if err != nil {
		return "", err
	}
	path := params.UserID.String() + "/" + params.Filename
	s.files[path] = data
	return path, nil
}

func (s *fakeStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	return nil
}

// fakeImages reports fixed dimensions.
type fakeImages struct {
	width  int
	height int
}

func (p *fakeImages) Metadata(ctx context.Context, path string) (*ImageMetadata, error) {
	return &ImageMetadata{Width: p.width, Height: p.height, MimeType: "image/png"}, nil
}

func (p *fakeImages) Thumbnail(ctx context.Context, path string) (string, error) {
	return "/thumbs/" + path, nil
}

// fakeCache implements the claim operations in memory.
type fakeCache struct {
	mu    sync.Mutex
	store map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]string)}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = "1"
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key], nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *fakeCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.store[key]; exists {
		return false, nil
	}
	c.store[key] = "1"
	return true, nil
}

func (c *fakeCache) Ping(ctx context.Context) error { return nil }
func (c *fakeCache) Close() error                   { return nil }
