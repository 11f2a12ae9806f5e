package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"obrolan/server/internal/models"
	"obrolan/server/internal/normalize"

	"github.com/google/uuid"
)

// MemoryStore implements Users, Contacts and Messages in process memory. It
// backs handler tests and the dev mode used when DATABASE_URL is unset. The
// whole store is guarded by one mutex; contact-edge pairs are written under
// it, so the both-edges-or-none invariant holds here too.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]*models.User         // by ID
	byEmail  map[string]string               // normalized email -> ID
	edges    map[string]*models.ContactEdge  // ownerID+"/"+contactID
	messages []models.Message                // append-only, insertion order
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
		edges:   make(map[string]*models.ContactEdge),
	}
}

func edgeKey(ownerID, contactID string) string {
	return ownerID + "/" + contactID
}

// Create inserts a new user.
func (s *MemoryStore) Create(ctx context.Context, u models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalize.Email(u.Email)
	if _, ok := s.byEmail[email]; ok {
		return nil, ErrAlreadyExists
	}

	now := time.Now()
	u.ID = uuid.NewString()
	u.Email = email
	u.LastSeen = now
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.ID] = &u
	s.byEmail[email] = u.ID
	copied := u
	return &copied, nil
}

// GetByEmail finds a user by normalized email.
func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[normalize.Email(email)]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s.users[id]
	return &copied, nil
}

// GetByID finds a user by ID.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// UpsertProfile creates or refreshes a user document on authentication.
func (s *MemoryStore) UpsertProfile(ctx context.Context, email, name string, avatar, googleID *string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	norm := normalize.Email(email)

	if id, ok := s.byEmail[norm]; ok {
		u := s.users[id]
		u.Name = name
		if avatar != nil {
			u.Avatar = avatar
		}
		if googleID != nil {
			u.GoogleID = googleID
		}
		u.LastSeen = now
		u.UpdatedAt = now
		copied := *u
		return &copied, nil
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        norm,
		Name:         name,
		Avatar:       avatar,
		AuthProvider: "google",
		GoogleID:     googleID,
		LastSeen:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	s.byEmail[norm] = u.ID
	copied := *u
	return &copied, nil
}

// SetPresence flips the online flag and refreshes last-seen.
func (s *MemoryStore) SetPresence(ctx context.Context, id string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.IsOnline = online
	u.LastSeen = time.Now()
	return nil
}

// SetAvatar points the user at a new avatar reference.
func (s *MemoryStore) SetAvatar(ctx context.Context, id, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Avatar = &avatarURL
	u.UpdatedAt = time.Now()
	return nil
}

// Add writes both halves of the mutual edge under one lock.
func (s *MemoryStore) Add(ctx context.Context, owner, target *models.User) (*models.ContactEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edges[edgeKey(owner.ID, target.ID)]; ok {
		return nil, ErrAlreadyExists
	}

	addedAt := time.Now()
	own := &models.ContactEdge{
		OwnerID:       owner.ID,
		ContactID:     target.ID,
		ContactName:   target.Name,
		ContactAvatar: target.Avatar,
		ContactEmail:  target.Email,
		AddedAt:       addedAt,
		LastMessage:   "",
	}
	mirror := &models.ContactEdge{
		OwnerID:       target.ID,
		ContactID:     owner.ID,
		ContactName:   owner.Name,
		ContactAvatar: owner.Avatar,
		ContactEmail:  owner.Email,
		AddedAt:       addedAt,
		LastMessage:   "",
	}
	s.edges[edgeKey(owner.ID, target.ID)] = own
	s.edges[edgeKey(target.ID, owner.ID)] = mirror

	copied := *own
	return &copied, nil
}

// Exists checks for the directed (owner, contact) edge by key.
func (s *MemoryStore) Exists(ctx context.Context, ownerID, contactID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.edges[edgeKey(ownerID, contactID)]
	return ok, nil
}

// ListByOwner returns the owner's edges, most recent conversation first,
// edges without a message last.
func (s *MemoryStore) ListByOwner(ctx context.Context, ownerID string) ([]models.ContactEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var edges []models.ContactEdge
	for _, e := range s.edges {
		if e.OwnerID == ownerID {
			edges = append(edges, *e)
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		switch {
		case a.LastMessageAt == nil && b.LastMessageAt == nil:
			return a.AddedAt.After(b.AddedAt)
		case a.LastMessageAt == nil:
			return false
		case b.LastMessageAt == nil:
			return true
		default:
			return a.LastMessageAt.After(*b.LastMessageAt)
		}
	})
	return edges, nil
}

// UpdatePreview rewrites the preview on both halves of the edge.
func (s *MemoryStore) UpdatePreview(ctx context.Context, userA, userB, text string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{edgeKey(userA, userB), edgeKey(userB, userA)} {
		if e, ok := s.edges[key]; ok {
			e.LastMessage = text
			ts := at
			e.LastMessageAt = &ts
		}
	}
	return nil
}

// Append inserts one message, preserving insertion order within a chat.
func (s *MemoryStore) Append(ctx context.Context, m models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = uuid.NewString()
	m.CreatedAt = time.Now()
	s.messages = append(s.messages, m)
	copied := m
	return &copied, nil
}

// ListByChat returns one conversation's messages oldest first.
func (s *MemoryStore) ListByChat(ctx context.Context, chatID string, limit, offset int) ([]models.Message, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []models.Message
	for _, m := range s.messages {
		if m.ChatID == chatID {
			all = append(all, m)
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return append([]models.Message(nil), all[offset:end]...), total, nil
}
