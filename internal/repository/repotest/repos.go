package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store bundles one of each in-memory repository, sharing rows so that
// joins and foreign keys behave like the real schema.
type Store struct {
	AuthUsers     *AuthUsers
	Profiles      *Profiles
	Games         *Games
	Bookings      *Bookings
	Outbox        *Outbox
	LoginAttempts *LoginAttempts
}

// NewStore returns an empty store. Set Bookings.CheckForeignKeys to make
// inserts require an existing profile and game.
func NewStore() *Store {
	profiles := &Profiles{rows: make(map[uuid.UUID]domain.Profile)}
	games := &Games{rows: make(map[uuid.UUID]domain.Game)}
	return &Store{
		AuthUsers:     &AuthUsers{rows: make(map[uuid.UUID]domain.AuthUser)},
		Profiles:      profiles,
		Games:         games,
		Bookings:      &Bookings{rows: make(map[uuid.UUID]domain.Booking), profiles: profiles, games: games},
		Outbox:        &Outbox{},
		LoginAttempts: &LoginAttempts{},
	}
}

// --- auth_users ---

type AuthUsers struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.AuthUser
}

var _ repository.AuthUserRepository = (*AuthUsers)(nil)

func (r *AuthUsers) FindByEmail(_ context.Context, _ repository.DBTX, email string) (*domain.AuthUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *AuthUsers) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.AuthUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *AuthUsers) Create(_ context.Context, _ repository.DBTX, user *domain.AuthUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrConflict("email already registered")
		}
	}
	user.CreatedAt, user.UpdatedAt = now(), now()
	r.rows[user.ID] = *user
	return nil
}

// --- profiles ---

type Profiles struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.Profile
}

var _ repository.ProfileRepository = (*Profiles)(nil)

// Put stores a profile directly, bypassing any service logic.
func (r *Profiles) Put(p domain.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[p.ID] = p
}

func (r *Profiles) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *Profiles) InsertIfAbsent(_ context.Context, _ repository.DBTX, p *domain.Profile) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[p.ID]; ok {
		return false, nil
	}
	p.CreatedAt, p.UpdatedAt = now(), now()
	r.rows[p.ID] = *p
	return true, nil
}

func (r *Profiles) Update(_ context.Context, _ repository.DBTX, id uuid.UUID, u domain.ProfileUpdate) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	p.UpdatedAt = now()
	r.rows[id] = p
	return &p, nil
}

func (r *Profiles) List(_ context.Context, _ repository.DBTX) ([]domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Profile, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- games ---

type Games struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.Game
}

var _ repository.GameRepository = (*Games)(nil)

// Seed adds games by name and returns them in order.
func (r *Games) Seed(active bool, names ...string) []domain.Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Game, 0, len(names))
	for _, name := range names {
		g := domain.Game{ID: uuid.New(), Name: name, IsActive: active, CreatedAt: now(), UpdatedAt: now()}
		r.rows[g.ID] = g
		out = append(out, g)
	}
	return out
}

func (r *Games) list(filter func(domain.Game) bool) []domain.Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Game{}
	for _, g := range r.rows {
		if filter(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Games) ListActive(context.Context, repository.DBTX) ([]domain.Game, error) {
	return r.list(func(g domain.Game) bool { return g.IsActive }), nil
}

func (r *Games) ListAll(context.Context, repository.DBTX) ([]domain.Game, error) {
	return r.list(func(domain.Game) bool { return true }), nil
}

func (r *Games) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r *Games) Create(_ context.Context, _ repository.DBTX, g *domain.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.CreatedAt, g.UpdatedAt = now(), now()
	r.rows[g.ID] = *g
	return nil
}

func (r *Games) SetActive(_ context.Context, _ repository.DBTX, id uuid.UUID, active bool) (*domain.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	g.IsActive = active
	g.UpdatedAt = now()
	r.rows[id] = g
	return &g, nil
}

// --- bookings ---

// Bookings enforces the slot key across every status, as the
// bookings_slot_key index does.
type Bookings struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]domain.Booking
	history  []domain.StatusChange
	nextID   int64
	profiles *Profiles
	games    *Games

	CheckForeignKeys bool
	// AfterListBookedSlots, when set, runs after ListBookedSlots has read its
	// rows and before it returns them.
	AfterListBookedSlots func()
}

var _ repository.BookingRepository = (*Bookings)(nil)

func (r *Bookings) Insert(ctx context.Context, _ repository.DBTX, b *domain.Booking) error {
	if r.CheckForeignKeys {
		if p, _ := r.profiles.FindByID(ctx, nil, b.UserID); p == nil {
			return domain.ErrNotFound("profile", b.UserID.String())
		}
		if g, _ := r.games.FindByID(ctx, nil, b.GameID); g == nil {
			return domain.ErrNotFound("game", b.GameID.String())
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Slot() == b.Slot() {
			return domain.ErrConflict("time slot already booked")
		}
	}
	b.CreatedAt, b.UpdatedAt = now(), now()
	r.rows[b.ID] = *b
	return nil
}

func (r *Bookings) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *Bookings) LockForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Booking, error) {
	return r.FindByID(ctx, nil, id)
}

func (r *Bookings) UpdateStatus(_ context.Context, _ pgx.Tx, id uuid.UUID, status domain.BookingStatus, cost *int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	b.Status = status
	if cost != nil {
		c := *cost
		b.Cost = &c
	}
	b.UpdatedAt = now()
	r.rows[id] = b
	return &b, nil
}

func (r *Bookings) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	kept := r.history[:0]
	for _, c := range r.history {
		if c.BookingID != id {
			kept = append(kept, c)
		}
	}
	r.history = kept
	return true, nil
}

func (r *Bookings) sorted(filter func(domain.Booking) bool) []domain.Booking {
	out := []domain.Booking{}
	for _, b := range r.rows {
		if filter(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *Bookings) ListByUser(_ context.Context, _ repository.DBTX, userID uuid.UUID) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(b domain.Booking) bool { return b.UserID == userID }), nil
}

func (r *Bookings) ListAll(ctx context.Context, _ repository.DBTX) ([]domain.BookingDetail, error) {
	r.mu.Lock()
	rows := r.sorted(func(domain.Booking) bool { return true })
	r.mu.Unlock()

	out := make([]domain.BookingDetail, 0, len(rows))
	for _, b := range rows {
		d := domain.BookingDetail{Booking: b}
		if p, _ := r.profiles.FindByID(ctx, nil, b.UserID); p != nil {
			d.UserName, d.UserEmail = p.Name, p.Email
		}
		if g, _ := r.games.FindByID(ctx, nil, b.GameID); g != nil {
			d.GameName = g.Name
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *Bookings) ListBookedSlots(_ context.Context, _ repository.DBTX, gameID uuid.UUID, date string) ([]string, error) {
	r.mu.Lock()
	out := []string{}
	for _, b := range r.rows {
		if b.GameID == gameID && b.BookingDate == date && b.Status.OccupiesSlot() {
			out = append(out, b.TimeSlot)
		}
	}
	hook := r.AfterListBookedSlots
	r.mu.Unlock()

	sort.Strings(out)
	if hook != nil {
		hook()
	}
	return out, nil
}

func (r *Bookings) InsertStatusChange(_ context.Context, _ repository.DBTX, c *domain.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = now()
	r.history = append(r.history, *c)
	return nil
}

func (r *Bookings) ListStatusChanges(_ context.Context, _ repository.DBTX, bookingID uuid.UUID) ([]domain.StatusChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.StatusChange{}
	for _, c := range r.history {
		if c.BookingID == bookingID {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- event_outbox ---

type Outbox struct {
	mu     sync.Mutex
	rows   []domain.OutboxRow
	nextID int64
}

var _ repository.OutboxRepository = (*Outbox)(nil)

func (r *Outbox) Insert(_ context.Context, _ repository.DBTX, d domain.OutboxDraft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.rows = append(r.rows, domain.OutboxRow{ID: r.nextID, OutboxDraft: d})
	return nil
}

func (r *Outbox) FetchUnpublished(_ context.Context, _ pgx.Tx, limit int) ([]domain.OutboxRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.OutboxRow{}
	for _, row := range r.rows {
		if row.PublishedAt == nil && len(out) < limit {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *Outbox) MarkPublished(_ context.Context, _ repository.DBTX, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ts := now()
	for _, id := range ids {
		for i := range r.rows {
			if r.rows[i].ID == id {
				r.rows[i].PublishedAt = &ts
			}
		}
	}
	return nil
}

func (r *Outbox) PurgePublished(_ context.Context, _ repository.DBTX, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	var purged int64
	for _, row := range r.rows {
		if row.PublishedAt != nil && row.PublishedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return purged, nil
}

// Types returns the event types written so far, in insertion order.
func (r *Outbox) Types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, len(r.rows))
	for i, row := range r.rows {
		out[i] = row.EventType
	}
	return out
}

// --- login_attempts ---

type LoginAttempts struct {
	mu   sync.Mutex
	rows []loginAttempt
}

type loginAttempt struct {
	email   string
	success bool
	at      time.Time
}

var _ repository.LoginAttemptRepository = (*LoginAttempts)(nil)

func (r *LoginAttempts) Record(_ context.Context, _ repository.DBTX, email, _ string, success bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, loginAttempt{email: email, success: success, at: now()})
	return nil
}

func (r *LoginAttempts) CountFailuresSince(_ context.Context, _ repository.DBTX, email string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.rows {
		if a.email == email && !a.success && !a.at.Before(since) {
			n++
		}
	}
	return n, nil
}

// now returns strictly increasing UTC timestamps so ordering by time is stable.
var (
	clockMu sync.Mutex
	last    time.Time
)

func now() time.Time {
	clockMu.Lock()
	defer clockMu.Unlock()
	t := time.Now().UTC()
	if !t.After(last) {
		t = last.Add(time.Microsecond)
	}
	last = t
	return t
}
