package application

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/internal/domain/account"
	bookingDomain "github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/internal/domain/hostel"
	"github.com/hostelhub/service-booking/pkg/domain"
	"github.com/hostelhub/service-booking/pkg/kafka"
)

// memDB is an in-memory Store and UnitOfWork. Units of work run
// concurrently; LockByID inside one takes a per-hostel lock held until the
// unit ends, like SELECT ... FOR UPDATE. Failed units undo their writes.
type memDB struct {
	mu sync.Mutex

	bookings map[uuid.UUID]*bookingDomain.Booking
	hostels  map[uuid.UUID]*hostel.Hostel
	guests   map[uuid.UUID]*account.Guest

	rowsMu sync.Mutex
	rows   map[uuid.UUID]*sync.Mutex

	// txErr, when set, fails the next unit of work before it runs.
	txErr error
}

func newMemDB() *memDB {
	return &memDB{
		bookings: map[uuid.UUID]*bookingDomain.Booking{},
		hostels:  map[uuid.UUID]*hostel.Hostel{},
		guests:   map[uuid.UUID]*account.Guest{},
		rows:     map[uuid.UUID]*sync.Mutex{},
	}
}

func (db *memDB) Bookings() bookingDomain.BookingRepository { return memBookings{db: db} }
func (db *memDB) Hostels() hostel.Repository                { return memHostels{db: db} }
func (db *memDB) Guests() account.Repository                { return memGuests{db: db} }

func (db *memDB) Do(ctx context.Context, fn func(ctx context.Context, store bookingDomain.Store) error) error {
	db.mu.Lock()
	if err := db.txErr; err != nil {
		db.txErr = nil
		db.mu.Unlock()
		return err
	}
	db.mu.Unlock()

	tx := &memTx{db: db, held: map[uuid.UUID]*sync.Mutex{}}
	defer tx.release()
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (db *memDB) row(id uuid.UUID) *sync.Mutex {
	db.rowsMu.Lock()
	defer db.rowsMu.Unlock()
	m, ok := db.rows[id]
	if !ok {
		m = &sync.Mutex{}
		db.rows[id] = m
	}
	return m
}

// memTx is the Store handed to a unit of work.
type memTx struct {
	db   *memDB
	held map[uuid.UUID]*sync.Mutex
	undo []func()
}

func (tx *memTx) Bookings() bookingDomain.BookingRepository { return memBookings{db: tx.db, tx: tx} }
func (tx *memTx) Hostels() hostel.Repository                { return memHostels{db: tx.db, tx: tx} }
func (tx *memTx) Guests() account.Repository                { return memGuests{db: tx.db, tx: tx} }

func (tx *memTx) lock(id uuid.UUID) {
	if _, ok := tx.held[id]; ok {
		return
	}
	m := tx.db.row(id)
	m.Lock()
	tx.held[id] = m
}

func (tx *memTx) release() {
	for _, m := range tx.held {
		m.Unlock()
	}
}

// record registers fn to run on rollback. Callers hold db.mu. Outside a unit
// of work writes are final.
func (tx *memTx) record(fn func()) {
	if tx != nil {
		tx.undo = append(tx.undo, fn)
	}
}

func (tx *memTx) rollback() {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
}

func cloneBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(b.ID(), b.BookingNumber(), b.UserID(), b.HostelID(), b.Stay(),
		b.Guests(), b.TotalPriceCents(), b.Currency(), b.Status(), b.Version(), b.CreatedAt(), b.UpdatedAt())
}

func (db *memDB) putHostel(h *hostel.Hostel) {
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := *h
	db.hostels[h.ID] = &cp
}

func (db *memDB) putGuest(g *account.Guest) {
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := *g
	db.guests[g.ID] = &cp
}

func (db *memDB) putBooking(b *bookingDomain.Booking) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.bookings[b.ID()] = cloneBooking(b)
}

func (db *memDB) booking(id uuid.UUID) *bookingDomain.Booking {
	db.mu.Lock()
	defer db.mu.Unlock()
	if b, ok := db.bookings[id]; ok {
		return cloneBooking(b)
	}
	return nil
}

// --- bookings ---

type memBookings struct {
	db *memDB
	tx *memTx
}

func (r memBookings) find(pred func(*bookingDomain.Booking) bool) []*bookingDomain.Booking {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range r.db.bookings {
		if pred(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID().String() < out[j].ID().String()
		}
		return out[i].CreatedAt().After(out[j].CreatedAt())
	})
	return out
}

func (r memBookings) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	if b := r.db.booking(id); b != nil {
		return b, nil
	}
	return nil, domain.NewNotFoundError("booking", id.String())
}

func (r memBookings) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*bookingDomain.Booking, error) {
	b, err := r.FindByID(ctx, id)
	if err != nil || b.UserID() != userID {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return b, nil
}

func (r memBookings) FindActiveOverlapping(_ context.Context, hostelID uuid.UUID, window bookingDomain.DateRange) ([]*bookingDomain.Booking, error) {
	found := r.find(func(b *bookingDomain.Booking) bool {
		return b.HostelID() == hostelID && b.IsActive() && b.Stay().Overlaps(window)
	})
	// Let other goroutines run between the scan and the caller's insert.
	runtime.Gosched()
	return found, nil
}

func (r memBookings) FindActiveEndingOnOrAfter(_ context.Context, hostelID uuid.UUID, day time.Time) ([]*bookingDomain.Booking, error) {
	return r.find(func(b *bookingDomain.Booking) bool {
		return b.HostelID() == hostelID && b.IsActive() && !b.Stay().CheckOut.Before(day)
	}), nil
}

func (r memBookings) page(all []*bookingDomain.Booking, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, int64, error) {
	var matched []*bookingDomain.Booking
	for _, b := range all {
		if filter.Status == nil || b.Status() == *filter.Status {
			matched = append(matched, b)
		}
	}
	page, perPage := domain.NormalizePage(filter.Page, filter.PerPage)
	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], int64(len(matched)), nil
}

func (r memBookings) FindByUser(_ context.Context, userID uuid.UUID, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, int64, error) {
	return r.page(r.find(func(b *bookingDomain.Booking) bool { return b.UserID() == userID }), filter)
}

func (r memBookings) FindByHostels(_ context.Context, hostelIDs []uuid.UUID, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, int64, error) {
	ids := map[uuid.UUID]bool{}
	for _, id := range hostelIDs {
		ids[id] = true
	}
	return r.page(r.find(func(b *bookingDomain.Booking) bool { return ids[b.HostelID()] }), filter)
}

func (r memBookings) AggregateByStatus(_ context.Context, hostelIDs []uuid.UUID) ([]bookingDomain.StatusAggregate, error) {
	ids := map[uuid.UUID]bool{}
	for _, id := range hostelIDs {
		ids[id] = true
	}
	byStatus := map[bookingDomain.BookingStatus]*bookingDomain.StatusAggregate{}
	for _, b := range r.find(func(b *bookingDomain.Booking) bool { return hostelIDs == nil || ids[b.HostelID()] }) {
		agg, ok := byStatus[b.Status()]
		if !ok {
			agg = &bookingDomain.StatusAggregate{Status: b.Status()}
			byStatus[b.Status()] = agg
		}
		agg.Count++
		agg.RevenueCents += b.TotalPriceCents()
	}
	var out []bookingDomain.StatusAggregate
	for _, agg := range byStatus {
		out = append(out, *agg)
	}
	return out, nil
}

func (r memBookings) DeleteByHostel(_ context.Context, hostelID uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, b := range r.db.bookings {
		if b.HostelID() == hostelID {
			id, b := id, b
			delete(r.db.bookings, id)
			r.tx.record(func() { r.db.bookings[id] = b })
			n++
		}
	}
	return n, nil
}

func (r memBookings) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	id := b.ID()
	r.db.bookings[id] = cloneBooking(b)
	r.tx.record(func() { delete(r.db.bookings, id) })
	return nil
}

func (r memBookings) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	current, ok := r.db.bookings[b.ID()]
	if !ok || current.Version() != b.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.db.bookings[b.ID()] = cloneBooking(b)
	r.tx.record(func() { r.db.bookings[current.ID()] = current })
	return nil
}

// --- hostels ---

type memHostels struct {
	db *memDB
	tx *memTx
}

func (r memHostels) FindByID(_ context.Context, id uuid.UUID) (*hostel.Hostel, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	h, ok := r.db.hostels[id]
	if !ok {
		return nil, domain.NewNotFoundError("hostel", id.String())
	}
	cp := *h
	return &cp, nil
}

// LockByID holds the hostel's row lock until the unit of work ends. Outside
// a unit of work it is a plain read.
func (r memHostels) LockByID(ctx context.Context, id uuid.UUID) (*hostel.Hostel, error) {
	if r.tx != nil {
		r.tx.lock(id)
	}
	return r.FindByID(ctx, id)
}

func (r memHostels) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*hostel.Hostel, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := map[uuid.UUID]*hostel.Hostel{}
	for _, id := range ids {
		if h, ok := r.db.hostels[id]; ok {
			cp := *h
			out[id] = &cp
		}
	}
	return out, nil
}

func (r memHostels) list(pred func(*hostel.Hostel) bool) []*hostel.Hostel {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*hostel.Hostel
	for _, h := range r.db.hostels {
		if pred(h) {
			cp := *h
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r memHostels) ListByLandlord(_ context.Context, landlordID uuid.UUID) ([]*hostel.Hostel, error) {
	return r.list(func(h *hostel.Hostel) bool { return h.LandlordID == landlordID }), nil
}

func (r memHostels) ListAll(_ context.Context) ([]*hostel.Hostel, error) {
	return r.list(func(*hostel.Hostel) bool { return true }), nil
}

func (r memHostels) Upsert(_ context.Context, h *hostel.Hostel) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.tx.record(restoreEntry(r.db.hostels, h.ID))
	cp := *h
	r.db.hostels[h.ID] = &cp
	return nil
}

func (r memHostels) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.tx.record(restoreEntry(r.db.hostels, id))
	delete(r.db.hostels, id)
	return nil
}

// restoreEntry returns an undo that puts m[id] back to its current state.
func restoreEntry[V any](m map[uuid.UUID]V, id uuid.UUID) func() {
	prev, ok := m[id]
	return func() {
		if ok {
			m[id] = prev
		} else {
			delete(m, id)
		}
	}
}

// --- guests ---

type memGuests struct {
	db *memDB
	tx *memTx
}

func (r memGuests) FindByID(_ context.Context, id uuid.UUID) (*account.Guest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	g, ok := r.db.guests[id]
	if !ok {
		return nil, domain.NewNotFoundError("user", id.String())
	}
	cp := *g
	return &cp, nil
}

func (r memGuests) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*account.Guest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := map[uuid.UUID]*account.Guest{}
	for _, id := range ids {
		if g, ok := r.db.guests[id]; ok {
			cp := *g
			out[id] = &cp
		}
	}
	return out, nil
}

func (r memGuests) Upsert(_ context.Context, g *account.Guest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.tx.record(restoreEntry(r.db.guests, g.ID))
	cp := *g
	r.db.guests[g.ID] = &cp
	return nil
}

// --- collaborators ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type mapStatsCache struct {
	mu          sync.Mutex
	entries     map[string]*bookingDomain.Stats
	invalidated []string
}

func newMapStatsCache() *mapStatsCache {
	return &mapStatsCache{entries: map[string]*bookingDomain.Stats{}}
}

func (c *mapStatsCache) Get(_ context.Context, key string) (*bookingDomain.Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *mapStatsCache) Set(_ context.Context, key string, stats *bookingDomain.Stats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *stats
	c.entries[key] = &cp
	return nil
}

func (c *mapStatsCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.invalidated = append(c.invalidated, keys...)
	return nil
}
