package engine

import (
	"context"
	"sync"
	"time"

	"github.com/stagedoor/talent-booking/internal/model"
)

// fakeDB is an in-memory stand-in for the MySQL repositories.  All
// mutations happen under one mutex, and conditional updates check the
// expected status inside the critical section, which reproduces the
// rows-affected compare-and-swap semantics the engine relies on.
type fakeDB struct {
	mu        sync.Mutex
	seq       uint64
	bookings  map[uint64]model.Booking
	parts     map[uint64]model.Participation
	contracts map[uint64]model.Contract
	sigs      map[uint64]model.Signature
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		bookings:  make(map[uint64]model.Booking),
		parts:     make(map[uint64]model.Participation),
		contracts: make(map[uint64]model.Contract),
		sigs:      make(map[uint64]model.Signature),
	}
}

func (db *fakeDB) nextID() uint64 {
	db.seq++
	return db.seq
}

type fakeBookings struct{ db *fakeDB }

func (f *fakeBookings) Create(_ context.Context, b *model.Booking) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b.ID = f.db.nextID()
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	f.db.bookings[b.ID] = *b
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (f *fakeBookings) UpdateStatus(_ context.Context, id uint64, from, to model.BookingStatus) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = time.Now().UTC()
	f.db.bookings[id] = b
	return true, nil
}

type fakeParts struct{ db *fakeDB }

func (f *fakeParts) Create(_ context.Context, p *model.Participation) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.parts {
		if existing.BookingID == p.BookingID && existing.TalentID == p.TalentID && existing.Status == model.RequestPending {
			return ErrDuplicatePending
		}
	}
	p.ID = f.db.nextID()
	p.CreatedAt = time.Now().UTC()
	f.db.parts[p.ID] = *p
	return nil
}

func (f *fakeParts) GetByID(_ context.Context, id uint64) (*model.Participation, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.parts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (f *fakeParts) ListByBooking(_ context.Context, bookingID uint64) ([]model.Participation, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Participation
	for _, p := range f.db.parts {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParts) ListAcceptedWithoutContract(_ context.Context, bookingID uint64) ([]model.Participation, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Participation
	for _, p := range f.db.parts {
		if p.BookingID != bookingID || p.Status != model.RequestAccepted {
			continue
		}
		active := false
		for _, c := range f.db.contracts {
			if c.ParticipationID == p.ID && c.Status != model.ContractCancelled {
				active = true
				break
			}
		}
		if !active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParts) Respond(_ context.Context, id uint64, status model.RequestStatus, message *string, at time.Time) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.parts[id]
	if !ok || p.Status != model.RequestPending {
		return false, nil
	}
	p.Status = status
	p.Message = message
	p.RespondedAt = &at
	f.db.parts[id] = p
	return true, nil
}

type fakeContracts struct{ db *fakeDB }

func (f *fakeContracts) Create(_ context.Context, c *model.Contract) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c.ID = f.db.nextID()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	f.db.contracts[c.ID] = *c
	return nil
}

func (f *fakeContracts) GetByID(_ context.Context, id uint64) (*model.Contract, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (f *fakeContracts) ListByBooking(_ context.Context, bookingID uint64) ([]model.Contract, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Contract
	for _, c := range f.db.contracts {
		if c.BookingID == bookingID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContracts) ActiveExists(_ context.Context, participationID uint64) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, c := range f.db.contracts {
		if c.ParticipationID == participationID && c.Status != model.ContractCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeContracts) UpdateStatus(_ context.Context, id uint64, from, to model.ContractStatus) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.contracts[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = time.Now().UTC()
	f.db.contracts[id] = c
	return true, nil
}

type fakeSigs struct{ db *fakeDB }

func (f *fakeSigs) CreateBatch(_ context.Context, sigs []model.Signature) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i := range sigs {
		sigs[i].ID = f.db.nextID()
		sigs[i].CreatedAt = time.Now().UTC()
		f.db.sigs[sigs[i].ID] = sigs[i]
	}
	return nil
}

func (f *fakeSigs) GetByID(_ context.Context, id uint64) (*model.Signature, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.sigs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (f *fakeSigs) ListByContract(_ context.Context, contractID uint64) ([]model.Signature, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Signature
	for _, s := range f.db.sigs {
		if s.ContractID == contractID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSigs) MarkSigned(_ context.Context, id uint64, blobRef string, addr, agent *string, at time.Time) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.sigs[id]
	if !ok || s.Status != model.SignaturePending {
		return false, nil
	}
	s.Status = model.SignatureSigned
	s.BlobRef = &blobRef
	s.SignerAddr = addr
	s.SignerAgent = agent
	s.SignedAt = &at
	f.db.sigs[id] = s
	return true, nil
}

func (f *fakeSigs) ExpirePending(_ context.Context, contractID uint64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for id, s := range f.db.sigs {
		if s.ContractID == contractID && s.Status == model.SignaturePending {
			s.Status = model.SignatureExpired
			f.db.sigs[id] = s
		}
	}
	return nil
}

// fakeNotifier records emitted events for assertions.
type fakeNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *fakeNotifier) Emit(_ context.Context, ev Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *fakeNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, ev := range n.events {
		if ev.Type == eventType {
			c++
		}
	}
	return c
}
