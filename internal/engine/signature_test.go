package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stagedoor/talent-booking/internal/model"
)

// sentContract drives a booking to CONTRACT_SENT with one accepted
// talent and returns the automatically dispatched contract plus its
// signature rows, one per signer.
func sentContract(t *testing.T, f *fixture, coSigners ...Actor) (*model.Booking, *model.Contract, []model.Signature) {
	t.Helper()
	ctx := context.Background()
	b := f.createBooking(t)
	p := f.invite(t, b.ID, talent.ID)
	f.accept(t, talent, p.ID)
	c, err := f.eng.CreateContract(ctx, admin, b.ID, p.ID, nil)
	if err != nil {
		t.Fatalf("CreateContract: %v", err)
	}
	ids := make([]uint64, 0, len(coSigners))
	for _, a := range coSigners {
		ids = append(ids, a.ID)
	}
	if _, err := f.eng.SendContract(ctx, admin, c.ID, ids); err != nil {
		t.Fatalf("SendContract: %v", err)
	}
	for _, s := range []model.BookingStatus{model.BookingProposed, model.BookingContractSent} {
		if _, err := f.eng.AdvanceBooking(ctx, admin, b.ID, s); err != nil {
			t.Fatalf("advance to %s: %v", s, err)
		}
	}
	sigs, err := f.eng.Signatures.ListByContract(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListByContract: %v", err)
	}
	return f.booking(t, b.ID), f.contract(t, c.ID), sigs
}

func sigFor(t *testing.T, sigs []model.Signature, signerID uint64) *model.Signature {
	t.Helper()
	for i := range sigs {
		if sigs[i].SignerID == signerID {
			return &sigs[i]
		}
	}
	t.Fatalf("no signature row for signer %d", signerID)
	return nil
}

func TestSignCompletesContractAndBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, c, sigs := sentContract(t, f)

	got, err := f.eng.Sign(ctx, talent, sigs[0].ID, SignInput{BlobRef: "blob://sig-1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if got.Status != model.SignatureSigned || got.SignedAt == nil {
		t.Fatalf("signature = %+v, want signed with timestamp", got)
	}
	if f.contract(t, c.ID).Status != model.ContractSigned {
		t.Fatal("contract not promoted to SIGNED after the last signature")
	}
	if f.booking(t, c.BookingID).Status != model.BookingSigned {
		t.Fatal("booking not advanced to SIGNED by the completed contract")
	}
	if n := f.not.count(EventContractFullySigned); n != 1 {
		t.Fatalf("contract_fully_signed events = %d, want 1", n)
	}
}

func TestSignWithCoSigner(t *testing.T) {
	ctx := context.Background()
	guardian := Actor{ID: 40, Role: model.RoleClient}
	f := newFixture(t)
	b, c, sigs := sentContract(t, f, guardian)
	if len(sigs) != 2 {
		t.Fatalf("signature rows = %d, want 2", len(sigs))
	}

	if _, err := f.eng.Sign(ctx, talent, sigFor(t, sigs, talent.ID).ID, SignInput{BlobRef: "blob://t"}); err != nil {
		t.Fatalf("talent Sign: %v", err)
	}
	if f.contract(t, c.ID).Status != model.ContractSent {
		t.Fatal("contract promoted before every signer signed")
	}
	if f.booking(t, b.ID).Status != model.BookingContractSent {
		t.Fatal("booking advanced before the contract completed")
	}

	if _, err := f.eng.Sign(ctx, guardian, sigFor(t, sigs, guardian.ID).ID, SignInput{BlobRef: "blob://g"}); err != nil {
		t.Fatalf("guardian Sign: %v", err)
	}
	if f.contract(t, c.ID).Status != model.ContractSigned {
		t.Fatal("contract not promoted after the final signature")
	}
	if n := f.not.count(EventContractFullySigned); n != 1 {
		t.Fatalf("contract_fully_signed events = %d, want 1", n)
	}
}

func TestSignIdempotent(t *testing.T) {
	ctx := context.Background()
	guardian := Actor{ID: 40, Role: model.RoleClient}
	f := newFixture(t)
	_, c, sigs := sentContract(t, f, guardian)
	row := sigFor(t, sigs, talent.ID)

	first, err := f.eng.Sign(ctx, talent, row.ID, SignInput{BlobRef: "blob://t"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	// retried submission, possibly with a different payload
	second, err := f.eng.Sign(ctx, talent, row.ID, SignInput{BlobRef: "blob://retry"})
	if err != nil {
		t.Fatalf("retried Sign: %v", err)
	}
	if second.Status != model.SignatureSigned {
		t.Fatalf("status = %s, want %s", second.Status, model.SignatureSigned)
	}
	if second.BlobRef == nil || *second.BlobRef != *first.BlobRef {
		t.Fatal("retry overwrote the original blob reference")
	}
	if !second.SignedAt.Equal(*first.SignedAt) {
		t.Fatal("retry changed the signing timestamp")
	}
	if f.contract(t, c.ID).Status != model.ContractSent {
		t.Fatal("retry must not count as the missing co-signature")
	}
}

func TestSignGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("only the designated signer", func(t *testing.T) {
		f := newFixture(t)
		_, _, sigs := sentContract(t, f)
		stranger := Actor{ID: 500, Role: model.RoleTalent}
		if _, err := f.eng.Sign(ctx, stranger, sigs[0].ID, SignInput{BlobRef: "x"}); !errors.Is(err, ErrNotSigner) {
			t.Fatalf("err = %v, want ErrNotSigner", err)
		}
		if _, err := f.eng.Sign(ctx, admin, sigs[0].ID, SignInput{BlobRef: "x"}); !errors.Is(err, ErrNotSigner) {
			t.Fatalf("admin err = %v, want ErrNotSigner", err)
		}
	})

	t.Run("blob reference is required", func(t *testing.T) {
		f := newFixture(t)
		_, _, sigs := sentContract(t, f)
		if _, err := f.eng.Sign(ctx, talent, sigs[0].ID, SignInput{}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("unknown signature row", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.eng.Sign(ctx, talent, 404, SignInput{BlobRef: "x"}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("cancelled contract is not signable", func(t *testing.T) {
		f := newFixture(t)
		_, c, sigs := sentContract(t, f)
		if _, err := f.eng.CancelContract(ctx, admin, c.ID); err != nil {
			t.Fatalf("CancelContract: %v", err)
		}
		if _, err := f.eng.Sign(ctx, talent, sigs[0].ID, SignInput{BlobRef: "x"}); !errors.Is(err, ErrContractNotSignable) {
			t.Fatalf("err = %v, want ErrContractNotSignable", err)
		}
	})
}

func TestCheckExpiry(t *testing.T) {
	ctx := context.Background()

	t.Run("past due sent contract expires with its pending rows", func(t *testing.T) {
		f := newFixture(t)
		_, c, sigs := sentContract(t, f)
		after := c.DueAt.Add(time.Hour)
		got, err := f.eng.CheckExpiry(ctx, c.ID, after)
		if err != nil {
			t.Fatalf("CheckExpiry: %v", err)
		}
		if got.Status != model.ContractExpired {
			t.Fatalf("status = %s, want %s", got.Status, model.ContractExpired)
		}
		rows, _ := f.eng.Signatures.ListByContract(ctx, c.ID)
		for _, s := range rows {
			if s.Status != model.SignatureExpired {
				t.Fatalf("row %d status = %s, want %s", s.ID, s.Status, model.SignatureExpired)
			}
		}
		if _, err := f.eng.Sign(ctx, talent, sigs[0].ID, SignInput{BlobRef: "x"}); !errors.Is(err, ErrContractNotSignable) {
			t.Fatalf("sign after expiry err = %v, want ErrContractNotSignable", err)
		}
	})

	t.Run("already signed rows survive expiry", func(t *testing.T) {
		guardian := Actor{ID: 40, Role: model.RoleClient}
		f := newFixture(t)
		_, c, sigs := sentContract(t, f, guardian)
		if _, err := f.eng.Sign(ctx, talent, sigFor(t, sigs, talent.ID).ID, SignInput{BlobRef: "blob://t"}); err != nil {
			t.Fatalf("Sign: %v", err)
		}
		if _, err := f.eng.CheckExpiry(ctx, c.ID, c.DueAt.Add(time.Hour)); err != nil {
			t.Fatalf("CheckExpiry: %v", err)
		}
		rows, _ := f.eng.Signatures.ListByContract(ctx, c.ID)
		if sigFor(t, rows, talent.ID).Status != model.SignatureSigned {
			t.Fatal("expiry sweep touched a signed row")
		}
		if sigFor(t, rows, guardian.ID).Status != model.SignatureExpired {
			t.Fatal("pending row not expired")
		}
	})

	t.Run("redundant checks are no-ops", func(t *testing.T) {
		f := newFixture(t)
		_, c, _ := sentContract(t, f)
		if got, err := f.eng.CheckExpiry(ctx, c.ID, c.DueAt.Add(-time.Hour)); err != nil || got.Status != model.ContractSent {
			t.Fatalf("before due: status=%v err=%v", got.Status, err)
		}
		after := c.DueAt.Add(time.Hour)
		for i := 0; i < 3; i++ {
			got, err := f.eng.CheckExpiry(ctx, c.ID, after)
			if err != nil {
				t.Fatalf("CheckExpiry pass %d: %v", i, err)
			}
			if got.Status != model.ContractExpired {
				t.Fatalf("pass %d status = %s, want %s", i, got.Status, model.ContractExpired)
			}
		}
	})
}

func TestCancelSentContractKeepsHistory(t *testing.T) {
	ctx := context.Background()
	guardian := Actor{ID: 40, Role: model.RoleClient}
	f := newFixture(t)
	b, c, sigs := sentContract(t, f, guardian)

	if _, err := f.eng.Sign(ctx, talent, sigFor(t, sigs, talent.ID).ID, SignInput{BlobRef: "blob://t"}); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := f.eng.CancelContract(ctx, admin, c.ID); err != nil {
		t.Fatalf("CancelContract: %v", err)
	}

	rows, _ := f.eng.Signatures.ListByContract(ctx, c.ID)
	if sigFor(t, rows, talent.ID).Status != model.SignatureSigned {
		t.Fatal("cancel erased a recorded signature")
	}
	if sigFor(t, rows, guardian.ID).Status != model.SignaturePending {
		t.Fatal("cancel rewrote the pending row")
	}
	if _, err := f.eng.Sign(ctx, guardian, sigFor(t, rows, guardian.ID).ID, SignInput{BlobRef: "x"}); !errors.Is(err, ErrContractNotSignable) {
		t.Fatalf("sign after cancel err = %v, want ErrContractNotSignable", err)
	}
	if f.booking(t, b.ID).Status != model.BookingContractSent {
		t.Fatal("cancelled contract advanced the booking")
	}
	if n := f.not.count(EventContractFullySigned); n != 0 {
		t.Fatalf("contract_fully_signed events = %d, want 0", n)
	}
}

// TestConcurrentSignersPromoteOnce hammers the completion rule: every
// signer submits from its own goroutine, so the last two routinely
// observe the full set at the same time.  The contract must still end
// up SIGNED exactly once, with one completion event and one booking
// advance.
func TestConcurrentSignersPromoteOnce(t *testing.T) {
	ctx := context.Background()
	coSigners := []Actor{
		{ID: 40, Role: model.RoleClient},
		{ID: 41, Role: model.RoleClient},
		{ID: 42, Role: model.RoleTalent},
	}
	for round := 0; round < 20; round++ {
		f := newFixture(t)
		b, c, sigs := sentContract(t, f, coSigners...)
		signers := append([]Actor{talent}, coSigners...)

		var wg sync.WaitGroup
		errc := make(chan error, len(signers))
		for _, a := range signers {
			wg.Add(1)
			go func(a Actor) {
				defer wg.Done()
				row := sigFor(t, sigs, a.ID)
				if _, err := f.eng.Sign(ctx, a, row.ID, SignInput{BlobRef: "blob://c"}); err != nil {
					errc <- err
				}
			}(a)
		}
		wg.Wait()
		close(errc)
		for err := range errc {
			t.Fatalf("round %d: Sign: %v", round, err)
		}

		if f.contract(t, c.ID).Status != model.ContractSigned {
			t.Fatalf("round %d: contract not SIGNED", round)
		}
		if f.booking(t, b.ID).Status != model.BookingSigned {
			t.Fatalf("round %d: booking not SIGNED", round)
		}
		if n := f.not.count(EventContractFullySigned); n != 1 {
			t.Fatalf("round %d: contract_fully_signed events = %d, want 1", round, n)
		}
	}
}

// TestConcurrentDuplicateResponses races duplicate submissions of the
// same invitation; exactly one may win and the row must keep the
// winner's answer.
func TestConcurrentDuplicateResponses(t *testing.T) {
	ctx := context.Background()
	for round := 0; round < 20; round++ {
		f := newFixture(t)
		b := f.createBooking(t)
		p := f.invite(t, b.ID, talent.ID)

		var wg sync.WaitGroup
		results := make(chan error, 2)
		for _, accept := range []bool{true, false} {
			wg.Add(1)
			go func(accept bool) {
				defer wg.Done()
				_, err := f.eng.Respond(ctx, talent, p.ID, accept, nil)
				results <- err
			}(accept)
		}
		wg.Wait()
		close(results)

		var wins, losses int
		for err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrAlreadyResponded):
				losses++
			default:
				t.Fatalf("round %d: unexpected error %v", round, err)
			}
		}
		if wins != 1 || losses != 1 {
			t.Fatalf("round %d: wins=%d losses=%d, want exactly one of each", round, wins, losses)
		}
		got, err := f.eng.Participations.GetByID(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if !got.Status.Resolved() {
			t.Fatalf("round %d: row still %s", round, got.Status)
		}
	}
}
