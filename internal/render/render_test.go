package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stagedoor/talent-booking/internal/model"
)

func testBooking() *model.Booking {
	rate := uint64(125050)
	return &model.Booking{
		ID:        1,
		Code:      "BK-a1b2c3d4e5",
		ClientID:  2,
		Title:     "Gala night",
		Location:  "Berlin",
		StartsAt:  time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC),
		EndsAt:    time.Date(2026, 10, 2, 1, 0, 0, 0, time.UTC),
		RateCents: &rate,
	}
}

func TestRenderContent(t *testing.T) {
	r := NewTextRenderer("Stagedoor")
	b := testBooking()
	p := &model.Participation{ID: 5, BookingID: b.ID, TalentID: 3}

	got, err := r.Render(b, p)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{
		"Stagedoor",
		"Booking: BK-a1b2c3d4e5",
		"Title: Gala night",
		"Location: Berlin",
		"Period: 2026-10-01 to 2026-10-02",
		"Rate: 1250.50",
		"Talent: #3",
		"Client: #2",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("content missing %q:\n%s", want, got)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := NewTextRenderer("Stagedoor")
	b := testBooking()
	p := &model.Participation{ID: 5, BookingID: b.ID, TalentID: 3}

	first, err := r.Render(b, p)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := r.Render(b, p)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if first != second {
		t.Fatal("identical inputs produced different documents")
	}
}

func TestRenderOmitsOptionalFields(t *testing.T) {
	r := NewTextRenderer("")
	b := testBooking()
	b.Location = ""
	b.RateCents = nil
	p := &model.Participation{ID: 5, BookingID: b.ID, TalentID: 3}

	got, err := r.Render(b, p)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(got, "Location:") || strings.Contains(got, "Rate:") {
		t.Errorf("optional fields rendered when absent:\n%s", got)
	}
	if !strings.Contains(got, "Talent Booking") {
		t.Error("empty agency name should fall back to the default header")
	}
}

func TestRenderNilInputs(t *testing.T) {
	r := NewTextRenderer("x")
	if _, err := r.Render(nil, &model.Participation{}); err == nil {
		t.Error("nil booking should error")
	}
	if _, err := r.Render(testBooking(), nil); err == nil {
		t.Error("nil participation should error")
	}
}
