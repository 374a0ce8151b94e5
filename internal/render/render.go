// Package render produces the text content of engagement contracts.
// The output is deterministic for a given booking and participation so
// that re-creating a contract after a cancellation yields identical
// content.  The engine treats the result as an opaque blob.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/stagedoor/talent-booking/internal/model"
)

// TextRenderer builds a plain-text contract document.
type TextRenderer struct {
	// AgencyName appears in the document header.
	AgencyName string
}

// NewTextRenderer returns a TextRenderer with the given header name.
func NewTextRenderer(agencyName string) *TextRenderer {
	if strings.TrimSpace(agencyName) == "" {
		agencyName = "Talent Booking"
	}
	return &TextRenderer{AgencyName: agencyName}
}

// Render implements engine.Renderer.
func (r *TextRenderer) Render(b *model.Booking, p *model.Participation) (string, error) {
	if b == nil || p == nil {
		return "", fmt.Errorf("render: booking and participation are required")
	}
	var sb strings.Builder
	sb.WriteString(r.AgencyName)
	sb.WriteString("\nEngagement Contract\n\n")
	sb.WriteString("Booking: ")
	sb.WriteString(b.Code)
	sb.WriteString("\nTitle: ")
	sb.WriteString(b.Title)
	sb.WriteString("\n")
	if b.Location != "" {
		sb.WriteString("Location: ")
		sb.WriteString(b.Location)
		sb.WriteString("\n")
	}
	sb.WriteString("Period: ")
	sb.WriteString(b.StartsAt.UTC().Format(time.DateOnly))
	sb.WriteString(" to ")
	sb.WriteString(b.EndsAt.UTC().Format(time.DateOnly))
	sb.WriteString("\n")
	if b.RateCents != nil {
		fmt.Fprintf(&sb, "Rate: %d.%02d\n", *b.RateCents/100, *b.RateCents%100)
	}
	fmt.Fprintf(&sb, "Talent: #%d\nClient: #%d\n", p.TalentID, b.ClientID)
	sb.WriteString("\nTerms\n")
	sb.WriteString("- The talent agrees to perform the engagement described above.\n")
	sb.WriteString("- The client agrees to the agreed rate and period.\n")
	sb.WriteString("- This contract becomes binding once every required signer has signed.\n")
	return sb.String(), nil
}
