package viewmodel

import (
	"github.com/curingwithcare/care-site/internal/models"
)

// SummaryLength is the number of characters shown before "Read More".
const SummaryLength = 100

var researchTones = []string{"green", "emerald", "teal", "sky", "blue", "indigo"}

// MemberView is a team member card.
type MemberView struct {
	ID          int                 `json:"id"`
	Name        string              `json:"name"`
	Position    string              `json:"position,omitempty"`
	Image       Image               `json:"image"`
	Summary     string              `json:"summary,omitempty"`
	Description string              `json:"description,omitempty"`
	Expandable  bool                `json:"expandable"`
	Social      *models.SocialLinks `json:"social,omitempty"`
	University  string              `json:"university,omitempty"`
	Tone        string              `json:"tone,omitempty"`
}

// Truncate shortens text to max runes followed by "...".
func Truncate(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "..."
}

// ResearchTone returns the tile colour for the research member at index.
func ResearchTone(index int) string {
	if index < 0 {
		index = -index
	}
	return researchTones[index%len(researchTones)]
}

// AssembleMember builds the card for m at position index within its section.
func AssembleMember(m models.TeamMember, index int, res URLResolver) MemberView {
	desc := deref(m.Description)
	v := MemberView{
		ID:          m.ID,
		Name:        m.Name,
		Position:    deref(m.Position),
		Image:       NewImage(deref(m.Image), m.Name, KindTeam, res),
		Description: desc,
		Summary:     Truncate(desc, SummaryLength),
		Expandable:  len([]rune(desc)) > SummaryLength,
		University:  deref(m.University),
	}
	if m.Social != nil && (m.Social.LinkedIn != "" || m.Social.Twitter != "") {
		s := *m.Social
		v.Social = &s
	}
	if m.Category == models.TeamCategoryResearch {
		v.Tone = ResearchTone(index)
	}
	return v
}

// AssembleMembers assembles a whole section.
func AssembleMembers(members []models.TeamMember, res URLResolver) []MemberView {
	out := make([]MemberView, len(members))
	for i, m := range members {
		out[i] = AssembleMember(m, i, res)
	}
	return out
}
