package models

// TeamCategory mirrors the `category` column of team_members
type TeamCategory string

const (
	TeamCategoryBoard    TeamCategory = "board"
	TeamCategoryResearch TeamCategory = "research"
	TeamCategoryIntern   TeamCategory = "intern"
)

// Valid reports whether c is one of the known categories.
func (c TeamCategory) Valid() bool {
	switch c {
	case TeamCategoryBoard, TeamCategoryResearch, TeamCategoryIntern:
		return true
	}
	return false
}

// TeamMember represents a board member, researcher or intern
// Backed by table `team_members`
type TeamMember struct {
	ID          int          `json:"id" db:"id" yaml:"id"`
	Name        string       `json:"name" db:"name" yaml:"name"`
	Position    *string      `json:"position,omitempty" db:"position" yaml:"position"`
	Category    TeamCategory `json:"category" db:"category" yaml:"category"`
	OrderRank   int          `json:"order_rank" db:"order_rank" yaml:"order_rank"`
	Image       *string      `json:"image,omitempty" db:"image" yaml:"image"`
	Description *string      `json:"description,omitempty" db:"description" yaml:"description"`
	Social      *SocialLinks `json:"social,omitempty" db:"social" yaml:"social"`
	University  *string      `json:"university,omitempty" db:"university" yaml:"university"`
}

// SocialLinks is the optional `social` JSON column on team_members
type SocialLinks struct {
	LinkedIn string `json:"linkedin,omitempty" yaml:"linkedin"`
	Twitter  string `json:"twitter,omitempty" yaml:"twitter"`
}
