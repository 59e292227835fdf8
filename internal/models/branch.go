package models

// Branch represents a regional CARE branch
// Backed by table `branches`
type Branch struct {
	ID          int                `json:"id" db:"id" yaml:"id"`
	City        string             `json:"city" db:"city" yaml:"city"`
	Slug        string             `json:"slug" db:"slug" yaml:"slug"`
	Description *string            `json:"description,omitempty" db:"description" yaml:"description"`
	Image       *string            `json:"image,omitempty" db:"image" yaml:"image"`
	Color       *string            `json:"color,omitempty" db:"color" yaml:"color"`
	Chapters    []string           `json:"chapters" db:"chapters" yaml:"chapters"`
	RDs         []RegionalDirector `json:"rds" db:"rds" yaml:"rds"`
	Featured    bool               `json:"featured" db:"featured" yaml:"featured"`
}

// RegionalDirector is an entry of the `rds` JSON column on branches.
// Image is a file name under the RDs/ storage folder.
type RegionalDirector struct {
	Name  string `json:"name" yaml:"name"`
	Image string `json:"image" yaml:"image"`
}

// Event represents a branch event with an optional image folder
// Backed by table `events`
type Event struct {
	ID           int     `json:"id" db:"id" yaml:"id"`
	Title        string  `json:"title" db:"title" yaml:"title"`
	Description  *string `json:"description,omitempty" db:"description" yaml:"description"`
	BranchID     int     `json:"branch_id" db:"branch_id" yaml:"branch_id"`
	ImagesFolder *string `json:"images_folder,omitempty" db:"images_folder" yaml:"images_folder"`
}

// LandingFiles maps a landing page section to stored file paths
// Backed by table `data`
type LandingFiles struct {
	Section string   `json:"section" db:"section" yaml:"section"`
	FileIDs []string `json:"file_ids" db:"file_ids" yaml:"file_ids"`
}
