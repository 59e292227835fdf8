// Package content holds the static copy of the site: landing features and
// numbers, the about headline and the research competition results.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var embedded []byte

type Content struct {
	Site     Site     `yaml:"site" json:"site"`
	Landing  Landing  `yaml:"landing" json:"landing"`
	About    About    `yaml:"about" json:"about"`
	Research Research `yaml:"research" json:"research"`
}

type Site struct {
	Name        string   `yaml:"name" json:"name"`
	Tagline     string   `yaml:"tagline" json:"tagline"`
	TitleSuffix string   `yaml:"title_suffix" json:"title_suffix"`
	Socials     []Social `yaml:"socials" json:"socials"`
}

type Social struct {
	Label   string `yaml:"label" json:"label"`
	Network string `yaml:"network" json:"network"`
	URL     string `yaml:"url" json:"url"`
}

type Landing struct {
	// Section is the `data` row whose file ids feed the carousel
	Section  string    `yaml:"section" json:"section"`
	Features []Feature `yaml:"features" json:"features"`
	Numbers  []Stat    `yaml:"numbers" json:"numbers"`
}

type Feature struct {
	Name  string `yaml:"name" json:"name"`
	Text  string `yaml:"text" json:"text"`
	Stats []Stat `yaml:"stats,omitempty" json:"stats,omitempty"`
	Link  *Link  `yaml:"link,omitempty" json:"link,omitempty"`
	Video *Video `yaml:"video,omitempty" json:"video,omitempty"`
}

type Stat struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

type Link struct {
	Label string `yaml:"label" json:"label"`
	URL   string `yaml:"url" json:"url"`
}

type Video struct {
	Title string `yaml:"title" json:"title"`
	URL   string `yaml:"url" json:"url"`
}

type About struct {
	Headline   string `yaml:"headline" json:"headline"`
	Background string `yaml:"background" json:"background"`
}

type Research struct {
	Title       string  `yaml:"title" json:"title"`
	Prompt      string  `yaml:"prompt" json:"prompt"`
	Winner      Paper   `yaml:"winner" json:"winner"`
	RunnerUps   []Paper `yaml:"runner_ups" json:"runner_ups"`
	Submissions []Paper `yaml:"submissions" json:"submissions"`
}

type Paper struct {
	ID           int    `yaml:"id" json:"id"`
	Title        string `yaml:"title" json:"title"`
	Author       string `yaml:"author" json:"author"`
	Award        string `yaml:"award,omitempty" json:"award,omitempty"`
	Abstract     string `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	PDFURL       string `yaml:"pdf_url,omitempty" json:"pdf_url,omitempty"`
	DownloadName string `yaml:"download_name,omitempty" json:"download_name,omitempty"`
}

// Parse decodes content YAML. Unknown keys are rejected.
func Parse(data []byte) (*Content, error) {
	var c Content
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if c.Landing.Section == "" {
		return nil, fmt.Errorf("parse content: landing.section is required")
	}
	return &c, nil
}

// Default returns the embedded site content.
func Default() *Content {
	c, err := Parse(embedded)
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads content from path, or the embedded copy when path is empty.
func Load(path string) (*Content, error) {
	if path == "" {
		return Parse(embedded)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", path, err)
	}
	return Parse(b)
}
