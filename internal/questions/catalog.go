package questions

import (
	_ "embed"
	"fmt"
	"regexp"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/modryn-studio/specifythat/internal/input"
)

// Positions of the two questions the interview treats specially.
const (
	NameIndex        = 0
	DescriptionIndex = 1
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Validation is the YAML form of a question's validation rules.
type Validation struct {
	MinLength       int    `yaml:"minLength"`
	MaxLength       int    `yaml:"maxLength"`
	Pattern         string `yaml:"pattern"`
	PatternMessage  string `yaml:"patternMessage"`
	Sanitize        bool   `yaml:"sanitize"`
	RejectGibberish bool   `yaml:"rejectGibberish"`
}

// Question is one entry of the catalog.
type Question struct {
	ID              int         `yaml:"id" json:"id"`
	Key             string      `yaml:"key" json:"key"`
	Text            string      `yaml:"text" json:"text"`
	HelpText        string      `yaml:"helpText" json:"helpText,omitempty"`
	Placeholder     string      `yaml:"placeholder" json:"placeholder,omitempty"`
	AllowFileUpload bool        `yaml:"allowFileUpload" json:"allowFileUpload"`
	FileTypes       []string    `yaml:"fileTypes" json:"fileTypes,omitempty"`
	MaxFileSize     int64       `yaml:"maxFileSize" json:"maxFileSize,omitempty"`
	Validation      *Validation `yaml:"validation" json:"-"`

	pattern *regexp.Regexp
}

// Rules converts the question's validation config for the input package.
func (q Question) Rules() input.Rules {
	if q.Validation == nil {
		return input.Rules{}
	}
	return input.Rules{
		MinLength:       q.Validation.MinLength,
		MaxLength:       q.Validation.MaxLength,
		Pattern:         q.pattern,
		PatternMessage:  q.Validation.PatternMessage,
		Sanitize:        q.Validation.Sanitize,
		RejectGibberish: q.Validation.RejectGibberish,
	}
}

// Catalog is the fixed, ordered list of interview questions.
type Catalog struct {
	questions []Question
}

type catalogFile struct {
	Questions []Question `yaml:"questions"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// MustDefault is Default for callers that cannot handle a broken embed.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile reads a catalog override from fs.
func LoadFile(fs afero.Fs, path string) (*Catalog, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read question catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse question catalog: %w", err)
	}
	if err := validate(f.Questions); err != nil {
		return nil, fmt.Errorf("question catalog validation: %w", err)
	}
	return &Catalog{questions: f.Questions}, nil
}

func validate(qs []Question) error {
	if len(qs) < 3 {
		return fmt.Errorf("need at least 3 questions, got %d", len(qs))
	}
	if qs[NameIndex].ID != input.NameQuestionID {
		return fmt.Errorf("first question must have id %d, got %d", input.NameQuestionID, qs[NameIndex].ID)
	}
	if qs[DescriptionIndex].ID != input.NameQuestionID+1 {
		return fmt.Errorf("second question must have id %d, got %d", input.NameQuestionID+1, qs[DescriptionIndex].ID)
	}

	seen := make(map[int]bool, len(qs))
	for i := range qs {
		q := &qs[i]
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = true
		if q.Text == "" {
			return fmt.Errorf("question %d has no text", q.ID)
		}
		v := q.Validation
		if v == nil {
			continue
		}
		if v.MinLength < 0 || v.MaxLength < 0 {
			return fmt.Errorf("question %d: negative length limit", q.ID)
		}
		if v.MaxLength > 0 && v.MinLength > v.MaxLength {
			return fmt.Errorf("question %d: minLength %d exceeds maxLength %d", q.ID, v.MinLength, v.MaxLength)
		}
		if v.Pattern != "" {
			re, err := regexp.Compile(v.Pattern)
			if err != nil {
				return fmt.Errorf("question %d: invalid pattern: %w", q.ID, err)
			}
			q.pattern = re
		}
	}
	return nil
}

// Len is the total number of questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// At returns the question at a zero-based position.
func (c *Catalog) At(index int) (Question, bool) {
	if index < 0 || index >= len(c.questions) {
		return Question{}, false
	}
	return c.questions[index], true
}

// All returns a copy of the ordered questions.
func (c *Catalog) All() []Question {
	return append([]Question(nil), c.questions...)
}
