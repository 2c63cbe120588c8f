package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/TheAXPerience/ScrapPages/internal/service"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written set of accounts and their scraps.
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
}

// FixtureUser is one account in a fixture file. An empty password falls back
// to DefaultPassword.
type FixtureUser struct {
	Username  string         `yaml:"username"`
	Password  string         `yaml:"password"`
	Email     string         `yaml:"email"`
	FirstName string         `yaml:"first_name"`
	LastName  string         `yaml:"last_name"`
	Scraps    []FixtureScrap `yaml:"scraps"`
}

// FixtureScrap uploads Text as a text file, or a generated image when Text is empty.
type FixtureScrap struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Text        string   `yaml:"text"`
	Tags        []string `yaml:"tags"`
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture YAML, rejecting unknown fields.
func ParseFixture(data []byte) (*Fixture, error) {
	var fixture Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	for i, u := range fixture.Users {
		if u.Username == "" {
			return nil, fmt.Errorf("parse fixture: user %d has no username", i)
		}
	}
	return &fixture, nil
}

func (u FixtureUser) input() service.CreateUserInput {
	password := u.Password
	if password == "" {
		password = DefaultPassword
	}
	return service.CreateUserInput{
		Username:  u.Username,
		Password:  password,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func (s FixtureScrap) input(userID uint, f *Factory) service.CreateScrapInput {
	file := f.ImageFile()
	if s.Text != "" {
		file = f.TextFile(s.Text)
	}
	title := s.Title
	return service.CreateScrapInput{
		UserID:      userID,
		Title:       &title,
		Description: s.Description,
		File:        file,
		Tags:        s.Tags,
	}
}
