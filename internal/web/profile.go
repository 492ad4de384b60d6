// Package web serves the public portfolio website and the admin JSON
// surface on top of the cached sync service.
package web

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SocialLink is one entry in the profile's social/footer link list.
type SocialLink struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// SiteProfile holds the static identity of the site: everything that is not
// content managed through the document store.
type SiteProfile struct {
	Name     string       `yaml:"name"`
	Tagline  string       `yaml:"tagline"`
	About    string       `yaml:"about"`
	Email    string       `yaml:"email"`
	Location string       `yaml:"location"`
	Social   []SocialLink `yaml:"social"`
}

// DefaultProfile is used when no profile file is configured.
func DefaultProfile() SiteProfile {
	return SiteProfile{
		Name:    "Jakir Hossen",
		Tagline: "Android developer",
	}
}

// LoadProfile reads the site profile from a YAML file. A missing path
// returns the default profile rather than an error.
func LoadProfile(path string) (SiteProfile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultProfile(), nil
		}
		return SiteProfile{}, fmt.Errorf("reading site profile: %w", err)
	}

	var p SiteProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return SiteProfile{}, fmt.Errorf("parsing site profile: %w", err)
	}
	if p.Name == "" {
		p.Name = DefaultProfile().Name
	}
	return p, nil
}
