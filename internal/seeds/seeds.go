package seeds

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// SeedFilePath can be overridden with SEED_FILE for one-off imports.
const SeedFilePath = "internal/seeds/data/hunt.yaml"

type seedFile struct {
	Groups []seedGroup `yaml:"groups"`
	Tasks  []seedTask  `yaml:"tasks"`
	Admins []string    `yaml:"admins"`
}

type seedGroup struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type seedTask struct {
	Description string    `yaml:"description"`
	AIPrompt    string    `yaml:"ai_prompt"`
	UnlockDate  time.Time `yaml:"unlock_date"`
	Groups      []string  `yaml:"groups"`
}

func loadSeedFile() (*seedFile, error) {
	path := os.Getenv("SEED_FILE")
	if path == "" {
		path = SeedFilePath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &file, nil
}

func SeedAll() error {
	file, err := loadSeedFile()
	if err != nil {
		return err
	}

	if err := SeedGroups(file.Groups); err != nil {
		return err
	}
	if err := SeedTasks(file.Tasks); err != nil {
		return err
	}
	if err := SeedAdmins(file.Admins); err != nil {
		return err
	}
	return nil
}
