package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shenikar/crisis_connect/internal/models"
)

// Seed - начальные учетные записи и профили для режима без базы данных
type Seed struct {
	Users             []models.User             `json:"users"`
	VolunteerProfiles []models.VolunteerProfile `json:"volunteer_profiles"`
}

// LoadSeed читает JSON-файл засева и добавляет его содержимое в хранилище
func (s *Store) LoadSeed(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open seed file %s: %w", path, err)
	}
	defer f.Close()
	return s.ReadSeed(f)
}

// ReadSeed возвращает количество добавленных записей
func (s *Store) ReadSeed(r io.Reader) (int, error) {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return 0, fmt.Errorf("failed to decode seed: %w", err)
	}

	for i, u := range seed.Users {
		if !u.Role.Valid() {
			return 0, fmt.Errorf("seed user %d: unknown role %q", i, u.Role)
		}
	}
	for _, u := range seed.Users {
		s.AddUser(u)
	}
	for _, p := range seed.VolunteerProfiles {
		s.AddVolunteerProfile(p)
	}
	return len(seed.Users) + len(seed.VolunteerProfiles), nil
}
