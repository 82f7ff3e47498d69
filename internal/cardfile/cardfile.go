// Package cardfile reads and writes the YAML review file that sits between
// generating cards and pushing them into Anki.
package cardfile

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/kpauljoseph/ankiforge/pkg/models"
)

const DefaultFileName = "cards.yaml"

type File struct {
	Deck   string             `yaml:"deck,omitempty"`
	Model  string             `yaml:"model,omitempty"`
	Source string             `yaml:"source,omitempty"`
	Cards  []models.Flashcard `yaml:"cards"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reading card file %s", path)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "parsing card file %s", path)
	}
	for i := range f.Cards {
		f.Cards[i].Tags = models.UniqueTags(f.Cards[i].Tags)
	}
	return &f, nil
}

func (f *File) Save(path string) error {
	if f.Cards == nil {
		f.Cards = []models.Flashcard{}
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return eris.Wrap(err, "encoding card file")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return eris.Wrapf(err, "creating directory %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return eris.Wrapf(err, "writing card file %s", path)
	}
	return nil
}

// Retain rewrites the file at path with only the remaining cards, or removes
// it once nothing is left. It reports whether the file still exists.
func (f *File) Retain(path string, remaining []models.Flashcard) (bool, error) {
	if len(remaining) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return true, eris.Wrapf(err, "removing card file %s", path)
		}
		f.Cards = []models.Flashcard{}
		return false, nil
	}

	f.Cards = remaining
	if err := f.Save(path); err != nil {
		return true, err
	}
	return true, nil
}
