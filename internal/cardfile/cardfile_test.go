package cardfile_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/ankiforge/internal/cardfile"
	"github.com/kpauljoseph/ankiforge/pkg/models"
)

var _ = Describe("Card file", func() {
	var (
		tempDir string
		path    string
		file    *cardfile.File
	)

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()
		path = filepath.Join(tempDir, "review", cardfile.DefaultFileName)
		file = &cardfile.File{
			Deck:   "Biology",
			Model:  "Basic",
			Source: "cells.md",
			Cards: []models.Flashcard{
				models.NewFlashcard("Q1", "A1", "bio"),
				models.NewFlashcard("Q2", "A2"),
				models.NewFlashcard("Q3", "A3"),
			},
		}
	})

	It("writes cards the user can edit and reads them back", func() {
		Expect(file.Save(path)).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("deck: Biology"))
		Expect(string(data)).To(ContainSubstring("front: Q1"))

		loaded, err := cardfile.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(file))
	})

	It("cleans up tags edited by hand", func() {
		content := "deck: Default\ncards:\n  - front: Q\n    back: A\n    tags: [x, x, \" \", y]\n"
		Expect(os.WriteFile(filepath.Join(tempDir, "hand.yaml"), []byte(content), 0644)).To(Succeed())

		loaded, err := cardfile.Load(filepath.Join(tempDir, "hand.yaml"))
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Cards[0].Tags).To(Equal([]string{"x", "y"}))
	})

	It("fails on a missing file", func() {
		_, err := cardfile.Load(filepath.Join(tempDir, "missing.yaml"))
		Expect(err).To(HaveOccurred())
	})

	It("fails on invalid YAML", func() {
		bad := filepath.Join(tempDir, "bad.yaml")
		Expect(os.WriteFile(bad, []byte("cards: [unclosed"), 0644)).To(Succeed())
		_, err := cardfile.Load(bad)
		Expect(err).To(HaveOccurred())
	})

	It("keeps only the rejected cards", func() {
		Expect(file.Save(path)).To(Succeed())

		exists, err := file.Retain(path, []models.Flashcard{file.Cards[1]})
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeTrue())

		loaded, err := cardfile.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Cards).To(HaveLen(1))
		Expect(loaded.Cards[0].Front).To(Equal("Q2"))
		Expect(loaded.Deck).To(Equal("Biology"))
	})

	It("removes the file once every card was added", func() {
		Expect(file.Save(path)).To(Succeed())

		exists, err := file.Retain(path, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeFalse())
		Expect(path).NotTo(BeAnExistingFile())
	})
})
