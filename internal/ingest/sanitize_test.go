package ingest_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/ankiforge/internal/ingest"
	"github.com/kpauljoseph/ankiforge/pkg/models"
)

var _ = Describe("Sanitize", func() {
	DescribeTable("structural repairs",
		func(input, expected string) {
			Expect(ingest.Sanitize(input)).To(Equal(expected))
		},
		Entry("leaves valid JSON alone", `[{"front":"Q","back":"A"}]`, `[{"front":"Q","back":"A"}]`),
		Entry("drops prose around an array", "Sure!\n[1,2]\nEnjoy.", `[1,2]`),
		Entry("drops prose around an object", `Result: {"a":1} done`, `{"a":1}`),
		Entry("removes control characters", "[{\"front\":\"Q\u0007\",\"back\":\"A\"}]", `[{"front":"Q","back":"A"}]`),
		Entry("removes trailing commas", `{"a":[1,2,],}`, `{"a":[1,2]}`),
		Entry("doubles lone backslashes", `{"front":"C:\path","back":"\n"}`, `{"front":"C:\\path","back":"\n"}`),
		Entry("closes every open bracket", `[{"front":"Q","back":"A","tags":["x"`, `[{"front":"Q","back":"A","tags":["x"]}]`),
		Entry("ignores brackets inside strings", `{"front":"a [b","back":"c"}`, `{"front":"a [b","back":"c"}`),
		Entry("keeps unmatched closers", `[{"a":1}]]`, `[{"a":1}]]`),
		Entry("clips a truncated array at its last object", `[{"a":1},{"b":`, `[{"a":1}]`),
	)

	It("should convert a bare numbered list into a card array", func() {
		out := ingest.Sanitize("1. First?\nOne\n2. Second?")

		var cards []models.Flashcard
		Expect(json.Unmarshal([]byte(out), &cards)).To(Succeed())
		Expect(cards).To(HaveLen(2))
		Expect(cards[1].Back).To(Equal(ingest.ListPlaceholderBack))
	})
})

var _ = Describe("ConvertNumberedList", func() {
	decode := func(text string) []models.Flashcard {
		var cards []models.Flashcard
		ExpectWithOffset(1, json.Unmarshal([]byte(ingest.ConvertNumberedList(text)), &cards)).To(Succeed())
		return cards
	}

	It("should use the following line as the back", func() {
		cards := decode("1. Capital of France?\nParis\n2. Capital of Spain?\nMadrid")

		Expect(cards).To(Equal([]models.Flashcard{
			{Front: "Capital of France?", Back: "Paris", Tags: []string{"extracted", "auto-generated"}},
			{Front: "Capital of Spain?", Back: "Madrid", Tags: []string{"extracted", "auto-generated"}},
		}))
	})

	It("should let a repeated number overwrite the earlier card", func() {
		cards := decode("1. A?\nfirst\n3. C?\n1. A again?\nsecond")

		Expect(cards).To(HaveLen(2))
		Expect(cards[0].Front).To(Equal("A again?"))
		Expect(cards[0].Back).To(Equal("second"))
		Expect(cards[1].Front).To(Equal("C?"))
		Expect(cards[1].Back).To(Equal(ingest.ListPlaceholderBack))
	})

	It("should ignore item zero and text before the first item", func() {
		cards := decode("Preamble\n0. Nothing\nstray\n1. Real?\nYes")

		Expect(cards).To(HaveLen(1))
		Expect(cards[0].Front).To(Equal("Real?"))
		Expect(cards[0].Back).To(Equal("Yes"))
	})

	It("should return an empty array when nothing is numbered", func() {
		Expect(ingest.ConvertNumberedList("no numbers here")).To(Equal("[]"))
	})
})

var _ = Describe("Strategies", func() {
	Describe("FieldRegexStrategy", func() {
		It("should decode escaped values", func() {
			cards, err := ingest.FieldRegexStrategy{}.Extract(`"front": "Say \"hi\"", "back": "Line1\nLine2"`)

			Expect(err).NotTo(HaveOccurred())
			Expect(cards).To(HaveLen(1))
			Expect(cards[0].Front).To(Equal(`Say "hi"`))
			Expect(cards[0].Back).To(Equal("Line1\nLine2"))
			Expect(cards[0].Tags).To(Equal([]string{"extracted"}))
		})

		It("should pair up to the shorter of fronts and backs", func() {
			cards, err := ingest.FieldRegexStrategy{}.Extract(`"front": "A" "back": "1" "front": "B"`)

			Expect(err).NotTo(HaveOccurred())
			Expect(cards).To(HaveLen(1))
		})

		It("should fail when no fields are present", func() {
			_, err := ingest.FieldRegexStrategy{}.Extract("plain text")
			Expect(err).To(HaveOccurred())
		})

		It("should retry between the outermost brackets first", func() {
			cards, err := ingest.FieldRegexStrategy{}.Extract(`noise [{"front":"Q","back":"A"}] noise } more`)

			Expect(err).NotTo(HaveOccurred())
			Expect(cards).To(Equal([]models.Flashcard{{Front: "Q", Back: "A", Tags: []string{}}}))
		})
	})

	Describe("FragmentStrategy", func() {
		It("should fail without any card-shaped fragment", func() {
			_, err := ingest.FragmentStrategy{}.Extract(`{"question": "x"}`)
			Expect(err).To(HaveOccurred())
		})

		It("should skip fragments that do not parse", func() {
			cards, err := ingest.FragmentStrategy{}.Extract(`{"front": oops, "back": 1} {"front": "ok", "back": "fine"}`)

			Expect(err).NotTo(HaveOccurred())
			Expect(cards).To(HaveLen(1))
			Expect(cards[0].Front).To(Equal("ok"))
		})
	})

	Describe("LineHeuristicStrategy", func() {
		It("should treat numbered lines as questions", func() {
			cards, err := ingest.LineHeuristicStrategy{}.Extract("3. Define entropy\nDisorder measure")

			Expect(err).NotTo(HaveOccurred())
			Expect(cards).To(HaveLen(1))
			Expect(cards[0].Front).To(Equal("3. Define entropy"))
			Expect(cards[0].Back).To(Equal("Disorder measure"))
		})
	})
})
