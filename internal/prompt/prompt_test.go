package prompt_test

import (
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/ankiforge/internal/prompt"
	"github.com/kpauljoseph/ankiforge/internal/source"
	"github.com/kpauljoseph/ankiforge/pkg/models"
)

var _ = Describe("Prompt Synthesizer", func() {
	Describe("CSV", func() {
		It("should include the headers and sampled values verbatim", func() {
			structurer := source.NewStructurer(nil)
			parsed := structurer.ParseText(models.FormatCSV, "Question,Answer\nWhat is the capital of Peru?,Lima\n")

			out := prompt.FromSource(parsed)

			Expect(out).To(ContainSubstring("Question"))
			Expect(out).To(ContainSubstring("Answer"))
			Expect(out).To(ContainSubstring("What is the capital of Peru?"))
			Expect(out).To(ContainSubstring("Lima"))
			Expect(out).To(ContainSubstring("Question: What is the capital of Peru?\nAnswer: Lima\n"))
		})

		It("should summarise the shape of the data", func() {
			headers, rows, err := source.ParseCSV("Name,Year,Score\nAda,1815,9.5\nAlan,1912,10\n")
			Expect(err).NotTo(HaveOccurred())

			out := prompt.FromCSV(headers, rows)

			Expect(out).To(ContainSubstring("The data has 3 columns: Name, Year, Score"))
			Expect(out).To(ContainSubstring("It contains 2 rows."))
			Expect(out).To(ContainSubstring("Score: 9.5"))
			Expect(out).To(ContainSubstring("Year: 1912"))
		})

		It("should sample at most five rows", func() {
			var b strings.Builder
			b.WriteString("Term,Definition\n")
			for i := 0; i < 8; i++ {
				b.WriteString("t,d\n")
			}
			headers, rows, err := source.ParseCSV(b.String())
			Expect(err).NotTo(HaveOccurred())

			out := prompt.FromCSV(headers, rows)

			Expect(out).To(ContainSubstring("It contains 8 rows."))
			Expect(strings.Count(out, "Term: t")).To(Equal(prompt.MaxSampleRows))
			Expect(out).To(ContainSubstring("Row 5:"))
			Expect(out).NotTo(ContainSubstring("Row 6:"))
		})

		DescribeTable("guidance",
			func(header, expected string) {
				headers, rows, err := source.ParseCSV(header + "\n" + strings.Repeat("x,", strings.Count(header, ",")) + "y\n")
				Expect(err).NotTo(HaveOccurred())
				Expect(prompt.FromCSV(headers, rows)).To(ContainSubstring(expected))
			},
			Entry("question and answer", "Question,Answer,Notes", "pairs questions with answers"),
			Entry("front and back", "Front,Back", "pairs questions with answers"),
			Entry("term and definition", "Term,Definition,Source", "lists terms with definitions"),
			Entry("any two columns", "English,Spanish", `Treat "English" as the prompt side`),
		)

		It("should give no guidance for unfamiliar wide tables", func() {
			headers, rows, err := source.ParseCSV("a,b,c\n1,2,3\n")
			Expect(err).NotTo(HaveOccurred())

			out := prompt.FromCSV(headers, rows)
			Expect(out).NotTo(ContainSubstring("Treat"))
			Expect(out).NotTo(ContainSubstring("pairs questions"))
		})

		It("should fall back to the content without rows", func() {
			src := models.ParsedSource{Format: models.FormatCSV, Content: "Question,Answer\n", Headers: []string{"Question", "Answer"}}
			Expect(prompt.FromSource(src)).To(Equal("Question,Answer\n"))
		})
	})

	Describe("Markdown", func() {
		It("should join sections between the fixed instructions", func() {
			src := models.ParsedSource{
				Format: models.FormatMarkdown,
				Sections: []models.Section{
					{Heading: "Go", Content: "A language."},
					{Heading: "Go", Subheading: "Syntax", Content: "C-like."},
				},
			}

			Expect(prompt.FromSource(src)).To(Equal(
				"Generate Anki flashcards from the following Markdown content:\n\n" +
					"Go:\nA language.\n\nGo - Syntax:\nC-like." +
					"\n\nPlease create concise and effective flashcards based on this content."))
		})

		It("should fall back to the content without sections", func() {
			src := models.ParsedSource{Format: models.FormatMarkdown, Content: "plain"}
			Expect(prompt.FromSource(src)).To(Equal("plain"))
		})
	})

	Describe("JSON", func() {
		It("should pretty-print the first three items in key order", func() {
			items := []json.RawMessage{
				json.RawMessage(`{"z":1,"a":2}`),
				json.RawMessage(`2`),
				json.RawMessage(`"three"`),
				json.RawMessage(`"four"`),
			}

			out := prompt.FromSource(models.ParsedSource{Format: models.FormatJSON, Items: items})

			Expect(out).To(ContainSubstring("[\n  {\n    \"z\": 1,\n    \"a\": 2\n  },\n  2,\n  \"three\"\n]"))
			Expect(out).NotTo(ContainSubstring("four"))
			Expect(out).To(HavePrefix("Generate Anki flashcards from the following JSON data:\n\n"))
			Expect(out).To(HaveSuffix("Please create concise and effective flashcards based on this data."))
		})
	})

	Describe("PDF", func() {
		It("should ask for a degraded attempt when no text was extracted", func() {
			Expect(prompt.FromPDF("  \n ")).To(Equal(prompt.PDFUnreadable))
		})

		It("should include short documents in full", func() {
			out := prompt.FromPDF("Mitochondria produce ATP.")

			Expect(out).To(ContainSubstring("Full content:\nMitochondria produce ATP."))
			Expect(out).NotTo(HaveSuffix(prompt.TruncateMarker))
		})

		It("should truncate long documents by characters", func() {
			long := strings.Repeat("é", prompt.MaxPDFRunes+10)

			out := prompt.FromPDF(long)

			Expect(out).To(ContainSubstring("Extended content (truncated):\n"))
			Expect(out).To(HaveSuffix(strings.Repeat("é", prompt.MaxPDFRunes) + prompt.TruncateMarker))
			Expect(strings.Count(out, "é")).To(Equal(prompt.MaxPDFRunes))
		})

		It("should route through FromSource", func() {
			src := models.ParsedSource{Format: models.FormatPDF, Content: ""}
			Expect(prompt.FromSource(src)).To(Equal(prompt.PDFUnreadable))
		})
	})

	It("should pass text through unchanged", func() {
		src := models.ParsedSource{Format: models.FormatText, Content: "raw notes"}
		Expect(prompt.FromSource(src)).To(Equal("raw notes"))
	})
})
