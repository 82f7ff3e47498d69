package source_test

import (
	"bytes"
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tealeg/xlsx/v2"

	"github.com/kpauljoseph/ankiforge/internal/source"
	"github.com/kpauljoseph/ankiforge/pkg/logger"
	"github.com/kpauljoseph/ankiforge/pkg/models"
)

func sourceTestLogger() *logger.Logger {
	log := logger.New(
		logger.WithOutput(GinkgoWriter),
		logger.WithPrefix("[source-test] "),
	)
	log.SetVerbose(true)
	return log
}

func cell(row models.Row, key string) any {
	value, ok := row.Get(key)
	ExpectWithOffset(1, ok).To(BeTrue(), "missing column %q", key)
	return value
}

func workbook(rows [][]string) []byte {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}

	var buf bytes.Buffer
	ExpectWithOffset(1, f.Write(&buf)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("DetectFormat", func() {
	DescribeTable("maps extensions",
		func(name string, expected models.Format) {
			Expect(source.DetectFormat(name)).To(Equal(expected))
		},
		Entry("txt", "notes.txt", models.FormatText),
		Entry("md", "notes.md", models.FormatMarkdown),
		Entry("markdown", "notes.markdown", models.FormatMarkdown),
		Entry("csv", "deck.csv", models.FormatCSV),
		Entry("json", "data.json", models.FormatJSON),
		Entry("pdf", "lecture.PDF", models.FormatPDF),
		Entry("xlsx reads as csv", "sheet.xlsx", models.FormatCSV),
		Entry("unknown", "image.png", models.FormatText),
		Entry("no extension", "README", models.FormatText),
	)

	It("should know which files are supported", func() {
		Expect(source.IsSupported("a.md")).To(BeTrue())
		Expect(source.IsSupported("a.docx")).To(BeFalse())
	})
})

var _ = Describe("ParseCSV", func() {
	It("should read headers and typed rows", func() {
		headers, rows, err := source.ParseCSV("Term, Count ,Ratio,Active\nGo,3,0.5,TRUE\nRust,10,1.25,false\n")

		Expect(err).NotTo(HaveOccurred())
		Expect(headers).To(Equal([]string{"Term", "Count", "Ratio", "Active"}))
		Expect(rows).To(HaveLen(2))
		Expect(rows[0]).To(Equal(models.Row{
			{Key: "Term", Value: "Go"},
			{Key: "Count", Value: int64(3)},
			{Key: "Ratio", Value: 0.5},
			{Key: "Active", Value: true},
		}))
	})

	It("should drop blank lines and rows with the wrong number of fields", func() {
		_, rows, err := source.ParseCSV("a,b\n1,2\n\n3\n4,5,6\n7,8\n")

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(cell(rows[1], "a")).To(Equal(int64(7)))
	})

	It("should honour quoted fields", func() {
		_, rows, err := source.ParseCSV("Question,Answer\n\"What is 1,2?\",\"A list\"\n")

		Expect(err).NotTo(HaveOccurred())
		value, ok := rows[0].Get("Question")
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal("What is 1,2?"))
	})

	It("should keep leading spaces inside quoted cells", func() {
		_, rows, err := source.ParseCSV("Term,Count\n\" spaced\", 7 \n")

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(cell(rows[0], "Term")).To(Equal(" spaced"))
		Expect(cell(rows[0], "Count")).To(Equal(int64(7)))
	})

	It("should fail on empty content", func() {
		_, _, err := source.ParseCSV("")
		Expect(err).To(MatchError(source.ErrNoHeader))
	})

	DescribeTable("InferValue",
		func(cell string, expected any) {
			Expect(source.InferValue(cell)).To(Equal(expected))
		},
		Entry("integer", "42", int64(42)),
		Entry("negative integer", "-7", int64(-7)),
		Entry("decimal", "3.14", 3.14),
		Entry("exponent", "1e3", 1000.0),
		Entry("zero", "0", int64(0)),
		Entry("leading zero stays text", "007", "007"),
		Entry("zero point five", "0.5", 0.5),
		Entry("bool any case", "True", true),
		Entry("empty stays empty", "", ""),
		Entry("text keeps its spacing", "  word ", "  word "),
		Entry("spaced number is still a number", " 42 ", int64(42)),
		Entry("not a number", "NaN", "NaN"),
		Entry("huge integer falls back to float", "99999999999999999999", 1e20),
	)
})

var _ = Describe("ParseJSON", func() {
	It("should split a top-level array", func() {
		items, err := source.ParseJSON(`[{"b": 1, "a": 2}, 3]`)

		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(2))
		Expect(string(items[0])).To(Equal(`{"b": 1, "a": 2}`))
	})

	It("should wrap any other value", func() {
		items, err := source.ParseJSON(`{"topic": "Go"}`)

		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(1))
	})

	It("should reject invalid JSON", func() {
		_, err := source.ParseJSON(`{"topic": `)
		Expect(err).To(MatchError(source.ErrInvalidJSON))
	})
})

var _ = Describe("ParseMarkdown", func() {
	It("should collect sections under headings", func() {
		md := "Intro before any heading\n# Go\nA language.\n## Syntax\nC-like.\n\n## Empty\n# Rust\r\nSafe.\r\n"

		Expect(source.ParseMarkdown(md)).To(Equal([]models.Section{
			{Heading: "Go", Subheading: "", Content: "A language."},
			{Heading: "Go", Subheading: "Syntax", Content: "C-like."},
			{Heading: "Rust", Subheading: "", Content: "Safe."},
		}))
	})

	It("should keep a section whose body is only whitespace", func() {
		md := "# Blank\n\n   \n# Next\nBody"

		Expect(source.ParseMarkdown(md)).To(Equal([]models.Section{
			{Heading: "Blank", Subheading: "", Content: ""},
			{Heading: "Next", Subheading: "", Content: "Body"},
		}))
	})

	It("should return nothing without an H1", func() {
		Expect(source.ParseMarkdown("## Only a subheading\ntext")).To(BeEmpty())
	})
})

var _ = Describe("ParseSpreadsheet", func() {
	It("should read the first sheet like a CSV", func() {
		data := workbook([][]string{
			{"Question", "Answer", "Points"},
			{"Capital of France?", "Paris", "2"},
			{"Capital of Spain?", "Madrid"},
		})

		parsed, err := source.ParseSpreadsheet(data)

		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.Format).To(Equal(models.FormatCSV))
		Expect(parsed.Headers).To(Equal([]string{"Question", "Answer", "Points"}))
		Expect(parsed.Rows).To(HaveLen(2))
		Expect(cell(parsed.Rows[0], "Points")).To(Equal(int64(2)))
		Expect(cell(parsed.Rows[1], "Points")).To(Equal(""))
		Expect(parsed.Content).To(HavePrefix("Question,Answer,Points\n"))
		Expect(parsed.Content).To(ContainSubstring("Capital of France?,Paris,2"))
	})

	It("should reject bytes that are not a workbook", func() {
		_, err := source.ParseSpreadsheet([]byte("not a zip"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Structurer", func() {
	var (
		structurer *source.Structurer
		ctx        context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		structurer = source.NewStructurer(sourceTestLogger(), source.WithPDFExtractor(&fakeExtractor{text: "page one"}))
	})

	It("should structure CSV files", func() {
		parsed := structurer.Parse(ctx, "deck.csv", []byte("Question,Answer\nQ,A\n"))

		Expect(parsed.Format).To(Equal(models.FormatCSV))
		Expect(parsed.Content).To(Equal("Question,Answer\nQ,A\n"))
		Expect(parsed.Rows).To(HaveLen(1))
	})

	It("should structure JSON files", func() {
		parsed := structurer.Parse(ctx, "data.json", []byte(`[1, 2]`))

		Expect(parsed.Format).To(Equal(models.FormatJSON))
		Expect(parsed.Items).To(HaveLen(2))
	})

	It("should degrade broken JSON to text", func() {
		parsed := structurer.Parse(ctx, "data.json", []byte(`{broken`))

		Expect(parsed).To(Equal(models.ParsedSource{Format: models.FormatText, Content: `{broken`}))
	})

	It("should degrade a broken spreadsheet to text", func() {
		parsed := structurer.Parse(ctx, "sheet.xlsx", []byte("garbage"))

		Expect(parsed.Format).To(Equal(models.FormatText))
		Expect(parsed.Content).To(Equal("garbage"))
	})

	It("should keep markdown even without sections", func() {
		parsed := structurer.Parse(ctx, "notes.md", []byte("just text"))

		Expect(parsed.Format).To(Equal(models.FormatMarkdown))
		Expect(parsed.Sections).To(BeEmpty())
		Expect(parsed.Content).To(Equal("just text"))
	})

	It("should pass plain text through", func() {
		parsed := structurer.Parse(ctx, "notes.txt", []byte("hello"))
		Expect(parsed).To(Equal(models.ParsedSource{Format: models.FormatText, Content: "hello"}))
	})

	It("should extract PDF text", func() {
		parsed := structurer.Parse(ctx, "lecture.pdf", []byte("%PDF-1.4"))
		Expect(parsed).To(Equal(models.ParsedSource{Format: models.FormatPDF, Content: "page one"}))
	})

	It("should report a PDF that cannot be read", func() {
		failing := source.NewStructurer(nil, source.WithPDFExtractor(&fakeExtractor{err: errExtract}))
		parsed := failing.Parse(ctx, "lecture.pdf", []byte("%PDF-1.4"))

		Expect(parsed).To(Equal(models.ParsedSource{Format: models.FormatText, Content: source.PDFFailureMessage}))
	})

	It("should keep item bytes for re-printing", func() {
		parsed := structurer.ParseText(models.FormatJSON, `{"z": 1, "a": 2}`)

		Expect(parsed.Items).To(HaveLen(1))
		var out bytes.Buffer
		Expect(json.Indent(&out, parsed.Items[0], "", "  ")).To(Succeed())
		Expect(out.String()).To(Equal("{\n  \"z\": 1,\n  \"a\": 2\n}"))
	})
})
