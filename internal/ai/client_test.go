package ai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/internal/ai"
	"github.com/kpauljoseph/ankiforge/pkg/logger"
)

func aiTestLogger() *logger.Logger {
	log := logger.New(
		logger.WithOutput(GinkgoWriter),
		logger.WithPrefix("[ai-test] "),
	)
	log.SetVerbose(true)
	return log
}

var _ = Describe("Completion Client", func() {
	var (
		server   *httptest.Server
		status   int
		respBody string
		received map[string]any
		headers  http.Header
		client   *ai.Client
	)

	BeforeEach(func() {
		status = http.StatusOK
		respBody = `{"id":"cmpl-1","choices":[{"index":0,"message":{"role":"assistant","content":"[{\"front\":\"Q\",\"back\":\"A\"}]"}}]}`
		received = nil

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Method).To(Equal(http.MethodPost))
			headers = r.Header.Clone()

			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(body, &received)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(respBody))
		}))

		client = ai.NewClient("test-key",
			ai.WithEndpoint(server.URL+"/v1/chat/completions"),
			ai.WithModel("test-model"),
			ai.WithLogger(aiTestLogger()),
		)
	})

	AfterEach(func() {
		server.Close()
	})

	It("should send the fixed request shape", func() {
		_, err := client.Complete(context.Background(), "Cells are small.", ai.GenerateOptions{Count: 3, Language: "german"})
		Expect(err).NotTo(HaveOccurred())

		Expect(headers.Get("Authorization")).To(Equal("Bearer test-key"))
		Expect(headers.Get("Content-Type")).To(Equal("application/json"))

		Expect(received).To(HaveKeyWithValue("model", "test-model"))
		Expect(received).To(HaveKeyWithValue("temperature", 0.7))
		Expect(received).To(HaveKeyWithValue("max_tokens", 4000.0))
		Expect(received).To(HaveKeyWithValue("top_p", 1.0))
		Expect(received).To(HaveKeyWithValue("frequency_penalty", 0.0))
		Expect(received).To(HaveKeyWithValue("presence_penalty", 0.0))
		Expect(received).To(HaveKeyWithValue("response_format", map[string]any{"type": "json_object"}))

		messages, ok := received["messages"].([]any)
		Expect(ok).To(BeTrue())
		Expect(messages).To(HaveLen(2))
		Expect(messages[0]).To(HaveKeyWithValue("role", "system"))
		Expect(messages[0].(map[string]any)["content"]).To(ContainSubstring("Generate 3 high-quality Anki flashcards"))
		Expect(messages[0].(map[string]any)["content"]).To(ContainSubstring("in German."))
		Expect(messages[1]).To(Equal(map[string]any{"role": "user", "content": "Cells are small."}))
	})

	It("should return the content unmodified", func() {
		content, err := client.Complete(context.Background(), "text", ai.GenerateOptions{})

		Expect(err).NotTo(HaveOccurred())
		Expect(content).To(Equal(`[{"front":"Q","back":"A"}]`))
	})

	It("should surface the server's error message", func() {
		status = http.StatusUnauthorized
		respBody = `{"error":{"message":"Invalid API key","type":"auth"}}`

		_, err := client.Complete(context.Background(), "text", ai.GenerateOptions{})

		var apiErr *ai.APIError
		Expect(eris.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(apiErr.Message).To(Equal("Invalid API key"))
	})

	DescribeTable("should fall back to the status code",
		func(body string) {
			status = http.StatusBadGateway
			respBody = body

			_, err := client.Complete(context.Background(), "text", ai.GenerateOptions{})
			Expect(err).To(MatchError("API request failed with status 502"))
		},
		Entry("plain text body", "upstream exploded"),
		Entry("string error", `{"error":"rate limited"}`),
		Entry("empty message", `{"error":{"message":""}}`),
	)

	It("should reject a response with no choices", func() {
		respBody = `{"id":"x","choices":[]}`

		_, err := client.Complete(context.Background(), "text", ai.GenerateOptions{})
		Expect(err).To(MatchError(ai.ErrNoChoices))
	})

	It("should reject a malformed envelope", func() {
		respBody = `{not json`

		_, err := client.Complete(context.Background(), "text", ai.GenerateOptions{})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unmarshal response"))
	})

	It("should stop when the caller's context ends", func() {
		done := make(chan struct{})
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			select {
			case <-r.Context().Done():
			case <-done:
			}
		}))
		defer func() {
			close(done)
			slow.CloseClientConnections()
			slow.Close()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := ai.NewClient("k", ai.WithEndpoint(slow.URL)).Complete(ctx, "text", ai.GenerateOptions{})
		Expect(err).To(HaveOccurred())
		Expect(ctx.Err()).To(Equal(context.DeadlineExceeded))
	})

	It("should use the documented defaults", func() {
		c := ai.NewClient("k", ai.WithEndpoint(""), ai.WithModel(""))
		Expect(c.Endpoint()).To(Equal(ai.DefaultEndpoint))
		Expect(c.Model()).To(Equal(ai.DefaultModel))
	})
})

var _ = Describe("SystemPrompt", func() {
	It("should default to one card in English", func() {
		out := ai.SystemPrompt(ai.GenerateOptions{})

		Expect(out).To(ContainSubstring("Generate 1 high-quality Anki flashcards from the provided content in English."))
		Expect(out).NotTo(ContainSubstring("Additional instructions"))
		Expect(out).To(HaveSuffix("DO NOT include any explanation, comments, or any text outside of the JSON array."))
	})

	It("should include extra instructions", func() {
		out := ai.SystemPrompt(ai.GenerateOptions{Count: 5, Language: "brazilian portuguese", Instructions: "  Use cloze style.  "})

		Expect(out).To(ContainSubstring("Generate 5 high-quality"))
		Expect(out).To(ContainSubstring("in Brazilian Portuguese."))
		Expect(out).To(ContainSubstring("Additional instructions: Use cloze style.\n"))
	})
})
