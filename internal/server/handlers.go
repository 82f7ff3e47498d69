package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/internal/ai"
	"github.com/kpauljoseph/ankiforge/internal/anki"
	"github.com/kpauljoseph/ankiforge/internal/workflow"
	"github.com/kpauljoseph/ankiforge/pkg/models"
)

type parseResponse struct {
	FileName string           `json:"file_name"`
	Format   models.Format    `json:"format"`
	Headers  []string         `json:"headers,omitempty"`
	Rows     int              `json:"rows,omitempty"`
	Sections []models.Section `json:"sections,omitempty"`
	Items    int              `json:"items,omitempty"`
	Prompt   string           `json:"prompt"`
}

type generateRequest struct {
	Text         string `json:"text"`
	Count        int    `json:"count"`
	Language     string `json:"language"`
	Instructions string `json:"instructions"`
}

type generateResponse struct {
	Format models.Format      `json:"format"`
	Stage  string             `json:"stage"`
	Cards  []models.Flashcard `json:"cards"`
}

type addNotesRequest struct {
	Deck           string             `json:"deck"`
	Model          string             `json:"model"`
	Fields         []string           `json:"fields"`
	Mapping        anki.FieldMapping  `json:"mapping"`
	AllowDuplicate bool               `json:"allow_duplicate"`
	Cards          []models.Flashcard `json:"cards"`
}

type fieldsResponse struct {
	Model   string            `json:"model"`
	Fields  []string          `json:"fields"`
	Mapping anki.FieldMapping `json:"mapping"`
	Cloze   bool              `json:"cloze"`
}

func (s *Server) parseSource(w http.ResponseWriter, r *http.Request) {
	fileName, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	result := s.generator.Preview(r.Context(), fileName, data)
	writeJSON(w, http.StatusOK, parseResponse{
		FileName: fileName,
		Format:   result.Source.Format,
		Headers:  result.Source.Headers,
		Rows:     len(result.Source.Rows),
		Sections: result.Source.Sections,
		Items:    len(result.Source.Items),
		Prompt:   result.Prompt,
	})
}

func (s *Server) generateCards(w http.ResponseWriter, r *http.Request) {
	var (
		result workflow.Result
		err    error
	)

	if isMultipart(r) {
		fileName, data, ok := s.readUpload(w, r)
		if !ok {
			return
		}
		req := generateRequest{
			Language:     r.FormValue("language"),
			Instructions: r.FormValue("instructions"),
		}
		if count := r.FormValue("count"); count != "" {
			if req.Count, err = strconv.Atoi(count); err != nil {
				s.badRequest(w, r, "count must be a whole number")
				return
			}
		}
		result, err = s.generator.FromFile(r.Context(), fileName, data, s.options(req))
	} else {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.badRequest(w, r, "invalid JSON body")
			return
		}
		result, err = s.generator.FromText(r.Context(), req.Text, s.options(req))
	}

	if err != nil {
		s.generateFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{
		Format: result.Format,
		Stage:  result.Stage,
		Cards:  result.Cards,
	})
}

func (s *Server) ankiStatus(w http.ResponseWriter, r *http.Request) {
	err := s.anki.CheckConnection(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"connected": err == nil})
}

func (s *Server) listDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.anki.DeckNames(r.Context())
	if err != nil {
		s.ankiFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"decks": decks})
}

func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	names, err := s.anki.ModelNames(r.Context())
	if err != nil {
		s.ankiFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"models": names})
}

func (s *Server) modelFields(w http.ResponseWriter, r *http.Request) {
	model, err := url.PathUnescape(chi.URLParam(r, "model"))
	if err != nil || strings.TrimSpace(model) == "" {
		s.badRequest(w, r, "invalid note type name")
		return
	}

	fields, err := s.anki.ModelFieldNames(r.Context(), model)
	if err != nil {
		s.ankiFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fieldsResponse{
		Model:   model,
		Fields:  fields,
		Mapping: anki.DefaultFieldMapping(model, fields),
		Cloze:   anki.IsClozeNoteType(model),
	})
}

func (s *Server) addNotes(w http.ResponseWriter, r *http.Request) {
	var req addNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, r, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Deck) == "" || strings.TrimSpace(req.Model) == "" {
		s.badRequest(w, r, "deck and model are required")
		return
	}
	if len(req.Cards) == 0 {
		s.badRequest(w, r, "no cards to add")
		return
	}

	target := anki.NoteTarget{
		Deck:           req.Deck,
		Model:          req.Model,
		Fields:         req.Fields,
		Mapping:        req.Mapping,
		AllowDuplicate: req.AllowDuplicate,
	}
	if len(target.Fields) == 0 {
		fields, err := s.anki.ModelFieldNames(r.Context(), req.Model)
		if err != nil {
			s.ankiFailure(w, r, err)
			return
		}
		target.Fields = fields
	}
	if len(target.Mapping) == 0 {
		target.Mapping = anki.DefaultFieldMapping(target.Model, target.Fields)
	}

	result, err := s.submitter.Submit(r.Context(), req.Cards, target)
	if err != nil {
		if eris.Is(err, anki.ErrNoFrontField) {
			s.badRequest(w, r, err.Error())
			return
		}
		s.ankiFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// options fills whatever the request leaves out from the server defaults.
func (s *Server) options(req generateRequest) ai.GenerateOptions {
	opts := s.defaults
	if req.Count > 0 {
		opts.Count = req.Count
	}
	if strings.TrimSpace(req.Language) != "" {
		opts.Language = req.Language
	}
	if strings.TrimSpace(req.Instructions) != "" {
		opts.Instructions = req.Instructions
	}
	return opts
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.badRequest(w, r, "expected a multipart form with a file field")
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.badRequest(w, r, "no file provided")
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.badRequest(w, r, "could not read uploaded file")
		return "", nil, false
	}
	return header.Filename, data, true
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}
