package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/pkg/logger"
)

const DefaultAnkiConnectURL = "http://localhost:8765"

var (
	ErrNoteRejected = eris.New("anki: note was rejected")
	ErrUnreachable  = eris.New("anki: AnkiConnect is unreachable")
	ErrNotConnected = eris.New("could not connect to Anki. Please ensure:\n" +
		"1. Anki is running https://apps.ankiweb.net/#download\n" +
		"2. AnkiConnect add-on is installed (code: 2055492159) https://ankiweb.net/shared/info/2055492159\n" +
		"3. Anki has been restarted after installing AnkiConnect")
	errResultLength = eris.New("anki: addNotes returned a result of the wrong length")
)

// RemoteError is a non-null "error" in an AnkiConnect reply.
type RemoteError struct {
	Action  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("anki error (%s): %s", e.Action, e.Message)
}

type AnkiConnectRequest struct {
	Action  string      `json:"action"`
	Version int         `json:"version"`
	Params  interface{} `json:"params"`
}

type ankiConnectResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

type Option func(*Client)

func WithURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.ankiConnectURL = url
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client is a typed wrapper over the AnkiConnect HTTP endpoint. Requests are
// sent once; nothing is retried.
type Client struct {
	ankiConnectURL string
	http           *http.Client
	logger         *logger.Logger
}

func NewClient(log *logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.Nop()
	}
	c := &Client{
		ankiConnectURL: DefaultAnkiConnectURL,
		http:           &http.Client{},
		logger:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) URL() string { return c.ankiConnectURL }

func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.sendRequest(ctx, "deckNames", struct{}{}, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.sendRequest(ctx, "modelNames", struct{}{}, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Client) ModelFieldNames(ctx context.Context, modelName string) ([]string, error) {
	var names []string
	params := map[string]string{"modelName": modelName}
	if err := c.sendRequest(ctx, "modelFieldNames", params, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Client) CreateDeck(ctx context.Context, deckName string) error {
	c.logger.Info("Creating deck: %s", deckName)
	return c.sendRequest(ctx, "createDeck", map[string]string{"deck": deckName}, nil)
}

// AddNote creates a single note. A null id in the reply is ErrNoteRejected.
func (c *Client) AddNote(ctx context.Context, note Note) (int64, error) {
	var id *int64
	if err := c.sendRequest(ctx, "addNote", map[string]interface{}{"note": note}, &id); err != nil {
		return 0, err
	}
	if id == nil {
		return 0, ErrNoteRejected
	}
	return *id, nil
}

// AddNotes creates notes in one round trip. The result is aligned with the
// input; a nil entry means that note was rejected.
func (c *Client) AddNotes(ctx context.Context, notes []Note) ([]*int64, error) {
	if len(notes) == 0 {
		return []*int64{}, nil
	}

	var ids []*int64
	if err := c.sendRequest(ctx, "addNotes", map[string]interface{}{"notes": notes}, &ids); err != nil {
		return nil, err
	}
	if len(ids) != len(notes) {
		return nil, eris.Wrapf(errResultLength, "sent %d notes, got %d ids", len(notes), len(ids))
	}
	return ids, nil
}

// CheckConnection succeeds when the deck list can be read.
func (c *Client) CheckConnection(ctx context.Context) error {
	if _, err := c.DeckNames(ctx); err != nil {
		c.logger.Info("Error sending request to Anki: %v", err)
		return eris.Wrap(ErrNotConnected, "anki: connection check failed")
	}
	return nil
}

func (c *Client) sendRequest(ctx context.Context, action string, params interface{}, out interface{}) error {
	reqBody, err := json.Marshal(AnkiConnectRequest{
		Action:  action,
		Version: ANKI_CONNECT_VERSION,
		Params:  params,
	})
	if err != nil {
		return eris.Wrapf(err, "anki: marshal %s request", action)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ankiConnectURL, bytes.NewReader(reqBody))
	if err != nil {
		return eris.Wrapf(err, "anki: create %s request", action)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Trace("AnkiConnect request: %s", reqBody)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(ErrUnreachable, "send %s request to %s: %v", action, c.ankiConnectURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "anki: read %s response", action)
	}
	c.logger.Debug("AnkiConnect %s answered %d in %s", action, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return eris.Errorf("anki: %s returned status %d", action, resp.StatusCode)
	}

	var result ankiConnectResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return eris.Wrapf(err, "anki: parse %s response", action)
	}
	if result.Error != nil {
		return &RemoteError{Action: action, Message: *result.Error}
	}

	if out == nil || len(result.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(result.Result, out); err != nil {
		return eris.Wrapf(err, "anki: decode %s result", action)
	}
	return nil
}
