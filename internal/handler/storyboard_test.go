package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"scenecraft-backend/internal/model"
	"scenecraft-backend/internal/relay"
)

func newStoryboardApp(t *testing.T) *fiber.App {
	t.Helper()

	h := NewStoryboardHandler(newTestDB(t))
	app := fiber.New()
	app.Get("/api/storyboards/:projectId", h.Get)
	app.Post("/api/storyboards/:projectId", h.Save)
	return app
}

func fetchStoryboardPages(t *testing.T, app *fiber.App, projectID string) []any {
	t.Helper()

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/storyboards/"+projectID, nil))
	if err != nil {
		t.Fatalf("get storyboard: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get storyboard: status %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	board, ok := body["storyboard"].(map[string]any)
	if !ok {
		t.Fatalf("missing storyboard in response: %v", body)
	}
	pages, ok := board["pages"].([]any)
	if !ok {
		t.Fatalf("missing pages in storyboard: %v", board)
	}
	return pages
}

func saveStoryboard(t *testing.T, app *fiber.App, projectID string, pages model.StoryboardPages) {
	t.Helper()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/storyboards/"+projectID, map[string]any{
		"pages": pages,
	}))
	if err != nil {
		t.Fatalf("save storyboard: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save storyboard: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStoryboardGetCreatesDefaultPage(t *testing.T) {
	app := newStoryboardApp(t)

	pages := fetchStoryboardPages(t, app, "1")
	if len(pages) != 1 {
		t.Fatalf("expected 1 default page, got %d", len(pages))
	}
	if got := pages[0].(map[string]any)["pageNumber"]; got != float64(1) {
		t.Errorf("default page number = %v, want 1", got)
	}
}

func TestStoryboardSaveTwiceLastWriteWins(t *testing.T) {
	app := newStoryboardApp(t)

	saveStoryboard(t, app, "5", model.StoryboardPages{
		{PageNumber: 1, CanvasData: json.RawMessage(`{"objects":["rect1"]}`)},
	})
	saveStoryboard(t, app, "5", model.StoryboardPages{
		{PageNumber: 1, CanvasData: json.RawMessage(`{"objects":["circle1","circle2"]}`)},
		{PageNumber: 2},
	})

	pages := fetchStoryboardPages(t, app, "5")
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages after second save, got %d", len(pages))
	}

	canvas := pages[0].(map[string]any)["canvasData"].(map[string]any)
	objects := canvas["objects"].([]any)
	if len(objects) != 2 || objects[0] != "circle1" {
		t.Errorf("persisted canvas = %v, want the second save verbatim", canvas)
	}
}

type nullConn struct{}

func (nullConn) WriteMessage(int, []byte) error { return nil }

// Relay traffic mirrors edits between live sessions but never touches
// the persisted document; only an explicit save does.
func TestStoryboardUnchangedByRelayTraffic(t *testing.T) {
	app := newStoryboardApp(t)

	saveStoryboard(t, app, "9", model.StoryboardPages{
		{PageNumber: 1, CanvasData: json.RawMessage(`{"objects":["saved"]}`)},
	})

	hub := relay.NewHub()
	emitter := relay.NewClient(nullConn{})
	peer := relay.NewClient(nullConn{})
	hub.Register(emitter)
	hub.Register(peer)
	relay.Dispatch(hub, emitter, []byte(`{"event":"join-storyboard","storyboardId":"9"}`))
	relay.Dispatch(hub, peer, []byte(`{"event":"join-storyboard","storyboardId":"9"}`))
	relay.Dispatch(hub, emitter, []byte(`{"event":"canvas-update","storyboardId":"9","data":{"objects":["unsaved-live-edit"]}}`))

	pages := fetchStoryboardPages(t, app, "9")
	canvas := pages[0].(map[string]any)["canvasData"].(map[string]any)
	objects := canvas["objects"].([]any)
	if len(objects) != 1 || objects[0] != "saved" {
		t.Errorf("relay traffic leaked into the store: %v", canvas)
	}
}
