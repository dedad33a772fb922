package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestStoryboardPagesRoundTrip(t *testing.T) {
	pages := StoryboardPages{
		{
			PageNumber: 1,
			CanvasData: json.RawMessage(`{"version":"5.3.0","objects":[{"type":"rect","left":40,"top":12}]}`),
			Thumbnail:  "data:image/png;base64,iVBOR",
		},
		{PageNumber: 2},
	}

	stored, err := pages.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var loaded StoryboardPages
	if err := loaded.Scan(stored); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if !reflect.DeepEqual(loaded, pages) {
		t.Errorf("round trip changed the document: got %+v, want %+v", loaded, pages)
	}
	// The canvas scene is opaque: it must come back byte-identical
	if string(loaded[0].CanvasData) != string(pages[0].CanvasData) {
		t.Errorf("canvas data rewritten: got %s", loaded[0].CanvasData)
	}
}

func TestScriptPagesRoundTrip(t *testing.T) {
	boardRef := "page-1"
	pages := ScriptPages{
		{
			ID:         "page-1",
			PageNumber: 1,
			Blocks: []ScriptBlock{
				{ID: "1", Type: BlockSceneHeading, Content: "INT. SCENE 1 - DAY"},
				{ID: "2", Type: BlockAction, Content: "Rain hammers the window."},
				{ID: "3", Type: BlockCharacter, Content: "SARAH"},
				{ID: "4", Type: BlockDialogue, Content: "We're out of time."},
			},
			StoryboardPageID: &boardRef,
		},
	}

	stored, err := pages.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var loaded ScriptPages
	if err := loaded.Scan(stored); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if !reflect.DeepEqual(loaded, pages) {
		t.Errorf("round trip changed the document: got %+v, want %+v", loaded, pages)
	}
}

func TestSequenceFramesRoundTrip(t *testing.T) {
	boardPage := 3
	frames := SequenceFrames{
		{
			ID:               "frame-1",
			Type:             "storyboard",
			StoryboardPageID: &boardPage,
			Image:            "https://example.com/frame-1.png",
			Duration:         2.5,
			Transition:       "fade",
			TextOverlay:      "Later that night",
		},
		{ID: "frame-2", Type: "image", Duration: 1},
	}

	stored, err := frames.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var loaded SequenceFrames
	if err := loaded.Scan(stored); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if !reflect.DeepEqual(loaded, frames) {
		t.Errorf("round trip changed the document: got %+v, want %+v", loaded, frames)
	}
}

func TestJSONBScanSources(t *testing.T) {
	var fromBytes StringList
	if err := fromBytes.Scan([]byte(`["thriller","noir"]`)); err != nil {
		t.Fatalf("Scan []byte: %v", err)
	}
	if !reflect.DeepEqual(fromBytes, StringList{"thriller", "noir"}) {
		t.Errorf("Scan []byte: got %v", fromBytes)
	}

	var fromString StringList
	if err := fromString.Scan(`["thriller"]`); err != nil {
		t.Fatalf("Scan string: %v", err)
	}
	if !reflect.DeepEqual(fromString, StringList{"thriller"}) {
		t.Errorf("Scan string: got %v", fromString)
	}

	var fromNil StringList
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("Scan nil: %v", err)
	}
	if fromNil != nil {
		t.Errorf("Scan nil: got %v, want nil", fromNil)
	}

	var bad StringList
	if err := bad.Scan(42); err == nil {
		t.Error("Scan int: expected error")
	}
}
