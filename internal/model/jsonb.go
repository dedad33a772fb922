package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// jsonbValue marshals a document column for storage
func jsonbValue(v any) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// jsonbScan unmarshals a document column from storage
func jsonbScan(dst any, src any) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	default:
		return errors.New("unsupported jsonb source type")
	}
}

// StoryboardPage is one drawable page of a storyboard document.
// CanvasData holds the serialized vector scene (Fabric.js JSON) and is
// treated as opaque: it is persisted and mirrored wholesale, never merged.
type StoryboardPage struct {
	PageNumber int             `json:"pageNumber"`
	CanvasData json.RawMessage `json:"canvasData,omitempty"`
	Thumbnail  string          `json:"thumbnail"`
}

// StoryboardPages jsonb column
type StoryboardPages []StoryboardPage

func (p StoryboardPages) Value() (driver.Value, error) { return jsonbValue(p) }
func (p *StoryboardPages) Scan(src any) error          { return jsonbScan(p, src) }

// ScriptBlock is one typed text block of a script page
type ScriptBlock struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ScriptPage is an ordered group of script blocks
type ScriptPage struct {
	ID               string        `json:"id"`
	PageNumber       int           `json:"pageNumber"`
	Blocks           []ScriptBlock `json:"blocks"`
	StoryboardPageID *string       `json:"storyboardPageId,omitempty"`
}

// ScriptPages jsonb column
type ScriptPages []ScriptPage

func (p ScriptPages) Value() (driver.Value, error) { return jsonbValue(p) }
func (p *ScriptPages) Scan(src any) error          { return jsonbScan(p, src) }

// SequenceFrame is one frame of a shot-sequence timeline
type SequenceFrame struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"` // storyboard, image
	StoryboardPageID *int    `json:"storyboardPageId,omitempty"`
	ScriptLineID     *string `json:"scriptLineId,omitempty"`
	Image            string  `json:"image"`
	Duration         float64 `json:"duration"`
	Transition       string  `json:"transition"` // cut, fade, dissolve
	TextOverlay      string  `json:"textOverlay"`
}

// SequenceFrames jsonb column
type SequenceFrames []SequenceFrame

func (f SequenceFrames) Value() (driver.Value, error) { return jsonbValue(f) }
func (f *SequenceFrames) Scan(src any) error          { return jsonbScan(f, src) }

// StringList jsonb column for tag arrays
type StringList []string

func (l StringList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *StringList) Scan(src any) error          { return jsonbScan(l, src) }
