package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gigcity/harvester/internal/event"
)

// extractJSONLD pulls schema.org Event objects out of every
// <script type="application/ld+json"> block in the document and converts
// them to candidates. Malformed blocks are skipped, not fatal: a single
// bad script tag shouldn't discard all events on the page.
func extractJSONLD(doc *goquery.Document) []event.Candidate {
	var candidates []event.Candidate

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		eventObjects, err := eventObjectsFromBlock([]byte(raw))
		if err != nil {
			return
		}

		for _, obj := range eventObjects {
			if c, ok := candidateFromJSONLD(obj); ok {
				candidates = append(candidates, c)
			}
		}
	})

	return candidates
}

// eventObjectsFromBlock inspects a single JSON-LD block and returns all
// schema.org Event / EventSeries objects found within it, handling:
//
//   - Single top-level Event or EventSeries object
//   - Top-level JSON array of objects
//   - Object with an @graph array
//   - ItemList with itemListElement containing ListItem→item Events
func eventObjectsFromBlock(data []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		var out []json.RawMessage
		for _, item := range items {
			extracted, err := eventObjectsFromObject(item)
			if err != nil {
				return nil, err
			}
			out = append(out, extracted...)
		}
		return out, nil
	}

	return eventObjectsFromObject(data)
}

func eventObjectsFromObject(data []byte) ([]json.RawMessage, error) {
	var envelope struct {
		Type            json.RawMessage   `json:"@type"`
		Graph           []json.RawMessage `json:"@graph"`
		ItemListElement []json.RawMessage `json:"itemListElement"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	if len(envelope.Graph) > 0 {
		var out []json.RawMessage
		for _, item := range envelope.Graph {
			extracted, err := eventObjectsFromObject(item)
			if err != nil {
				return nil, err
			}
			out = append(out, extracted...)
		}
		return out, nil
	}

	typStr := jsonTypeString(envelope.Type)

	if typStr == "ItemList" && len(envelope.ItemListElement) > 0 {
		var out []json.RawMessage
		for _, elem := range envelope.ItemListElement {
			var listItem struct {
				Item json.RawMessage `json:"item"`
			}
			if err := json.Unmarshal(elem, &listItem); err != nil {
				return nil, err
			}
			if len(listItem.Item) == 0 {
				continue
			}
			extracted, err := eventObjectsFromObject(listItem.Item)
			if err != nil {
				return nil, err
			}
			out = append(out, extracted...)
		}
		return out, nil
	}

	if isEventType(typStr) {
		return []json.RawMessage{json.RawMessage(data)}, nil
	}

	// Non-event object, skip silently.
	return nil, nil
}

// candidateFromJSONLD maps one schema.org Event object onto a Candidate.
// Structured-data quirks (typed values, ImageObject wrappers, Place
// objects) are flattened here so downstream stages see plain text.
func candidateFromJSONLD(raw json.RawMessage) (event.Candidate, bool) {
	var obj struct {
		Name        json.RawMessage `json:"name"`
		StartDate   json.RawMessage `json:"startDate"`
		URL         json.RawMessage `json:"url"`
		Image       json.RawMessage `json:"image"`
		Description json.RawMessage `json:"description"`
		Location    json.RawMessage `json:"location"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return event.Candidate{}, false
	}

	title := stringValue(obj.Name)
	if title == "" {
		return event.Candidate{}, false
	}

	return event.Candidate{
		Title:         title,
		RawDateText:   stringValue(obj.StartDate),
		URL:           stringValue(obj.URL),
		ImageURL:      imageValue(obj.Image),
		Description:   stringValue(obj.Description),
		VenueNameHint: locationName(obj.Location),
	}, true
}

// stringValue extracts a plain string from a value that may be a JSON
// string or a {"@value":"..."} object.
func stringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"@value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return ""
}

// imageValue handles plain string URLs, arrays, and ImageObject with
// "url" or "contentUrl".
func imageValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	raw = firstElement(raw)
	if raw == nil {
		return ""
	}
	var obj struct {
		URL        string `json:"url"`
		ContentURL string `json:"contentUrl"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	if obj.URL != "" {
		return obj.URL
	}
	return obj.ContentURL
}

// locationName handles plain string locations and Place objects (or
// arrays of them), returning just the place name.
func locationName(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	raw = firstElement(raw)
	if raw == nil {
		return ""
	}
	var obj struct {
		Name json.RawMessage `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	return stringValue(obj.Name)
}

// firstElement returns the first element of a JSON array, or the original
// value if it is not an array. Returns nil if the array is empty.
func firstElement(raw json.RawMessage) json.RawMessage {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return raw
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil || len(arr) == 0 {
		return nil
	}
	return arr[0]
}

// jsonTypeString returns the string value of a @type field, handling both
// a plain string ("Event") and a single-element array (["Event"]).
func jsonTypeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return stripSchemaPrefix(s)
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 {
		return stripSchemaPrefix(arr[0])
	}
	return ""
}

func stripSchemaPrefix(s string) string {
	for _, prefix := range []string{"https://schema.org/", "http://schema.org/"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			return after
		}
	}
	return s
}

func isEventType(typStr string) bool {
	if typStr == "Event" || typStr == "EventSeries" {
		return true
	}
	// Subtypes: MusicEvent, TheaterEvent, Festival, ComedyEvent, ...
	return strings.HasSuffix(typStr, "Event") || typStr == "Festival"
}
