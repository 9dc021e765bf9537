package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseEventVisitorRecord(t *testing.T) {
	body := []byte(`{
		"browser_name": "Chrome",
		"device_type": "desktop",
		"ip": "1.2.3.4",
		"query_params": {"ref": "x"}
	}`)

	event, err := ParseEvent(body)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}

	rec, ok := event.(*VisitorRecord)
	if !ok {
		t.Fatalf("ParseEvent() = %T, want *VisitorRecord", event)
	}
	if rec.BrowserName != "Chrome" || rec.DeviceType != DeviceDesktop || rec.IP != "1.2.3.4" {
		t.Errorf("decoded record = %+v", rec)
	}
	if rec.QueryParams["ref"] != "x" {
		t.Errorf("query params = %v", rec.QueryParams)
	}
}

func TestParseEventStorySubmission(t *testing.T) {
	body := []byte(`{"type":"story_submission","chapter_id":2,"text":"once upon a time","timestamp":"2026-01-15T12:00:00Z"}`)

	event, err := ParseEvent(body)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}

	story, ok := event.(*StorySubmission)
	if !ok {
		t.Fatalf("ParseEvent() = %T, want *StorySubmission", event)
	}
	if story.ChapterID != 2 || story.Text != "once upon a time" {
		t.Errorf("decoded story = %+v", story)
	}
}

func TestParseEventUnknownType(t *testing.T) {
	_, err := ParseEvent([]byte(`{"type":"ping"}`))
	if err == nil {
		t.Fatal("expected an error for an unknown type tag")
	}
	if !strings.Contains(err.Error(), "ping") {
		t.Errorf("error should name the unknown type, got %v", err)
	}
}

func TestParseEventMalformed(t *testing.T) {
	for _, body := range []string{"", "{", "[]", "null{"} {
		if _, err := ParseEvent([]byte(body)); err == nil {
			t.Errorf("ParseEvent(%q): expected an error", body)
		}
	}
}

func TestVisitorRecordOptionalFieldsOmitted(t *testing.T) {
	rec := VisitorRecord{
		Timestamp:   "2026-01-15T12:00:00.000Z",
		BrowserName: "Unknown",
	}

	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, field := range []string{"ip", "latitude", "battery_level", "connection_speed", "utm_source"} {
		if strings.Contains(string(out), `"`+field+`"`) {
			t.Errorf("absent field %q leaked into the wire form", field)
		}
	}
	if !strings.Contains(string(out), `"timestamp"`) {
		t.Error("required field timestamp missing from wire form")
	}
}
