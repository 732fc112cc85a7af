package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/models"
)

func newMultipartContext(t *testing.T, fields map[string]string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		_ = writer.WriteField(key, value)
	}
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/details/1/createDetails", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestParseMultipartDetailRequest(t *testing.T) {
	c := newMultipartContext(t, map[string]string{
		"time":        "2024-05-01T10:30:00Z",
		"location":    `{"type":"Point","coordinates":[139.6917,35.6895]}`,
		"journalText": "sakura everywhere",
	})

	parsed, err := parseMultipartDetailRequest(c)
	if err != nil {
		t.Fatalf("parseMultipartDetailRequest returned error: %v", err)
	}
	if !parsed.TimeSet || !parsed.Time.Equal(time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected parsed time, got %+v", parsed)
	}
	if !parsed.LocationSet || parsed.Location.Type != "Point" {
		t.Fatalf("expected Point location, got %+v", parsed)
	}
	if parsed.Location.Coordinates[0] != 139.6917 || parsed.Location.Coordinates[1] != 35.6895 {
		t.Fatalf("expected [lng, lat] order preserved, got %v", parsed.Location.Coordinates)
	}
	if !parsed.JournalTextSet || parsed.JournalText != "sakura everywhere" {
		t.Fatalf("expected journalText, got %+v", parsed)
	}
	if parsed.PhotoSet {
		t.Fatalf("expected no photo, got %+v", parsed)
	}
}

func TestParseMultipartDetailRequestRejectsBadTime(t *testing.T) {
	c := newMultipartContext(t, map[string]string{
		"time":        "yesterday",
		"location":    `{"coordinates":[1,2]}`,
		"journalText": "x",
	})

	if _, err := parseMultipartDetailRequest(c); err == nil {
		t.Fatal("expected error for non-RFC3339 time")
	}
}

func TestParseLocationDefaultsType(t *testing.T) {
	location, err := parseLocation(`{"coordinates":[2.3522,48.8566]}`)
	if err != nil {
		t.Fatalf("parseLocation returned error: %v", err)
	}
	if location.Type != "Point" {
		t.Fatalf("expected default type Point, got %q", location.Type)
	}
}

func TestParseLocationRejectsBadCoordinates(t *testing.T) {
	cases := []string{
		`{"type":"Point","coordinates":[1]}`,
		`{"type":"Point","coordinates":[1,2,3]}`,
		`{"type":"Point"}`,
		`not json`,
	}
	for _, raw := range cases {
		if _, err := parseLocation(raw); err == nil {
			t.Fatalf("expected error for %s", raw)
		}
	}
}

func TestDetailViewProjectionFields(t *testing.T) {
	view := models.DetailView{
		Time:         time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		Location:     models.GeoPoint{Type: "Point", Coordinates: []float64{139.6917, 35.6895}},
		JournalText:  "sakura everywhere",
		JournalPhoto: "https://bucket.s3.us-east-1.amazonaws.com/1-sakura.jpg",
	}

	encoded, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(encoded, &fields); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	allowed := map[string]struct{}{
		"time":         {},
		"location":     {},
		"journalText":  {},
		"journalPhoto": {},
	}
	for key := range fields {
		if _, ok := allowed[key]; !ok {
			t.Fatalf("projection leaked field %q", key)
		}
	}
	if _, ok := fields["journeyId"]; ok {
		t.Fatal("projection must not expose journeyId")
	}
}
