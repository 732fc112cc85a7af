package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseMultipartUserRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	_ = writer.WriteField("userName", "  wanderer  ")
	_ = writer.WriteField("password", "opensesame")
	part, _ := writer.CreateFormFile("profilePicture", "me.png")
	_, _ = part.Write([]byte("not really a png"))
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/users", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	parsed, err := parseMultipartUserRequest(c)
	if err != nil {
		t.Fatalf("parseMultipartUserRequest returned error: %v", err)
	}
	if !parsed.UserNameSet || parsed.UserName != "wanderer" {
		t.Fatalf("expected trimmed userName, got %+v", parsed)
	}
	if !parsed.PasswordSet || parsed.Password != "opensesame" {
		t.Fatalf("expected password, got %+v", parsed)
	}
	if !parsed.PictureSet || parsed.Picture.Filename != "me.png" {
		t.Fatalf("expected profilePicture file, got %+v", parsed)
	}
}

func TestParseMultipartUserRequestWithoutPicture(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	_ = writer.WriteField("password", "newpass")
	_ = writer.Close()

	req := httptest.NewRequest("PUT", "/users/wanderer", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	parsed, err := parseMultipartUserRequest(c)
	if err != nil {
		t.Fatalf("parseMultipartUserRequest returned error: %v", err)
	}
	if parsed.UserNameSet {
		t.Fatalf("expected userName unset, got %+v", parsed)
	}
	if !parsed.PasswordSet || parsed.Password != "newpass" {
		t.Fatalf("expected password set, got %+v", parsed)
	}
	if parsed.PictureSet {
		t.Fatalf("expected no picture, got %+v", parsed)
	}
}
