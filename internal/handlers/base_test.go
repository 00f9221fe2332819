package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", services.ErrNotFound, http.StatusNotFound},
		{"permission", fmt.Errorf("%w: nope", services.ErrPermissionDenied), http.StatusForbidden},
		{"validation", fmt.Errorf("%w: body is required", services.ErrValidation), http.StatusBadRequest},
		{"conflict", services.ErrConflict, http.StatusConflict},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"auth", services.ErrAuthenticationRequired, http.StatusFound},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.True(t, c.IsAborted())
			switch tt.status {
			case http.StatusFound:
				assert.Equal(t, "/login", w.Header().Get("Location"))
			case http.StatusInternalServerError:
				assert.NotContains(t, w.Body.String(), "disk on fire")
				assert.Len(t, c.Errors, 1)
			case http.StatusNotFound:
				assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
			}
		})
	}
}

func TestMsgCapitalises(t *testing.T) {
	assert.Equal(t, "Validation failed: x", msg(fmt.Errorf("%w: x", services.ErrValidation)))
	assert.Equal(t, "", msg(nil))
}

func TestPostViews(t *testing.T) {
	post := &models.Post{
		ID:     3,
		Title:  "Hello",
		Slug:   "hello",
		Status: models.PostDraft,
		Body:   "# Heading\n\nSome *text* here.",
		Author: models.Profile{
			ID:      1,
			Account: models.Account{Username: "janed", FirstName: "Jane", LastName: "Doe"},
			City:    "Lyon",
			Country: "FR",
		},
	}

	summary := newPostSummary(post)
	assert.Equal(t, "/janed/hello", summary.URL)
	assert.Equal(t, "Heading Some text here.", summary.Excerpt)
	assert.Empty(t, summary.Body)
	assert.Equal(t, "Lyon, France", summary.Author.Location)

	detail := newPostDetail(post)
	assert.Empty(t, detail.Excerpt)
	assert.Equal(t, post.Body, detail.Body)
	assert.Contains(t, detail.BodyHTML, "<em>text</em>")
	assert.Contains(t, detail.BodyHTML, "<h1")
}
