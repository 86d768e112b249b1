package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kochabx/webpush/errors"
)

func TestGinJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		data any
		want string
	}{
		{
			name: "string data",
			data: "test data",
			want: `{"code":200,"msg":"success","data":"test data"}`,
		},
		{
			name: "map data",
			data: map[string]string{"key": "value"},
			want: `{"code":200,"msg":"success","data":{"key":"value"}}`,
		},
		{
			name: "nil data",
			data: nil,
			want: `{"code":200,"msg":"success"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			GinJSON(c, tt.data)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestGinStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	GinStatus(c, http.StatusAccepted, map[string]int{"queued": 1})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"code":202,"msg":"success","data":{"queued":1}}`, w.Body.String())
}

func TestGinError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		want       string
	}{
		{
			name:       "typed error",
			err:        errors.NotFound("subscription not found"),
			wantStatus: http.StatusNotFound,
			want:       `{"code":404,"msg":"subscription not found"}`,
		},
		{
			name:       "wrapped typed error",
			err:        fmt.Errorf("save: %w", errors.BadRequest("invalid argument")),
			wantStatus: http.StatusBadRequest,
			want:       `{"code":400,"msg":"invalid argument"}`,
		},
		{
			name:       "plain error hides detail",
			err:        fmt.Errorf("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			want:       `{"code":500,"msg":"Internal Server Error"}`,
		},
		{
			name:       "non http code",
			err:        errors.New(1001, "custom"),
			wantStatus: http.StatusInternalServerError,
			want:       `{"code":1001,"msg":"Internal Server Error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			GinError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
			assert.True(t, c.IsAborted())
		})
	}
}
