package booth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-photobooth/entity"
)

func TestClient_Upload(t *testing.T) {
	var gotPartType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/image", r.URL.Path)

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()

		gotPartType = header.Header.Get("Content-Type")
		gotBody, err = io.ReadAll(file)
		require.NoError(t, err)

		json.NewEncoder(w).Encode(UploadResponse{
			Message:  "ok",
			Filename: header.Filename,
			MIME:     "image/jpeg",
			Size:     int64(len(gotBody)),
			Caption:  r.FormValue("caption"),
		})
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL).Upload(context.Background(), []byte("jpegbytes"), "photo_1.jpg", "hello")
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Message)
	require.Equal(t, "photo_1.jpg", resp.Filename)
	require.Equal(t, "hello", resp.Caption)
	require.Equal(t, "image/jpeg", gotPartType)
	require.Equal(t, []byte("jpegbytes"), gotBody)
}

func TestClient_Upload_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Upload failed", "details": "storage unavailable"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Upload(context.Background(), []byte("jpegbytes"), "photo.jpg", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Upload failed")
	require.Contains(t, err.Error(), "storage unavailable")
}

func TestClient_List(t *testing.T) {
	photos := []entity.Photo{
		{ID: uuid.New(), ImageName: "2-b.jpg", ImageURL: "https://cdn.test/photos/2-b.jpg", CreatedAt: time.Now()},
		{ID: uuid.New(), ImageName: "1-a.jpg", ImageURL: "https://cdn.test/photos/1-a.jpg", CreatedAt: time.Now().Add(-time.Minute)},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode(map[string]any{"images": photos, "error": nil})
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, photos[0].ImageName, got[0].ImageName)
	require.Equal(t, photos[1].ImageName, got[1].ImageName)
}

func TestClient_Delete(t *testing.T) {
	id := uuid.New().String()
	var gotPayload map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]string{"message": "Photo deleted successfully"})
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Delete(context.Background(), id, "1-abc-photo.jpg")
	require.NoError(t, err)
	require.Equal(t, id, gotPayload["id"])
	require.Equal(t, "1-abc-photo.jpg", gotPayload["image_name"])
}

func TestClient_Delete_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Photo not found"})
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Delete(context.Background(), uuid.New().String(), "gone.jpg")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Photo not found")
}
