package services

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentList_PassesFilter(t *testing.T) {
	d := &fakeDoer{Success: true, Data: []models.Item{{ID: "b1", Name: "OS"}}}
	svc := NewContentService(d)

	items, err := svc.List(context.Background(), models.KindBooks, models.Filter{Department: "CSE", Year: "2"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	req := d.last()
	assert.Equal(t, "/content/books", req.Path)
	assert.Equal(t, models.Filter{Department: "CSE", Year: "2"}, req.Query)
}

func TestContentList_NullDataIsEmpty(t *testing.T) {
	svc := NewContentService(&fakeDoer{Success: true})

	items, err := svc.List(context.Background(), models.KindNotes, models.Filter{})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestContentGet_EscapesID(t *testing.T) {
	d := &fakeDoer{Success: true, Data: models.Item{ID: "a/b"}}
	_, err := NewContentService(d).Get(context.Background(), models.KindPYQs, "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/content/pyqs/a%2Fb", d.last().Path)
}

func TestContentUpload_BuildsForm(t *testing.T) {
	d := &fakeDoer{Success: true, Data: models.Item{ID: "n1"}}
	svc := NewContentService(d)

	_, err := svc.Upload(context.Background(), models.KindNotes, models.Upload{
		Name: "DBMS", Category: "notes", Department: "cse", Year: "3",
		FileName: "dbms.pdf", Content: []byte("%PDF"),
	})
	require.NoError(t, err)

	req := d.last()
	assert.Equal(t, http.MethodPost, req.Method)
	require.NotNil(t, req.Form)
	assert.Equal(t, "CSE", req.Form.Fields["department"])
	assert.Equal(t, "file", req.Form.FileField)
	assert.Equal(t, "dbms.pdf", req.Form.FileName)
}

func TestContentUpload_ValidatesLocally(t *testing.T) {
	d := &fakeDoer{Success: true}
	_, err := NewContentService(d).Upload(context.Background(), models.KindBooks, models.Upload{Name: "x"})
	assert.ErrorIs(t, err, models.ErrIncompleteUpload)
	assert.Empty(t, d.Requests)
}

func TestContentDownload_WritesPayload(t *testing.T) {
	payload := []byte("chapter one")
	d := &fakeDoer{Success: true, Data: models.Item{
		ID:       "b1",
		Name:     "Algorithms",
		FileName: "algo.txt",
		FileData: "data:text/plain;base64," + base64.StdEncoding.EncodeToString(payload),
	}}
	dir := t.TempDir()

	path, err := NewContentService(d).Download(context.Background(), models.KindBooks, "b1", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "algo.txt"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestContentDownload_NoFileData(t *testing.T) {
	d := &fakeDoer{Success: true, Data: models.Item{ID: "b1"}}
	_, err := NewContentService(d).Download(context.Background(), models.KindBooks, "b1", t.TempDir())
	assert.ErrorIs(t, err, models.ErrNoFileData)
}
