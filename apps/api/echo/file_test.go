package echoapi_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/wazazi/core/file"
)

func newUploadRequest(t *testing.T, token, name string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func Test_fileApi(t *testing.T) {
	fx := setup(t)
	teacherToken := fx.token(t, "teacher1")

	fx.run(t, []httpTest{
		{name: "empty", path: "/v1/files", token: teacherToken, wantData: []byte(`[]`)},
		{
			name: "file required", method: http.MethodPost, path: "/v1/files", token: teacherToken,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"file":"this field is required"}`),
		},
	})

	req, rec := newUploadRequest(t, teacherToken, "homework.txt", []byte("Read chapter 3"))
	fx.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	uploaded := decode[file.Summary](t, rec)
	assert.Equal(t, "homework.txt", uploaded.Name)
	assert.Equal(t, "Jane Smith", uploaded.UploadedBy)
	assert.Equal(t, 14, uploaded.Size)

	// download
	req, rec = newAuthRequest(http.MethodGet, "/v1/files/"+uploaded.ID, fx.token(t, "parent1"))
	fx.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Read chapter 3", rec.Body.String())
	assert.Equal(t, `attachment; filename="homework.txt"`, rec.Header().Get("Content-Disposition"))

	fx.run(t, []httpTest{
		{name: "listed", path: "/v1/files", token: teacherToken, wantData: marshalObj(t, []file.Summary{uploaded})},
		{name: "unknown", path: "/v1/files/ghost", token: teacherToken, wantCode: http.StatusNotFound},
		{name: "only the uploader deletes", method: http.MethodDelete, path: "/v1/files/" + uploaded.ID, token: fx.token(t, "parent1"), wantCode: http.StatusForbidden},
		{name: "delete", method: http.MethodDelete, path: "/v1/files/" + uploaded.ID, token: teacherToken, wantCode: http.StatusNoContent},
		{name: "deleted", path: "/v1/files/" + uploaded.ID, token: teacherToken, wantCode: http.StatusNotFound},
	})
}
