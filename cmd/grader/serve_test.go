//go:build unix

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/autograde/go-grader/archive"
	"github.com/autograde/go-grader/cmd/grader/config"
	"github.com/autograde/go-grader/filestore"
	"github.com/gin-gonic/gin"
)

func newTestServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	e := newGradeEnv(t, "cat")
	var conf config.Config
	if err := conf.Load(e.args); err != nil {
		t.Fatal(err)
	}
	conf.AuthToken = token
	svc, err := newGradeService(&conf)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(initHTTPMux(&conf, svc, filestore.NewFileLocalStore(t.TempDir())))
	t.Cleanup(srv.Close)
	return srv
}

func postArchive(t *testing.T, url, token string, files map[string]string) *http.Response {
	t.Helper()
	src := filepath.Join(t.TempDir(), "hw.zip")
	if err := archive.Create(src, files); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fw, err := writer.CreateFormFile("file", "hw.zip")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	writer.WriteField("language", "shell")
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, url+"/grade", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServeGrade(t *testing.T) {
	srv := newTestServer(t, "")

	resp := postArchive(t, srv.URL, "", map[string]string{"main.sh": "cat"})
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, b)
	}
	if want := `{"totalTests":2,"test0":false,"test1":true,"marks":1}`; string(b) != want {
		t.Errorf("body = %s, want %s", b, want)
	}

	resp = postArchive(t, srv.URL, "", map[string]string{"main.sh": "if then fi (\n"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("compile failure status = %d", resp.StatusCode)
	}
	var errResp map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatal(err)
	}
	if errResp["error"] != true {
		t.Errorf("error response = %v", errResp)
	}
}

func TestServeAuth(t *testing.T) {
	srv := newTestServer(t, "secret")

	resp := postArchive(t, srv.URL, "", map[string]string{"main.sh": "cat"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token status = %d", resp.StatusCode)
	}
	resp = postArchive(t, srv.URL, "secret", map[string]string{"main.sh": "cat"})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("token status = %d", resp.StatusCode)
	}

	vresp, err := http.Get(srv.URL + "/version")
	if err != nil {
		t.Fatal(err)
	}
	defer vresp.Body.Close()
	var v map[string]any
	if err := json.NewDecoder(vresp.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	if vresp.StatusCode != http.StatusOK || v["testCases"] != float64(2) {
		t.Errorf("version = %d %v", vresp.StatusCode, v)
	}
}
