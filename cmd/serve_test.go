package cmd

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/TesterNaN/ccmz2mid/ccmz"
	"github.com/TesterNaN/ccmz2mid/model"
	"github.com/TesterNaN/ccmz2mid/smffile"
)

func makeContainer(t *testing.T) []byte {
	t.Helper()
	payload := `{
		"resolution": 480,
		"tempos": [{"tick": 0, "tempo": 500000}],
		"beatInfos": [{"tick": 0, "beats": 4, "beatsUnit": 4}],
		"tracks": [{"channel": 0, "program": 0}],
		"events": [
			{"tick": 0, "track": 0, "event": [144, 60, 80]},
			{"tick": 480, "track": 0, "event": [128, 60, 0]}
		]
	}`
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("midi.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	container, err := ccmz.Obfuscate(buf.Bytes(), ccmz.V2)
	if err != nil {
		t.Fatal(err)
	}
	return container
}

func TestHandleConvertReturnsMidi(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/convert", bytes.NewReader(makeContainer(t)))
	w := httptest.NewRecorder()
	HandleConvert(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	assert := assert.New(t)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.Equal("audio/midi", resp.Header.Get("Content-Type"))

	parsed, err := smffile.Read(body)
	assert.NoError(err)
	assert.Len(parsed.Tracks, 2)
}

func TestHandleConvertHonorsResolutionParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/convert?resolution=960", bytes.NewReader(makeContainer(t)))
	w := httptest.NewRecorder()
	HandleConvert(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	assert := assert.New(t)
	assert.Equal(http.StatusOK, resp.StatusCode)
	parsed, err := smffile.Read(body)
	assert.NoError(err)

	assert.Equal(smf.MetricTicks(960), parsed.TimeFormat)
}

func TestHandleConvertRejectsBadContainer(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/convert", bytes.NewReader([]byte{9, 1, 2, 3}))
	w := httptest.NewRecorder()
	HandleConvert(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	assert := assert.New(t)
	assert.Equal(http.StatusUnprocessableEntity, resp.StatusCode)

	var er model.ErrorResponse
	assert.NoError(json.Unmarshal(body, &er))
	assert.Contains(er.Error, "unsupported container version")
}

func TestHandleConvertRejectsEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/convert", nil)
	w := httptest.NewRecorder()
	HandleConvert(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandleConvertRejectsBadResolution(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/convert?resolution=0", bytes.NewReader(makeContainer(t)))
	w := httptest.NewRecorder()
	HandleConvert(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}
