package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtils_HexToRGBA(t *testing.T) {
	testCases := []struct {
		hex  string
		want color.RGBA
	}{
		{hex: "#ff0000", want: color.RGBA{R: 0xff, A: 0xff}},
		{hex: "00ff7f", want: color.RGBA{G: 0xff, B: 0x7f, A: 0xff}},
		{hex: "#0f0", want: color.RGBA{G: 0xff, A: 0xff}},
		{hex: "#12345", want: color.RGBA{A: 0xff}},
		{hex: "#zzzzzz", want: color.RGBA{A: 0xff}},
	}

	for _, tc := range testCases {
		t.Run(tc.hex, func(t *testing.T) {
			assert.Equal(t, tc.want, HexToRGBA(tc.hex))
		})
	}
}

func TestUtils_Contains(t *testing.T) {
	assert.True(t, Contains([]string{".jpg", ".png"}, ".png"))
	assert.False(t, Contains([]string{".jpg", ".png"}, ".tiff"))
	assert.False(t, Contains([]int(nil), 1))
}

func TestUtils_Math(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, Min(2, 5))
	assert.Equal(2, Min(5, 2))
	assert.Equal(3, Abs(-3))
	assert.Equal(1.5, Abs(1.5))
}

func TestUtils_FormatTime(t *testing.T) {
	assert.Equal(t, "1.50s", FormatTime(1500*time.Millisecond))
	assert.Equal(t, "2m 5.00s", FormatTime(2*time.Minute+5*time.Second))
	assert.Equal(t, "1h 1m 1.00s", FormatTime(time.Hour+time.Minute+time.Second))
	assert.Equal(t, "1d 0h 0m 0.00s", FormatTime(24*time.Hour))
}

func TestUtils_DecorateText(t *testing.T) {
	assert.Equal(t, ErrorColor+"error"+DefaultColor, DecorateText("error", ErrorMessage))
	assert.Equal(t, "plain", DecorateText("plain", MessageType(42)))
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	assert.True(t, IsValidUrl("https://github.com/esimov/seamcarver/"))
	assert.False(t, IsValidUrl("testdata/sample.jpg"))
	assert.False(t, IsValidUrl("-"))
}

func TestUtils_ShouldDownloadImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/image.png":
			w.Write(buf.Bytes())
		case "/text":
			w.Write([]byte("hello"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f, err := DownloadImage(srv.URL + "/image.png")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())

	_, err = DownloadImage(srv.URL + "/text")
	assert.Error(t, err)

	_, err = DownloadImage(srv.URL + "/missing")
	assert.Error(t, err)
}

func TestUtils_ShouldDetectValidFileType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 1, 1))))
	require.NoError(t, f.Close())

	ftype, err := DetectContentType(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(ftype, "image"), "got %v", ftype)
}

func TestUtils_Spinner(t *testing.T) {
	var buf safeBuffer
	s := NewSpinner(&buf, "working", time.Millisecond, false)
	s.StopMsg = "done"

	s.Start()
	s.Start()
	time.Sleep(5 * time.Millisecond)
	s.Stop()
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "working")
	assert.True(t, strings.HasSuffix(out, "done"))
}
