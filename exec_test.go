package seamcarver

import (
	"context"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/esimov/seamcarver/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, img))
}

func testOps(src, dst string) *Ops {
	return &Ops{
		Src:      src,
		Dst:      dst,
		PipeName: "-",
		Workers:  2,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestExec_SingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out.png")
	writePNG(t, src, noise(40, 5, 9))

	p := &Processor{NewWidth: 6}
	require.NoError(t, p.Execute(context.Background(), testOps(src, dst)))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()

	res, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 5), res.Bounds())
}

func TestExec_UnsupportedDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	writePNG(t, src, noise(41, 3, 3))

	p := &Processor{NewWidth: 2}
	err := p.Execute(context.Background(), testOps(src, filepath.Join(dir, "out.tiff")))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExec_FailedResizeRemovesOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out.png")
	writePNG(t, src, noise(42, 3, 3))

	p := &Processor{NewWidth: 10}
	err := p.Execute(context.Background(), testOps(src, dst))
	assert.ErrorIs(t, err, ErrInvalidWidth)

	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

func TestExec_MissingSource(t *testing.T) {
	p := &Processor{NewWidth: 2}
	err := p.Execute(context.Background(), testOps(filepath.Join(t.TempDir(), "missing.png"), "out.png"))
	assert.Error(t, err)
}

func TestExec_Directory(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := filepath.Join(t.TempDir(), "resized")

	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "nested"), 0755))
	writePNG(t, filepath.Join(srcDir, "a.png"), noise(43, 4, 8))
	writePNG(t, filepath.Join(srcDir, "nested", "b.png"), noise(44, 6, 7))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "notes.txt"), []byte("skip me"), 0644))

	p := &Processor{NewWidth: 5}
	require.NoError(t, p.Execute(context.Background(), testOps(srcDir, dstDir)))

	entries, err := os.ReadDir(dstDir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"a.png", "b.png"}, names)
}

func TestExec_DirectoryReportsFailures(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	writePNG(t, filepath.Join(srcDir, "wide.png"), noise(45, 3, 8))
	writePNG(t, filepath.Join(srcDir, "narrow.png"), noise(46, 3, 3))

	p := &Processor{NewWidth: 5}
	err := p.Execute(context.Background(), testOps(srcDir, dstDir))
	assert.EqualError(t, err, "1 of 2 images could not be resized")

	_, err = os.Stat(filepath.Join(dstDir, "wide.png"))
	assert.NoError(t, err)
}

func TestExec_WalkDirCancelled(t *testing.T) {
	srcDir := t.TempDir()
	writePNG(t, filepath.Join(srcDir, "a.png"), noise(47, 2, 2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := walkDir(ctx, srcDir, validExtensions, make(chan string))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExec_DestName(t *testing.T) {
	assert.Equal(t, "a.jpg", destName("/tmp/x/a.jpg"))
	assert.Equal(t, "b.png", destName("b.gif"))
	assert.Equal(t, "c.png", destName("dir/c.webp"))
}

func TestExec_DirectoryEnergyMaps(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	a, b := noise(48, 4, 9), noise(49, 3, 7)
	writePNG(t, filepath.Join(srcDir, "a.png"), a)
	writePNG(t, filepath.Join(srcDir, "b.png"), b)

	energyPath := filepath.Join(t.TempDir(), "energy.png")
	p := &Processor{NewWidth: 5, EnergyPath: energyPath}
	require.NoError(t, p.Execute(context.Background(), testOps(srcDir, dstDir)))

	// The shared path is never written, each image has its own energy map.
	_, err := os.Stat(energyPath)
	assert.True(t, os.IsNotExist(err))

	for name, src := range map[string]*Image{"a": a, "b": b} {
		f, err := os.Open(filepath.Join(dstDir, name+".energy.png"))
		require.NoError(t, err, name)

		energy, err := png.Decode(f)
		f.Close()
		require.NoError(t, err, name)
		assert.Equal(t, EnergyMap(src).Pix, FromImage(energy).Pix, name)
	}
	assert.Equal(t, energyPath, p.EnergyPath)
}

func TestExec_EnergyName(t *testing.T) {
	assert.Equal(t, "a.energy.png", energyName("/tmp/x/a.jpg"))
	assert.Equal(t, "b.energy.png", energyName("b.gif"))
}

func TestExec_WorkerCount(t *testing.T) {
	assert.Equal(t, 1, workerCount(1))
	assert.Equal(t, maxWorkers, workerCount(maxWorkers+5))
	assert.Equal(t, utils.Min(runtime.NumCPU(), maxWorkers), workerCount(0))
	assert.Equal(t, utils.Min(runtime.NumCPU(), maxWorkers), workerCount(-2))
}
