package seamcarver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/esimov/seamcarver/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

var (
	// validExtensions lists the image file extensions which can be decoded.
	validExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp"}
	// encodableExtensions lists the image file extensions which can be encoded.
	encodableExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}
)

// Ops holds the source and destination of a resize operation.
// Src can be a local file, a directory, a URL or the pipe name.
type Ops struct {
	Src, Dst, PipeName string
	Workers            int
	Spinner            *utils.Spinner
	Logger             *slog.Logger
}

// result holds the relevant information about the resizing process and the generated image.
type result struct {
	path string
	err  error
}

// Execute executes the image resizing process.
// A directory source is walked recursively and its images are resized
// concurrently into the destination directory.
func (p *Processor) Execute(ctx context.Context, op *Ops) error {
	var (
		fi  os.FileInfo
		err error
	)
	logger := op.logger()
	src := op.Src

	// Check if source path is a local image or URL.
	if utils.IsValidUrl(src) {
		f, err := utils.DownloadImage(src)
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		defer os.Remove(f.Name())
		defer f.Close()

		logger.Debug("source image downloaded", slog.String("url", src), slog.String("file", f.Name()))
		src = f.Name()
	}

	// Check if the source is a pipe name or a regular file.
	if src == op.PipeName {
		fi, err = os.Stdin.Stat()
	} else {
		fi, err = os.Stat(src)
	}
	if err != nil {
		return fmt.Errorf("failed to load the source image: %w", err)
	}

	if op.Spinner != nil {
		op.Spinner.Start()
	}
	now := time.Now()

	switch mode := fi.Mode(); {
	case mode.IsDir():
		err = op.executeDir(ctx, p, src)
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0:
		ext := filepath.Ext(op.Dst)
		if !utils.Contains(encodableExtensions, ext) && op.Dst != op.PipeName {
			err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
			break
		}
		if err = op.process(p, src, op.Dst); err == nil {
			op.printOpStatus(op.Dst, nil)
		}
	default:
		err = fmt.Errorf("unsupported source file mode: %v", mode)
	}

	op.stopSpinner(err)
	if err != nil {
		return err
	}
	logger.Info("execution finished", slog.String("time", utils.FormatTime(time.Since(now))))

	return nil
}

// executeDir resizes the images of the src directory concurrently.
func (op *Ops) executeDir(ctx context.Context, p *Processor, src string) error {
	if err := os.MkdirAll(op.Dst, 0755); err != nil {
		return fmt.Errorf("unable to create the destination directory: %w", err)
	}

	workers := workerCount(op.Workers)

	g, ctx := errgroup.WithContext(ctx)
	paths := make(chan string)
	g.Go(func() error {
		// Close the paths channel after the walk returns.
		defer close(paths)
		return walkDir(ctx, src, validExtensions, paths)
	})

	results := make(chan result)
	var consumers errgroup.Group
	for i := 0; i < workers; i++ {
		consumers.Go(func() error {
			op.consumer(p, op.Dst, paths, results)
			return nil
		})
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(results)
		consumers.Wait()
	}()

	var total, failed int
	for res := range results {
		total++
		if res.err != nil {
			failed++
		}
		op.printOpStatus(res.path, res.err)
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be resized", failed, total)
	}
	return nil
}

// consumer reads the path names from the paths channel and calls the resizing processor against the source image.
func (op *Ops) consumer(p *Processor, dest string, paths <-chan string, res chan<- result) {
	for src := range paths {
		dst := filepath.Join(dest, destName(src))

		proc := p
		if p.EnergyPath != "" {
			// Every image gets its own energy map next to the resized file.
			cp := *p
			cp.EnergyPath = filepath.Join(dest, energyName(src))
			proc = &cp
		}
		res <- result{
			path: src,
			err:  op.process(proc, src, dst),
		}
	}
}

// workerCount limits the concurrently running workers to maxWorkers.
// A non-positive count falls back to the number of CPUs.
func workerCount(n int) int {
	if n <= 0 {
		return utils.Min(runtime.NumCPU(), maxWorkers)
	}
	return utils.Min(n, maxWorkers)
}

// process calls the resizer method over the source image and returns the error in case exists.
func (op *Ops) process(p *Processor, in, out string) (err error) {
	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		return err
	}

	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			if cerr := f.Close(); cerr != nil {
				op.logger().Warn("could not close the source file", slog.Any("error", cerr))
			}
		}
	}()

	defer func() {
		f, ok := dst.(*os.File)
		if !ok || f == os.Stdout {
			return
		}
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		// remove the generated image file in case of an error
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	return p.Process(src, dst)
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
	)

	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		f, err := os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
		}
		src = f
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		f, err := os.Create(out)
		if err != nil {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
		dst = f
	}
	return src, dst, nil
}

// printOpStatus logs the relevant information about the image resizing process.
func (op *Ops) printOpStatus(fname string, err error) {
	logger := op.logger()
	if err != nil {
		logger.Error("error resizing the image", slog.String("file", fname), slog.Any("error", err))
		return
	}
	if fname != op.PipeName {
		logger.Info("the image has been saved", slog.String("file", filepath.Base(fname)))
	}
}

// stopSpinner stops the progress indicator with a message reflecting the outcome.
func (op *Ops) stopSpinner(err error) {
	if op.Spinner == nil {
		return
	}
	if err != nil {
		op.Spinner.StopMsg = fmt.Sprintf("%s %s %s\n",
			utils.DecorateText("⚡ SEAMCARVER", utils.StatusMessage),
			utils.DecorateText("resizing image failed...", utils.DefaultMessage),
			utils.DecorateText("✘", utils.ErrorMessage),
		)
	} else {
		op.Spinner.StopMsg = fmt.Sprintf("%s %s %s\n",
			utils.DecorateText("⚡ SEAMCARVER", utils.StatusMessage),
			utils.DecorateText("⇢", utils.DefaultMessage),
			utils.DecorateText("the image has been resized successfully ✔", utils.SuccessMessage),
		)
	}
	op.Spinner.Stop()
}

// destName returns the file name of the resized image. Images which
// cannot be encoded in their own format are saved as png.
func destName(src string) string {
	name := filepath.Base(src)
	ext := filepath.Ext(name)
	if utils.Contains(encodableExtensions, ext) {
		return name
	}
	return strings.TrimSuffix(name, ext) + ".png"
}

func (op *Ops) logger() *slog.Logger {
	if op.Logger == nil {
		return slog.Default()
	}
	return op.Logger
}

// walkDir walks the src directory tree recursively and sends the path of
// each supported image file to the paths channel.
// It finishes in case the context is cancelled.
func walkDir(ctx context.Context, src string, srcExts []string, paths chan<- string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !utils.Contains(srcExts, filepath.Ext(d.Name())) {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("directory walk cancelled: %w", ctx.Err())
		case paths <- path:
		}
		return nil
	})
}

// energyName returns the file name of the energy map dumped for src in directory mode.
func energyName(src string) string {
	name := filepath.Base(src)
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".energy.png"
}
