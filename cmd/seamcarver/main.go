package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/esimov/seamcarver"
	"github.com/esimov/seamcarver/utils"
	"github.com/lmittmann/tint"
)

const helpBanner = `
┌─┐┌─┐┌─┐┌┬┐┌─┐┌─┐┬─┐┬  ┬┌─┐┬─┐
└─┐├┤ ├─┤│││  ├─┤├┬┘└┐┌┘├┤ ├┬┘
└─┘└─┘┴ ┴┴ ┴└─┘┴ ┴┴└─ └┘ └─┘┴└─

Content aware image width reduction.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source image, directory or URL")
	destination = flag.String("out", pipeName, "Destination image or directory")
	newWidth    = flag.Int("width", 0, "New width")
	percentage  = flag.Bool("perc", false, "Reduce the image width by percentage")
	debug       = flag.Bool("debug", false, "Draw the removed seams over the source image")
	seamColor   = flag.String("color", "#ff0000", "Seam color in debug mode")
	energyMap   = flag.String("energy", "", "Save the energy map of the source image as png (per image next to the output in directory mode)")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
	verbose     = flag.Bool("v", false, "Verbose logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, helpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	)
	slog.SetDefault(logger)

	if *newWidth <= 0 {
		flag.Usage()
		logger.Error("please provide a width or a percentage for image rescaling")
		os.Exit(1)
	}

	proc := &seamcarver.Processor{
		NewWidth:   *newWidth,
		Percentage: *percentage,
		Debug:      *debug,
		SeamColor:  *seamColor,
		EnergyPath: *energyMap,
		Logger:     logger,
	}

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ SEAMCARVER", utils.StatusMessage),
		utils.DecorateText("⇢ resizing image (be patient, it may take a while)...", utils.DefaultMessage),
	)
	spinner := utils.NewSpinner(os.Stderr, spinnerText, time.Millisecond*80, true)

	op := &seamcarver.Ops{
		Src:      *source,
		Dst:      *destination,
		PipeName: pipeName,
		Workers:  *workers,
		Spinner:  spinner,
		Logger:   logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Capture CTRL-C signal and restore the cursor visibility back.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		cancel()
		spinner.RestoreCursor()
		logger.Warn("interrupted")
		os.Exit(1)
	}()

	if err := proc.Execute(ctx, op); err != nil {
		logger.Error("resizing failed", slog.Any("error", err))
		os.Exit(1)
	}
}
