package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/HellmannM/anari-volume-viewer/device"
	"github.com/HellmannM/anari-volume-viewer/predict"
	"github.com/HellmannM/anari-volume-viewer/viewer"
	"github.com/HellmannM/anari-volume-viewer/volume"
)

func main() {
	var (
		verbose  bool
		debug    bool
		trace    bool
		profile  bool
		library  string
		dims     string
		typeName string
		jsonFile string
		lacFile  string
		lutIndex int
	)
	flag.BoolVar(&verbose, "verbose", false, "log informational device and pipeline activity")
	flag.BoolVar(&verbose, "v", false, "shorthand for -verbose")
	flag.BoolVar(&debug, "debug", false, "log debug device activity")
	flag.BoolVar(&debug, "g", false, "shorthand for -debug")
	flag.BoolVar(&trace, "trace", false, "log every device object call")
	flag.BoolVar(&profile, "profile", false, "log rebuild stage timings")
	flag.StringVar(&library, "library", "environment", `device backend; "environment" reads ANARI_LIBRARY`)
	flag.StringVar(&library, "l", "environment", "shorthand for -library")
	flag.StringVar(&dims, "dims", "", "explicit grid dimensions as DxDxD (raw files)")
	flag.StringVar(&dims, "d", "", "shorthand for -dims")
	flag.StringVar(&typeName, "type", "", "explicit sample type: uint8, uint16 or float32 (raw files)")
	flag.StringVar(&typeName, "t", "", "shorthand for -type")
	flag.StringVar(&jsonFile, "json", "", "camera predictions JSON file")
	flag.StringVar(&jsonFile, "j", "", "shorthand for -json")
	flag.StringVar(&lacFile, "lacfile", "", "LUT definition YAML file (default: built-in tables)")
	flag.StringVar(&lacFile, "lac", "", "shorthand for -lacfile")
	flag.IntVar(&lutIndex, "lut", 0, "initially active LUT index")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "missing input volume file")
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New(os.Stdout, "[viewer] ", log.LstdFlags|log.Lmicroseconds)

	desc, err := parseDescriptor(dims, typeName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	backend, err := resolveBackend(library)
	if err != nil {
		logger.Fatalf("select backend: %v", err)
	}

	cfg := viewer.NewConfig(
		viewer.WithFilename(flag.Arg(0)),
		viewer.WithDescriptor(desc),
		viewer.WithLutFile(lacFile),
		viewer.WithLutIndex(lutIndex),
		viewer.WithBackend(backend),
		viewer.WithVerbose(verbose),
		viewer.WithDebug(debug),
		viewer.WithTrace(trace),
		viewer.WithJSONFile(jsonFile),
		viewer.WithProfiling(profile),
	)

	ctrl, err := viewer.NewController(cfg)
	if err != nil {
		logger.Fatalf("initialize viewer: %v", err)
	}
	if verbose {
		logger.Printf("available LUTs: %s", strings.Join(ctrl.LutNames(), ", "))
	}

	if err := ctrl.Do(viewer.LoadVolume{Path: cfg.Filename(), Descriptor: cfg.Descriptor()}); err != nil {
		ctrl.Close()
		logger.Fatalf("load volume: %v", err)
	}
	lo, hi := ctrl.DataRange()
	logger.Printf("committed volume value range (%g, %g)", lo, hi)

	if cfg.JSONFile() != "" {
		preds, err := predict.Load(cfg.JSONFile())
		if err != nil {
			ctrl.Close()
			logger.Fatalf("load predictions: %v", err)
		}
		logger.Printf("loaded %d camera prediction(s) from %s", preds.Len(), cfg.JSONFile())
		if err := preds.LoadImages(imageDecoder(filepath.Dir(cfg.JSONFile()))); err != nil {
			logger.Printf("prediction images: %v", err)
		}
	}

	ctrl.Close()
}

// parseDescriptor maps the -dims and -type flags onto a grid descriptor.
// Empty flags leave the matching fields zero for filename inference.
func parseDescriptor(dims, typeName string) (volume.Descriptor, error) {
	var desc volume.Descriptor
	if dims != "" {
		var x, y, z int
		if n, _ := fmt.Sscanf(dims, "%dx%dx%d", &x, &y, &z); n != 3 || x <= 0 || y <= 0 || z <= 0 {
			return desc, fmt.Errorf("invalid -dims %q, want DxDxD", dims)
		}
		desc.DimX, desc.DimY, desc.DimZ = x, y, z
	}
	switch typeName {
	case "":
	case "uint8":
		desc.BytesPerCell = 1
	case "uint16":
		desc.BytesPerCell = 2
	case "float32":
		desc.BytesPerCell = 4
	default:
		return desc, fmt.Errorf("invalid -type %q, want uint8, uint16 or float32", typeName)
	}
	return desc, nil
}

// resolveBackend maps the -library flag onto a backend type. The
// "environment" default defers to the ANARI_LIBRARY variable and falls
// back to the host backend.
func resolveBackend(library string) (device.DeviceBackendType, error) {
	if library == "environment" {
		library = os.Getenv("ANARI_LIBRARY")
		if library == "" {
			library = "host"
		}
	}
	return device.ParseBackendType(library)
}

// imageDecoder resolves prediction image paths against the predictions
// file's directory and decodes them with the registered image formats.
func imageDecoder(baseDir string) predict.Decoder {
	return func(path string) (image.Image, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		return img, err
	}
}
