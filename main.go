package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

// Build-time variables injected via ldflags.
var (
	Version        = "v0.0.0"
	CommitHash     = "dev"
	BuildTimestamp = "1970-01-01T00:00:00Z"
	Builder        = "unknown"
	GithubRepo     = "F0903/pngtoico"
)

func versionString() string {
	return fmt.Sprintf("pngtoico %s-%s", Version, CommitHash)
}

func versionStringLong() string {
	return fmt.Sprintf("pngtoico %s-%s (built %s using %s)\nhttps://github.com/%s\n",
		Version, CommitHash, BuildTimestamp, Builder, GithubRepo)
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmsgprefix)
	log.SetPrefix("[pngtoico] ")

	showVersion := flag.Bool("version", false, "show version and exit")
	doUpdate := flag.Bool("update", false, "check and update to latest release")
	outPath := flag.String("o", "", "output path for a single input (extension forced to .ico)")
	outDir := flag.String("out-dir", "", "directory for converted icons (env: PNGTOICO_OUT_DIR)")
	quiet := flag.Bool("quiet", false, "suppress the progress bar (env: PNGTOICO_QUIET)")
	flag.Usage = func() {
		fmt.Print(versionStringLong())
		fmt.Fprintf(os.Stderr, "\nUsage: %s [options] image.png [image2.png ...]\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Print(versionStringLong())
		return
	}

	if *doUpdate {
		selfUpdate()
		return
	}

	// Only pass Quiet when the user explicitly set -quiet, so the flag
	// default doesn't shadow the env var.
	var quietOverride *bool
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "quiet" {
			quietOverride = quiet
		}
	})

	opts := options{}
	applyOverrides(&opts, overrides{OutDir: *outDir, Quiet: quietOverride})

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if *outPath != "" {
		if len(paths) > 1 {
			log.Fatalf("-o is ambiguous with %d inputs, use -out-dir instead", len(paths))
		}
		if err := convertFile(paths[0], *outPath); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	if failed := convertAll(paths, opts.OutDir, opts.Quiet); failed > 0 {
		os.Exit(1)
	}
}

// options holds the resolved run settings.
type options struct {
	OutDir string
	Quiet  bool
}

// overrides holds CLI flag values for option overrides.
type overrides struct {
	OutDir string
	Quiet  *bool
}

// applyStringOverride applies a string override from env var and flag.
// Priority: flag > env > default.
func applyStringOverride(target *string, envKey, flagVal string) {
	if v := os.Getenv(envKey); v != "" {
		*target = v
	}
	if flagVal != "" {
		*target = flagVal
	}
}

// applyOverrides applies env vars and flags to the run options.
func applyOverrides(opts *options, o overrides) {
	applyStringOverride(&opts.OutDir, "PNGTOICO_OUT_DIR", o.OutDir)

	// Quiet: tri-state parsing (true/1, false/0), flag wins over env.
	if v := os.Getenv("PNGTOICO_QUIET"); v != "" {
		switch v {
		case "true", "1":
			opts.Quiet = true
		case "false", "0":
			opts.Quiet = false
		default:
			log.Printf("Ignoring invalid PNGTOICO_QUIET=%q", v)
		}
	}
	if o.Quiet != nil {
		opts.Quiet = *o.Quiet
	}
}
