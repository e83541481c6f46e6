package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/imagewand/imagewand/internal/config"
	"github.com/imagewand/imagewand/internal/wand"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("imagewand %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("imagewand - sequential image option processor")
			fmt.Println()
			fmt.Println("Usage: imagewand [options...]")
			fmt.Println()
			fmt.Println("Options are processed left to right, e.g.:")
			fmt.Println("  imagewand -read in.png -resize 50% -write out.png")
			fmt.Println("  imagewand -read in.png \\( +clone -blur 0x2 \\) +swap -write out.png")
			fmt.Println()
			fmt.Println("Flags:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  IMAGEWAND_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println("  IMAGEWAND_PROFILE=path.yaml  Seed settings from a profile")
			return
		}
	}

	logger := newLogger(os.Getenv("IMAGEWAND_LOG_LEVEL"))
	defer logger.Sync()

	if err := run(os.Args[1:], logger); err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if level == "debug" {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// run walks the argument vector left to right, classifying each option
// and feeding it to the matching dispatch entry point. Dispatch errors
// accumulate in the context's sink; only a blocking severity (above
// error) aborts the walk.
func run(args []string, logger *zap.Logger) error {
	settings := wand.NewSettings()
	if path := os.Getenv("IMAGEWAND_PROFILE"); path != "" {
		profile, err := config.LoadProfile(path)
		if err != nil {
			return err
		}
		for name, value := range profile {
			settings.Set(name, value)
		}
	}

	ctx := wand.New(settings, wand.WithLogger(logger))
	defer ctx.Close()

	for i := 0; i < len(args); i++ {
		token := args[i]

		name, plusForm := optionName(token)
		spec := wand.Classify(name)
		if spec.Class == wand.ClassNone {
			// A bare token with no sigil is an implicit read, the
			// conventional shorthand for input files.
			if token != "" && token[0] != '-' && token[0] != '+' {
				wand.ApplyControl(ctx, "-read", token)
				continue
			}
			return fmt.Errorf("unrecognized option %q", token)
		}

		nargs := spec.NArgs
		if plusForm && spec.PlusNoArg {
			nargs = 0
		}
		if i+nargs > len(args)-1 {
			return fmt.Errorf("option %q: missing argument", token)
		}
		var arg1, arg2 string
		if nargs > 0 {
			arg1 = args[i+1]
		}
		if nargs > 1 {
			arg2 = args[i+2]
		}
		i += nargs

		switch spec.Class {
		case wand.ClassSetting:
			wand.ApplySetting(ctx, token, arg1)
		case wand.ClassSimple:
			if len(ctx.Images()) == 0 {
				return fmt.Errorf("option %q: no images loaded", token)
			}
			wand.ApplyPerImageOperator(ctx, token, arg1, arg2)
		case wand.ClassList:
			if len(ctx.Images()) == 0 {
				return fmt.Errorf("option %q: no images loaded", token)
			}
			wand.ApplyListOperator(ctx, token, arg1, arg2)
		case wand.ClassControl:
			wand.ApplyControl(ctx, token, arg1)
		}
	}

	if ctx.DrainExceptions(true) {
		return fmt.Errorf("processing aborted")
	}
	return nil
}

// optionName strips the sigil (or the "--" read marker) so the token
// can be classified. Grouping tokens pass through unchanged.
func optionName(token string) (string, bool) {
	switch token {
	case "(", ")", "{", "}", "--":
		return token, false
	}
	if len(token) > 1 && (token[0] == '-' || token[0] == '+') {
		return token[1:], token[0] == '+'
	}
	return token, false
}
