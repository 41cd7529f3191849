// Command irdisplay remaps impulse responses stored as WAV files for display.
//
// Usage:
//
//	irdisplay [flags] target1 source1 [target2 source2] [volume1] [volume2]
//
// Buffer names refer to WAV files in the directory given by --dir, so
// "irdisplay disp ir" reads ir.wav and writes disp.wav. Use "--" before the
// message when a volume is negative.
//
//	irdisplay -d ./irs dispL irL dispR irR
//	irdisplay --no-resize --write-chan 2 disp ir 0.5
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"

	"github.com/tphakala/go-irdisplay"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	Dir       string           `short:"d" type:"existingdir" default:"." help:"Directory holding the WAV buffers."`
	ReadChan  int              `name:"read-chan" default:"1" help:"Buffer read channel (1-based)."`
	WriteChan int              `name:"write-chan" default:"1" help:"Buffer write channel (1-based)."`
	Resize    bool             `default:"true" negatable:"" help:"Resize targets to the source length."`
	Verbose   bool             `short:"v" help:"Verbose output."`
	Version   kong.VersionFlag `help:"Show version information."`
	Message   []string         `arg:"" name:"message" help:"target1 source1 [target2 source2] [volume1] [volume2]"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("irdisplay"),
		kong.Description("Power-curve display remapping of impulse responses"),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version},
	)
	if err != nil {
		return err
	}
	if _, err := parser.Parse(args); err != nil {
		return err
	}

	attrs := irdisplay.Attributes{
		ReadChannel:  cli.ReadChan,
		WriteChannel: cli.WriteChan,
		Resize:       cli.Resize,
	}
	req, err := irdisplay.ParseArgs(cli.Message, attrs)
	if err != nil {
		return err
	}

	logger := log.New(stderr, "", log.LstdFlags)
	if cli.Verbose {
		logger.Printf("Directory: %s", cli.Dir)
		logger.Printf("Pair 1: %s <- %s (volume %g)", req.Target1, req.Source1, req.Volume1)
		if req.HasSecond() {
			logger.Printf("Pair 2: %s <- %s (volume %g)", req.Target2, req.Source2, req.Volume2)
		}
		logger.Printf("Channels: read %d, write %d, resize %t", attrs.ReadChannel, attrs.WriteChannel, attrs.Resize)
	}

	results := make(chan irdisplay.Result, 1)
	p, err := irdisplay.New(irdisplay.NewWAVStore(cli.Dir), &irdisplay.Config{
		Logger: logger,
		OnDone: func(r irdisplay.Result) { results <- r },
	})
	if err != nil {
		return err
	}

	if err := p.Submit(context.Background(), req); err != nil {
		_ = p.Close()
		return err
	}
	if err := p.Close(); err != nil {
		return err
	}

	res := <-results
	if res.Err != nil {
		return res.Err
	}

	for _, t := range res.Targets {
		fmt.Fprintf(stdout, "Remapped %s -> %s (%d samples, %g Hz, source peak %.4f)\n",
			t.Source, t.Name, t.Frames, t.SampleRate, t.Peak)
	}
	return nil
}
