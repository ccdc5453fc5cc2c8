package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/doodle-format/doodle"
)

// ParseAndRun reads the command-line arguments and runs the decoder
// against the requested input.
func ParseAndRun() error {
	var args Args

	options := []kong.Option{
		kong.Name("doodle"),
		kong.Description("Compile a format and run it against bytes."),
		kong.UsageOnError(),
	}

	kong.Parse(&args, options...)
	return args.Run()
}

// Args is the command-line interface: pick one of the built-in sample
// formats, a file (or stdin) of bytes to run it against, and a
// verbosity level.
type Args struct {
	Verbose int `help:"Increase verbosity level." short:"v" type:"counter"`

	Format string `help:"Built-in sample format to run." short:"s" default:"length-prefixed" enum:"length-prefixed,cons-list"`

	File *os.File `help:"The file to be parsed, or '-' for stdin." short:"f" arg:"" default:"-"`
}

// Run executes prologue/run/epilogue in that order and returns any
// error from the main logic.
func (a *Args) Run() error {
	a.prologue()
	defer a.epilogue()

	return a.run()
}

func (a *Args) prologue() {
	switch a.Verbose {
	case 0:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case 1:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case 2:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()

	log.Debug().Int("verbosity", a.Verbose).Str("format", a.Format).Msg("completed prologue")
}

func (a *Args) epilogue() {
	log.Debug().Msg("completed epilogue")
}

func (a *Args) run() error {
	log.Debug().Any("args", a).Msg("running")

	input, err := io.ReadAll(a.File)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	module, root := sampleFormat(a.Format)
	program, err := doodle.Compile(module, root)
	if err != nil {
		return fmt.Errorf("compiling format %q: %w", a.Format, err)
	}

	value, cursor, err := program.Run(doodle.NewCursor(input))
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	log.Info().Int("bytesConsumed", cursor.Offset).Msg("parse succeeded")

	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}
