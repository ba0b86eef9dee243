package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"pixbuf/codec"
	"pixbuf/parallel"
	"pixbuf/raster"
)

var cli struct {
	Jobs    int  `help:"Worker goroutines for folder processing, 0 means one per CPU" short:"j" default:"0"`
	Verbose bool `help:"Log every processed file" short:"v"`

	Convert ConvertCmd `cmd:"" help:"Convert images between formats, pixel types and layouts"`
	Info    InfoCmd    `cmd:"" help:"Print image headers without decoding pixels"`
	Flip    FlipCmd    `cmd:"" help:"Mirror images in place"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("pixbuf"),
		kong.Description("Pixel container toolbox: convert, inspect and flip images."))

	if cli.Verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		raster.SetLogger(slog.Default())
	}

	kctx.FatalIfErrorf(kctx.Run(codec.Registry(), parallel.Start(cli.Jobs)))
}
