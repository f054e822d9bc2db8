// bmpsteg hides bitmaps inside bitmaps and edits 24 bit BMP files in place.
package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"

	"github.com/jwSharp/image-processing/internal/adjustments"
	"github.com/jwSharp/image-processing/internal/bmp"
	"github.com/jwSharp/image-processing/internal/convert"
	"github.com/jwSharp/image-processing/internal/filters"
	"github.com/jwSharp/image-processing/internal/stego"
	"github.com/jwSharp/image-processing/internal/utils"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "bmpsteg"
	app.Usage = "24 bit BMP steganography and in-place editing"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
		&cli.BoolFlag{
			Name:    "legacy-padding",
			EnvVars: []string{"BMPSTEG_LEGACY_PADDING"},
			Usage:   "pad rows by (width*3)%4 bytes, for files written that way",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "header",
			Usage:     "Display the BMP and DIB headers",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "layout",
					Usage: "also show stride and padding",
				},
			},
			Action: func(c *cli.Context) error {
				return withImage(c, func(b *bmp.Image) error {
					fmt.Fprint(c.App.Writer, b.Header())
					if c.Bool("layout") {
						fmt.Fprintln(c.App.Writer)
						fmt.Fprint(c.App.Writer, b.Layout())
					}
					return nil
				}, bmp.ReadOnly())
			},
		},
		imageCommand("reveal", "Reveal an image hidden in the low bits", stego.Reveal),
		{
			Name:        "peek",
			Usage:       "Reveal a hidden image",
			Description: "Without --out or --preview the file is modified, exactly like reveal.",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "out",
					Usage: "write the revealed image to `FILE` and leave the input untouched",
				},
				&cli.BoolFlag{
					Name:  "preview",
					Usage: "print the revealed image to the terminal and leave the input untouched",
				},
			},
			Action: func(c *cli.Context) error {
				if c.String("out") == "" && !c.Bool("preview") {
					return withImage(c, stego.Peek)
				}
				return withImage(c, func(b *bmp.Image) error {
					m, err := stego.PeekView(b)
					if err != nil && !errors.Is(err, bmp.ErrIOFault) {
						return err
					}
					if c.Bool("preview") {
						if err := utils.PrintImage(c.App.Writer, m); err != nil {
							return err
						}
					}
					if out := c.String("out"); out != "" {
						if err := writeBitmap(out, m); err != nil {
							return err
						}
					}
					return err
				}, bmp.ReadOnly())
			},
		},
		{
			Name:      "hide",
			Usage:     "Hide HIDDEN inside the low bits of HOST",
			ArgsUsage: "HOST HIDDEN",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.Name, 1)
				}

				opts := imageOptions(c)

				host, err := bmp.Open(c.Args().Get(0), opts...)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer host.Close()

				hidden, err := bmp.Open(c.Args().Get(1), append(opts, bmp.ReadOnly())...)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer hidden.Close()

				if err := stego.Hide(host, hidden); err != nil {
					return cli.Exit(err, 1)
				}
				return nil
			},
		},
		imageCommand("invert", "Invert every color", filters.Invert),
		{
			Name:      "grayscale",
			Usage:     "Convert to grayscale",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "method",
					Value: filters.Linear,
					Usage: "one of linear, average, luma",
				},
			},
			Action: func(c *cli.Context) error {
				return withImage(c, func(b *bmp.Image) error {
					return filters.Grayscale(b, c.String("method"))
				})
			},
		},
		imageCommand("hflip", "Flip horizontally", adjustments.HFlip),
		imageCommand("mirror", "Mirror the right half onto the left half", adjustments.Mirror),
		{
			Name:      "preview",
			Usage:     "Print the image to the terminal",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				return withImage(c, func(b *bmp.Image) error {
					m, err := b.Render(nil)
					if err != nil && !errors.Is(err, bmp.ErrIOFault) {
						return err
					}
					if perr := utils.PrintImage(c.App.Writer, m); perr != nil {
						return perr
					}
					return err
				}, bmp.ReadOnly())
			},
		},
		{
			Name:      "convert",
			Usage:     "Convert a PNG, JPEG, GIF or BMP image to a 24 bit BMP",
			ArgsUsage: "INPUT OUTPUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "width",
					Usage: "output width, requires --height",
				},
				&cli.IntFlag{
					Name:  "height",
					Usage: "output height, requires --width",
				},
				&cli.IntFlag{
					Name:  "colors",
					Usage: "reduce to at most `N` colors",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.Name, 1)
				}

				in, err := os.Open(c.Args().Get(0))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer in.Close()

				filename := c.Args().Get(1)
				out, err := os.Create(filename)
				if err != nil {
					return cli.Exit(err, 1)
				}

				if err := convert.Convert(in, out, convert.Options{
					Width:  c.Int("width"),
					Height: c.Int("height"),
					Colors: c.Int("colors"),
				}); err != nil {
					out.Close()
					os.Remove(filename)
					return cli.Exit(err, 1)
				}
				if err := out.Close(); err != nil {
					os.Remove(filename)
					return cli.Exit(err, 1)
				}
				return nil
			},
		},
	}

	return app
}

func imageCommand(name, usage string, op func(*bmp.Image) error) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			return withImage(c, op)
		},
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(c.App.ErrWriter)
	}
	return logger
}

func imageOptions(c *cli.Context) []bmp.Option {
	return []bmp.Option{
		bmp.WithLogger(newLogger(c)),
		bmp.WithLegacyPadding(c.Bool("legacy-padding")),
	}
}

// withImage opens the first argument, runs fn and always closes the image.
func withImage(c *cli.Context, fn func(*bmp.Image) error, opts ...bmp.Option) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.Name, 1)
	}

	b, err := bmp.Open(c.Args().First(), append(imageOptions(c), opts...)...)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer b.Close()

	if err := fn(b); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

func writeBitmap(filename string, m *image.RGBA) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := bmp.Encode(f, m); err != nil {
		return err
	}
	return f.Close()
}
