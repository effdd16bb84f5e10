package cli

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/soocke/mystic-booth/booth"
	"github.com/soocke/mystic-booth/domain/raster"
	"github.com/soocke/mystic-booth/domain/strip"
)

func newComposeCommand(ctx *commandContext) *cobra.Command {
	var caption, background, outDir string
	var stickers []string

	cmd := &cobra.Command{
		Use:   "compose <image>...",
		Short: "Compose image files into a strip",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *ctx.config
			if outDir != "" {
				cfg.OutputDir = outDir
			}
			stripCfg := cfg.StripConfig()
			if cmd.Flags().Changed("caption") {
				stripCfg.Caption = caption
			}
			if background != "" {
				bg, err := strip.ParseHexColor(background)
				if err != nil {
					return err
				}
				stripCfg.Background = bg
			}
			for _, spec := range stickers {
				st, err := parseSticker(spec)
				if err != nil {
					return err
				}
				stripCfg.Stickers = append(stripCfg.Stickers, st)
			}

			shots := make([]*raster.Source, 0, len(args))
			defer func() { raster.ReleaseAll(shots) }()
			for _, path := range args {
				src, err := raster.DecodeFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				shots = append(shots, src)
			}

			svc, err := booth.New(&cfg, ctx.logger)
			if err != nil {
				return err
			}
			defer svc.Close()
			res, err := svc.ComposeAndSave(context.Background(), shots, stripCfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", res.Path, humanize.Bytes(uint64(res.Bytes)))
			return nil
		},
	}
	cmd.Flags().StringVar(&caption, "caption", "", "Caption printed under the photos")
	cmd.Flags().StringVar(&background, "background", "", "Background color as #rrggbb")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory")
	cmd.Flags().StringArrayVar(&stickers, "sticker", nil, "Sticker overlay as path@x,y (repeatable)")
	return cmd
}

// parseSticker reads "path@x,y".
func parseSticker(spec string) (strip.Sticker, error) {
	at := strings.LastIndex(spec, "@")
	if at <= 0 {
		return strip.Sticker{}, fmt.Errorf("sticker %q: want path@x,y", spec)
	}
	path, pos := spec[:at], spec[at+1:]
	xs, ys, ok := strings.Cut(pos, ",")
	if !ok {
		return strip.Sticker{}, fmt.Errorf("sticker %q: want path@x,y", spec)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if errX != nil || errY != nil {
		return strip.Sticker{}, fmt.Errorf("sticker %q: bad position", spec)
	}
	src, err := raster.DecodeFile(path)
	if err != nil {
		return strip.Sticker{}, fmt.Errorf("sticker %q: %w", spec, err)
	}
	// Stickers are drawn once; keep an unpooled copy and release the source.
	img := image.NewRGBA(src.Bounds())
	_ = src.Read(func(px *image.RGBA) error {
		copy(img.Pix, px.Pix)
		return nil
	})
	src.Release()
	return strip.Sticker{Image: img, At: image.Pt(x, y)}, nil
}
