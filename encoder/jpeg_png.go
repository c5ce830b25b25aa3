package encoder

import (
	"context"
	"fmt"
	"os/exec"
)

// EncodeJPG encodes using ImageMagick
func EncodeJPG(ctx context.Context, in, out string, o EncodeOptions) error {
	return magickEncode(ctx, in, out, o, "jpg")
}

// EncodePNG encodes using ImageMagick
func EncodePNG(ctx context.Context, in, out string, o EncodeOptions) error {
	return magickEncode(ctx, in, out, o, "png")
}

// EncodeGIF encodes using ImageMagick
func EncodeGIF(ctx context.Context, in, out string, o EncodeOptions) error {
	return magickEncode(ctx, in, out, o, "gif")
}

// magickArgs fits the image into WxH, or fills and center-crops it to exactly WxH.
func magickArgs(in, out string, o EncodeOptions, format string) []string {
	size := fmt.Sprintf("%dx%d", o.Width, o.Height)
	args := []string{in}
	if o.CenterCrop {
		args = append(args, "-resize", size+"^", "-gravity", "center", "-extent", size)
	} else {
		args = append(args, "-resize", size)
	}
	args = append(args,
		"-quality", fmt.Sprint(o.Quality),
		fmt.Sprintf("%s:%s", format, out),
	)
	return args
}

// Shared helper for magick-based formats
func magickEncode(ctx context.Context, in, out string, o EncodeOptions, format string) error {
	cmd := exec.CommandContext(ctx, "magick", magickArgs(in, out, o, format)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("magick %s: %w: %s", format, err, output)
	}
	return nil
}
