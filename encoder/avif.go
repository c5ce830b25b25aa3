package encoder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// EncodeAVIF resizes with ImageMagick into a temporary PNG, since avifenc
// cannot scale, then encodes that with avifenc.
func EncodeAVIF(ctx context.Context, in, out string, o EncodeOptions) error {
	tmpDir, err := os.MkdirTemp(filepath.Dir(out), "avif-")
	if err != nil {
		return fmt.Errorf("avif temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	scaled := filepath.Join(tmpDir, "scaled.png")
	resize := o
	resize.Quality = 100
	if err := magickEncode(ctx, in, scaled, resize, "png"); err != nil {
		return err
	}

	args := []string{
		"-q", fmt.Sprint(o.Quality),
		"--speed", fmt.Sprint(o.Speed),
		scaled, out,
	}
	cmd := exec.CommandContext(ctx, "avifenc", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("avifenc: %w: %s", err, output)
	}
	return nil
}
