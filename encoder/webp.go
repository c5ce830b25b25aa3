package encoder

import (
	"context"
	"fmt"
	"os/exec"

	"renditionmaker/logger"
)

func EncodeWebP(ctx context.Context, in, out string, o EncodeOptions) error {
	if o.CenterCrop {
		logger.Debugf("cwebp cannot center crop without source geometry, fitting %dx%d instead", o.Width, o.Height)
	}
	args := []string{
		"-q", fmt.Sprint(o.Quality),
		"-m", fmt.Sprint(o.Speed),
		"-resize", fmt.Sprint(o.Width), fmt.Sprint(o.Height),
		in, "-o", out,
	}
	cmd := exec.CommandContext(ctx, "cwebp", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("cwebp: %w: %s", err, output)
	}
	return nil
}
