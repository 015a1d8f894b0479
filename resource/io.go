package resource

import (
	"context"
	"io"
)

// LimitWriter wraps w so that writes respect the controller's IO budget.
// With a nil controller or no IO limit it returns w unchanged.
func LimitWriter(ctx context.Context, c *Controller, w io.Writer) io.Writer {
	if c == nil || c.ioLimiter == nil {
		return w
	}
	return &limitedWriter{ctx: ctx, c: c, w: w}
}

// LimitReader wraps r so that reads respect the controller's IO budget.
// With a nil controller or no IO limit it returns r unchanged.
func LimitReader(ctx context.Context, c *Controller, r io.Reader) io.Reader {
	if c == nil || c.ioLimiter == nil {
		return r
	}
	return &limitedReader{ctx: ctx, c: c, r: r}
}

type limitedWriter struct {
	ctx context.Context
	c   *Controller
	w   io.Writer
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if err := lw.c.AcquireIO(lw.ctx, len(p)); err != nil {
		return 0, err
	}
	return lw.w.Write(p)
}

type limitedReader struct {
	ctx context.Context
	c   *Controller
	r   io.Reader
}

func (lr *limitedReader) Read(p []byte) (int, error) {
	n, err := lr.r.Read(p)
	if n > 0 {
		if aerr := lr.c.AcquireIO(lr.ctx, n); aerr != nil {
			return n, aerr
		}
	}
	return n, err
}
