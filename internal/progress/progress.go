// Package progress renders terminal progress bars for image
// operations that touch many files.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

const descLength = 20

// Bar is a progress bar over a known number of steps. A disabled or
// non-TTY Bar is a no-op, so callers never need to branch.
type Bar struct {
	container   *mpb.Progress
	bar         *mpb.Bar
	enabled     bool
	description string
}

// New creates a progress bar with the given total step count. The bar
// only renders when enabled and stderr is a terminal.
func New(total int, enabled bool) *Bar {
	b := &Bar{enabled: enabled && isTerminal()}
	if !b.enabled {
		return b
	}

	// Blank line before the bar so it doesn't crowd preceding logs
	fmt.Fprintln(os.Stderr)

	b.container = mpb.New(
		mpb.WithOutput(os.Stderr),
		mpb.WithWidth(64),
		mpb.WithRefreshRate(100*time.Millisecond),
	)
	b.bar = b.container.New(int64(total),
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string {
				if len(b.description) > descLength {
					return b.description[:descLength-2] + ".."
				}
				return b.description
			}, decor.WC{W: descLength, C: decor.DindentRight}),
			decor.Name("  "),
			decor.CountersNoUnit("%d/%d", decor.WC{C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
		),
	)
	return b
}

// Update sets the current step count and the description shown next
// to the bar.
func (b *Bar) Update(current int, description string) {
	if !b.enabled || b.bar == nil {
		return
	}
	b.description = description
	b.bar.SetCurrent(int64(current))
}

// Finish completes the bar and releases the renderer.
func (b *Bar) Finish() {
	if !b.enabled || b.container == nil {
		return
	}
	b.container.Wait()
	fmt.Fprintln(os.Stderr)
}

// isTerminal checks if stderr is a terminal (TTY)
func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
