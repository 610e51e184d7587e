package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/papersync/pkg/document"
	"github.com/matzehuels/papersync/pkg/errors"
	"github.com/matzehuels/papersync/pkg/pane"
	"github.com/matzehuels/papersync/pkg/pane/raster"
	"github.com/matzehuels/papersync/pkg/scrollsync"
)

// viewerFlags are shared by frame, replay and inspect.
type viewerFlags struct {
	width      int
	height     int
	textHeight float64
	overlay    bool
	noCache    bool
}

func (f *viewerFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.width, "width", 0, "image pane width in pixels (default from config)")
	cmd.Flags().IntVar(&f.height, "height", 0, "image pane height in pixels (default from config)")
	cmd.Flags().Float64Var(&f.textHeight, "text-height", 0, "text pane height (default from config)")
	cmd.Flags().BoolVar(&f.overlay, "overlay", false, "draw position and transform onto frames")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "bypass the page cache")
}

// viewer is a text pane and an image pane synchronized by an engine.
type viewer struct {
	text   *document.Pane
	window *raster.Window
	engine *scrollsync.Engine
}

func (c *CLI) newViewer(ctx context.Context, l *loaded, f viewerFlags) *viewer {
	v := c.Config.Viewer
	if f.width > 0 {
		v.Width = f.width
	}
	if f.height > 0 {
		v.Height = f.height
	}
	if f.textHeight > 0 {
		v.TextHeight = f.textHeight
	}
	if v.TextHeight == 0 {
		v.TextHeight = float64(v.Height)
	}

	window := raster.NewWindow(v.Width, v.Height)
	text := document.NewPane(l.doc.Laid(), v.TextHeight)
	engine := scrollsync.NewEngine(text, l.set, pane.NewRenderer(window, window, l.set),
		scrollsync.WithLogger(componentLogger(ctx, "sync")),
		scrollsync.WithHeaderHeight(l.doc.HeaderHeight),
		scrollsync.WithOverlay(v.Overlay || f.overlay),
		scrollsync.WithImagesLoaded(),
	)
	return &viewer{text: text, window: window, engine: engine}
}

// frameAt scrolls the text pane to y and recomputes. Skippable failures
// return the last good frame with the error.
func (v *viewer) frameAt(ctx context.Context, y float64) (scrollsync.Frame, error) {
	v.text.ScrollTo(y)
	return v.engine.Recompute(ctx)
}

func writePNG(path string, w *raster.Window) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := w.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// frameCommand creates the frame command.
func (c *CLI) frameCommand() *cobra.Command {
	var (
		flags  viewerFlags
		scroll float64
		block  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "frame [document]",
		Short: "Render the image pane for one scroll position",
		Long: `Render the image pane for one scroll position of the text pane.

The position is either an absolute scroll offset (--scroll) or a block
brought to eye level (--block).`,
		Example: `  papersync frame paper.json --scroll 1200 -o frame.png
  papersync frame paper.json --block 14 --overlay`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocument,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := c.openDocument(ctx, args[0], flags.noCache, true)
			if err != nil {
				return err
			}
			defer l.Close()

			v := c.newViewer(ctx, l, flags)
			y := scroll
			if cmd.Flags().Changed("block") {
				if block < 0 || block >= v.text.Len() {
					return fmt.Errorf("block %d out of range [0, %d)", block, v.text.Len())
				}
				v.text.ScrollToBlock(block)
				y = v.text.ScrollTop()
			}

			f, err := v.frameAt(ctx, y)
			if err != nil {
				return fmt.Errorf("scroll %.0f: %w", y, err)
			}
			if err := writePNG(output, v.window); err != nil {
				return err
			}

			printSuccess("Rendered frame")
			printFrame(v.text.ScrollTop(), f, l.set.Len())
			printFile(output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&scroll, "scroll", 0, "text pane scroll offset")
	cmd.Flags().IntVar(&block, "block", 0, "bring this block to eye level instead of --scroll")
	cmd.Flags().StringVarP(&output, "output", "o", "frame.png", "output PNG file")
	cmd.MarkFlagsMutuallyExclusive("scroll", "block")

	return cmd
}

// replayCommand creates the replay command.
func (c *CLI) replayCommand() *cobra.Command {
	var (
		flags    viewerFlags
		from, to float64
		step     float64
		output   string
	)

	cmd := &cobra.Command{
		Use:   "replay [document]",
		Short: "Render frames over a scroll range",
		Long: `Render one PNG per scroll step, as a reader scrolling through the
transcript would see the image pane. Steps where the engine keeps its
previous frame are still written, so the sequence has no gaps.`,
		Example:           `  papersync replay paper.json --to 4000 --step 40 -o frames/`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocument,
		RunE: func(cmd *cobra.Command, args []string) error {
			if step <= 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--step must be positive")
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			l, err := c.openDocument(ctx, args[0], flags.noCache, true)
			if err != nil {
				return err
			}
			defer l.Close()

			v := c.newViewer(ctx, l, flags)
			if !cmd.Flags().Changed("to") {
				to = v.text.MaxScroll()
			}

			prog := newProgress(logger)
			var written, skipped int
			for y := from; y <= to; y += step {
				if err := ctx.Err(); err != nil {
					return err
				}
				_, err := v.frameAt(ctx, y)
				if err != nil {
					if !errors.Skippable(err) {
						return err
					}
					skipped++
					logger.Debug("frame skipped", "scroll", y, "err", err)
					if _, ok := v.engine.Frame(); !ok {
						continue
					}
				}
				path := filepath.Join(output, fmt.Sprintf("frame-%05d.png", written))
				if err := writePNG(path, v.window); err != nil {
					return err
				}
				written++
			}
			prog.done(fmt.Sprintf("Rendered %d frames", written), "skipped", skipped)

			printSuccess("Wrote %d frames", written)
			if skipped > 0 {
				printWarning("%d steps kept the previous frame", skipped)
			}
			printFile(output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&from, "from", 0, "first scroll offset")
	cmd.Flags().Float64Var(&to, "to", 0, "last scroll offset (default: end of transcript)")
	cmd.Flags().Float64Var(&step, "step", 40, "scroll distance between frames")
	cmd.Flags().StringVarP(&output, "output", "o", "frames", "output directory")

	return cmd
}
