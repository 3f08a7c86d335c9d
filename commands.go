package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shopify-product-grid/grid"
	"shopify-product-grid/server"
)

var watchPolicy string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve collection grids over HTTP",
	Long: `Starts an HTTP server with:
  GET /collections/{handle}      the rendered grid page
  GET /api/collections/{handle}  the mapped products as JSON
  GET /healthz                   liveness`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(client, logger).ListenAndServe(ctx, cfg.Server.Port)
	},
}

var renderCmd = &cobra.Command{
	Use:   "render [handle]",
	Short: "Fetch a collection once and print the grid markup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return runRender(cmd.Context(), cmd.OutOrStdout(), client, args[0])
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Read collection handles from stdin and re-render on every change",
	Long: `Reads one collection handle per line from stdin. Each new handle
re-runs the fetch and the grid is printed again whenever its state changes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := parsePolicy(watchPolicy)
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runWatch(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), client, policy)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchPolicy, "policy", "latest", `what to do with in-flight fetches on a new handle: "latest" or "arrival"`)
}

func parsePolicy(s string) (grid.Policy, error) {
	switch strings.ToLower(s) {
	case "latest", "":
		return grid.LatestRequest, nil
	case "arrival":
		return grid.ArrivalOrder, nil
	default:
		return 0, errors.Errorf("unknown policy %q", s)
	}
}

func secondsToDuration(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func runRender(ctx context.Context, out io.Writer, src grid.Source, handle string) error {
	products, err := src.Products(ctx, handle)
	if err != nil {
		return err
	}
	return grid.Render(out, grid.Outcome{Status: grid.StatusLoaded, Handle: handle, Products: products})
}

// readLines scans in on its own goroutine so a blocked read never holds up
// cancellation. lines is closed at EOF, then the scan error is sent.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

// runWatch drives a Grid from the handles in in and prints every outcome to
// out. It returns once in is exhausted or ctx is done, after the last fetch
// has settled.
func runWatch(ctx context.Context, in io.Reader, out io.Writer, src grid.Source, policy grid.Policy) error {
	g := grid.New(src, grid.WithPolicy(policy), grid.WithLogger(logger))
	defer g.Close()

	var mu sync.Mutex
	var renderErr error
	g.OnChange(func(o grid.Outcome) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "<!-- %s %s -->\n", o.Handle, o.Status)
		if err := grid.Render(out, o); err != nil && renderErr == nil {
			renderErr = err
		}
	})

	lines, readErr := readLines(ctx, in)
read:
	for {
		select {
		case <-ctx.Done():
			break read
		case line, ok := <-lines:
			if !ok {
				break read
			}
			handle := strings.TrimSpace(line)
			if handle == "" {
				continue
			}
			g.SetHandle(ctx, handle)
		}
	}
	if ctx.Err() == nil {
		if err := <-readErr; err != nil {
			return errors.Wrap(err, "read handles")
		}
	}

	g.Wait()
	logger.Debug("watch finished", zap.String("last_status", g.Outcome().Status.String()))

	mu.Lock()
	defer mu.Unlock()
	return renderErr
}
