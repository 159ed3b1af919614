package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/wippyai/reclaim"
)

func main() {
	var (
		interval    = flag.Duration("interval", 3*time.Second, "Sweep interval")
		headless    = flag.Bool("headless", false, "Run the scripted demo without the TUI")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive && !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal, use -headless")
		os.Exit(1)
	}

	if *headless || !*interactive {
		if err := runHeadless(*interval); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runInteractive(*interval); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runHeadless walks the handle life-cycle once with a manual trigger, the
// mode for hosts without an idle/periodic primitive.
func runHeadless(interval time.Duration) error {
	mgr := reclaim.New(
		reclaim.WithTrigger(reclaim.ManualTrigger()),
		reclaim.WithReleaseErrorHook(func(key any, err error) {
			fmt.Printf("release error for %v: %v\n", key, err)
		}),
	)
	defer mgr.Close()

	h1, err := reclaim.Acquire(mgr, "alpha", newSession("alpha"))
	if err != nil {
		return err
	}
	h2, err := reclaim.Acquire(mgr, "alpha", newSession("alpha"))
	if err != nil {
		return err
	}
	fmt.Printf("acquired alpha twice, same instance: %v\n", h1.Resource() == h2.Resource())
	fmt.Printf("tracked keys: %d\n", mgr.Len())

	fmt.Printf("sweep with handles held: %d keys remain\n", mgr.SweepNow())

	h1.Close()
	h2.Close()
	fmt.Printf("sweep after close: %d keys remain\n", mgr.SweepNow())
	return nil
}
