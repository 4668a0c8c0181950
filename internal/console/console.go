// Package console wraps the line-based terminal I/O of the simulator.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

const clearSequence = "\033[H\033[2J"

type Console struct {
	in    *bufio.Reader
	out   io.Writer
	sleep func(time.Duration)
	tty   bool
}

func New(in io.Reader, out io.Writer) *Console {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &Console{
		in:    bufio.NewReader(in),
		out:   out,
		sleep: time.Sleep,
		tty:   tty,
	}
}

// WithSleep replaces the function used for pauses and ticks.
func (c *Console) WithSleep(sleep func(time.Duration)) *Console {
	c.sleep = sleep
	return c
}

// Prompt prints msg and reads one line with surrounding whitespace removed.
// io.EOF is returned only when the input is exhausted and nothing was read.
func (c *Console) Prompt(msg string) (string, error) {
	fmt.Fprint(c.out, msg)
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

// Clear wipes the screen when writing to a terminal.
func (c *Console) Clear() {
	if c.tty {
		fmt.Fprint(c.out, clearSequence)
	}
}

func (c *Console) Pause(d time.Duration) {
	if d > 0 {
		c.sleep(d)
	}
}

// Ticks draws n dots, one per interval.
func (c *Console) Ticks(n int, interval time.Duration, desc string) {
	if n <= 0 {
		return
	}
	bar := progressbar.NewOptions(n,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWidth(n),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        ".",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	for i := 0; i < n; i++ {
		c.Pause(interval)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(c.out)
}
