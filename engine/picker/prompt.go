package picker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/colorchecker/engine/capture"
	"github.com/Carmen-Shannon/colorchecker/internal/logger"
)

// promptPicker is the terminal implementation of Picker.
type promptPicker struct {
	enum     Enumerator
	out      io.Writer
	denylist []string

	// lines delivers input lines from a single reader goroutine so a cancelled prompt does not
	// lose the next line to an abandoned read.
	lines chan string
	eof   chan struct{}
}

var _ Picker = &promptPicker{}

// NewPromptPicker creates a picker that lists windows on out and reads choices from in.
//
// Commands at the window prompt: a list number selects, r reloads the list, q quits.
//
// Parameters:
//   - enum: the window enumerator
//   - in: the input stream, usually stdin
//   - out: the output stream, usually stdout
//   - opts: a variadic list of PickerBuilderOption functions
//
// Returns:
//   - Picker: the prompt picker
func NewPromptPicker(enum Enumerator, in io.Reader, out io.Writer, opts ...PickerBuilderOption) Picker {
	p := &promptPicker{
		enum:     enum,
		out:      out,
		denylist: DefaultDenylist,
		lines:    make(chan string),
		eof:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	go func() {
		defer close(p.eof)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			p.lines <- strings.TrimSpace(scanner.Text())
		}
	}()
	return p
}

func (p *promptPicker) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-p.lines:
		return line, nil
	case <-p.eof:
		return "", ErrCancelled
	}
}

func (p *promptPicker) ChooseTarget(ctx context.Context) (Selection, error) {
	w, err := p.chooseWindow(ctx)
	if err != nil {
		return Selection{}, err
	}
	lut, err := p.chooseLut(ctx)
	if err != nil {
		return Selection{}, err
	}
	correction, err := p.chooseCorrection(ctx)
	if err != nil {
		return Selection{}, err
	}

	logger.WithComponent("picker").Info().
		Str("window", w.Label()).
		Int("lut", lut).
		Bool("correction", correction).
		Msg("target selected")
	return Selection{
		Target:          capture.Target{Handle: w.Handle, Size: w.Size},
		LutIndex:        lut,
		ApplyCorrection: correction,
	}, nil
}

func (p *promptPicker) chooseWindow(ctx context.Context) (WindowInfo, error) {
	for {
		windows, err := ListCapturable(p.enum, p.denylist)
		if err != nil {
			return WindowInfo{}, err
		}

		fmt.Fprintln(p.out, "Capturable windows:")
		for i, w := range windows {
			fmt.Fprintf(p.out, "  %2d) %s\n", i+1, w.Label())
		}
		if len(windows) == 0 {
			fmt.Fprintln(p.out, "  (none)")
		}

		for {
			fmt.Fprint(p.out, "Select window [number, r = reload, q = quit]: ")
			line, err := p.readLine(ctx)
			if err != nil {
				return WindowInfo{}, err
			}
			switch strings.ToLower(line) {
			case "q", "quit":
				return WindowInfo{}, ErrCancelled
			case "r", "reload":
			case "":
				continue
			default:
				n, convErr := strconv.Atoi(line)
				if convErr != nil || n < 1 || n > len(windows) {
					fmt.Fprintf(p.out, "invalid choice %q\n", line)
					continue
				}
				return windows[n-1], nil
			}
			break
		}
	}
}

func (p *promptPicker) chooseLut(ctx context.Context) (int, error) {
	fmt.Fprintln(p.out, "Emulation type:")
	for i, name := range LutNames {
		fmt.Fprintf(p.out, "  %d : %s\n", i+1, name)
	}
	for {
		fmt.Fprint(p.out, "Select emulation type [1]: ")
		line, err := p.readLine(ctx)
		if err != nil {
			return 0, err
		}
		if line == "" {
			return 0, nil
		}
		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > len(LutNames) {
			fmt.Fprintf(p.out, "invalid choice %q\n", line)
			continue
		}
		return n - 1, nil
	}
}

func (p *promptPicker) chooseCorrection(ctx context.Context) (bool, error) {
	for {
		fmt.Fprint(p.out, "Apply correction LUT? [y/N]: ")
		line, err := p.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "", "n", "no":
			return false, nil
		case "y", "yes":
			return true, nil
		}
		fmt.Fprintf(p.out, "invalid choice %q\n", line)
	}
}
