package tessel

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/esimov/tessel/utils"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// DefaultFormat is the output format used when writing to a pipe or a
// directory without an explicit format.
const DefaultFormat = ".png"

// Ops describes where the generated tessellations are written.
type Ops struct {
	// Dst is a file name, a directory (when Count > 1) or PipeName for
	// stdout.
	Dst, PipeName string
	// Format is the file extension used for stdout and directory output.
	Format string
	// Count is the number of images to generate. Image i is generated with
	// the processor's seed plus i.
	Count   int
	Workers int

	// out receives the status messages, os.Stderr by default.
	out io.Writer
}

// result holds the relevant information about a generated image.
type result struct {
	path string
	err  error
}

func (op *Ops) stderr() io.Writer {
	if op.out != nil {
		return op.out
	}
	return os.Stderr
}

// format returns the output extension, with its leading dot.
func (op *Ops) format() string {
	f := op.Format
	if f == "" {
		return DefaultFormat
	}
	if !strings.HasPrefix(f, ".") {
		f = "." + f
	}
	return strings.ToLower(f)
}

// Execute generates the tessellations described by p and writes them to the
// destination.
func (op *Ops) Execute(p *Processor) error {
	defaultMsg := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ TESSEL", utils.StatusMessage),
		utils.DecorateText("⇢ splitting the unit square...", utils.DefaultMessage),
	)
	if term.IsTerminal(int(os.Stderr.Fd())) && op.out == nil {
		p.Spinner = utils.NewSpinner(defaultMsg, time.Millisecond*80, true)
		p.Spinner.Start()
	}

	// Capture CTRL-C signal and restores back the cursor visibility.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	finished := make(chan struct{})
	defer func() {
		signal.Stop(signalChan)
		close(finished)
	}()
	go func() {
		select {
		case <-signalChan:
			if p.Spinner != nil {
				p.Spinner.RestoreCursor()
			}
			os.Exit(1)
		case <-finished:
		}
	}()

	now := time.Now()
	err := op.execute(p)

	if p.Spinner != nil {
		p.Spinner.StopMsg = op.stopMsg(err)
		p.Spinner.Stop()
	}
	if err == nil {
		fmt.Fprintf(op.stderr(), "\nExecution time: %s\n",
			utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	}
	return err
}

func (op *Ops) execute(p *Processor) error {
	switch {
	case op.Count > 1:
		if op.Dst == op.PipeName {
			return errors.New("multiple images can't be written to stdout, use a directory")
		}
		return op.generateMany(p)
	case op.Dst == op.PipeName:
		ext := op.format()
		if !isValidExtension(ext) {
			return fmt.Errorf("%v: %w", ext, errUnsupportedFormat)
		}
		return op.process(p, op.Dst, ext)
	default:
		ext := strings.ToLower(filepath.Ext(op.Dst))
		if !isValidExtension(ext) {
			return fmt.Errorf("%q: %w", ext, errUnsupportedFormat)
		}
		err := op.process(p, op.Dst, ext)
		op.printOpStatus(op.Dst, err)
		return err
	}
}

// generateMany generates op.Count images concurrently into the op.Dst
// directory.
func (op *Ops) generateMany(p *Processor) error {
	ext := op.format()
	if !isValidExtension(ext) {
		return fmt.Errorf("%v: %w", ext, errUnsupportedFormat)
	}
	if err := os.MkdirAll(op.Dst, 0755); err != nil {
		return fmt.Errorf("unable to create the destination directory: %w", err)
	}

	workers := op.Workers
	// Limit the concurrently running workers to maxWorkers.
	if workers <= 0 || workers > maxWorkers {
		workers = min(runtime.NumCPU(), maxWorkers)
	}
	workers = min(workers, op.Count)

	jobs := make(chan int)
	ch := make(chan result)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(jobs)
		for i := range op.Count {
			select {
			case <-done:
				return
			case jobs <- i:
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			op.consumer(p, ext, ch, done, jobs)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	var errs []error
	for res := range ch {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(res.path), res.err))
		}
		op.printOpStatus(res.path, res.err)
	}
	return errors.Join(errs...)
}

// consumer reads the image indices from the jobs channel and generates the
// corresponding image with its own copy of the processor.
func (op *Ops) consumer(
	p *Processor,
	ext string,
	res chan<- result,
	done <-chan struct{},
	jobs <-chan int,
) {
	for i := range jobs {
		dst := filepath.Join(op.Dst, fmt.Sprintf("tessel-%03d%s", i, ext))
		pc := p.clone(uint64(i))
		pc.Spinner = nil
		err := op.process(pc, dst, ext)

		select {
		case <-done:
			return
		case res <- result{
			path: dst,
			err:  err,
		}:
		}
	}
}

// process generates one image and writes it to out.
func (op *Ops) process(p *Processor, out, ext string) error {
	dst, err := op.pathToFile(out)
	if err != nil {
		return err
	}

	err = p.Process(dst, ext)
	if f, ok := dst.(*os.File); ok && f != os.Stdout {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			// remove the generated image file in case of an error
			os.Remove(f.Name())
		}
	}
	return err
}

// pathToFile converts the destination path to a writable file.
func (op *Ops) pathToFile(out string) (io.Writer, error) {
	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdout")
		}
		return os.Stdout, nil
	}
	dst, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to create the destination file: %w", err)
	}
	return dst, nil
}

// printOpStatus displays the relevant information about a generated image.
func (op *Ops) printOpStatus(fname string, err error) {
	if err != nil {
		fmt.Fprintf(op.stderr(), "%s %s\n",
			utils.DecorateText("\nError generating the image: "+filepath.Base(fname), utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v", err), utils.DefaultMessage),
		)
		return
	}
	if fname != op.PipeName {
		fmt.Fprintf(op.stderr(), "\nThe image has been saved as: %s %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}

func (op *Ops) stopMsg(err error) string {
	if err != nil {
		return fmt.Sprintf("%s %s %s",
			utils.DecorateText("⚡ TESSEL", utils.StatusMessage),
			utils.DecorateText("generating the image failed...", utils.DefaultMessage),
			utils.DecorateText("✘", utils.ErrorMessage),
		)
	}
	return fmt.Sprintf("%s %s %s",
		utils.DecorateText("⚡ TESSEL", utils.StatusMessage),
		utils.DecorateText("⇢", utils.DefaultMessage),
		utils.DecorateText("the tessellation has been generated successfully ✔", utils.SuccessMessage),
	)
}
