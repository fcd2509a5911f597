package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"scanbatch-rest-api/internal/batch"
	"scanbatch-rest-api/internal/capture"
	"scanbatch-rest-api/internal/model"
)

// scanAPI is the part of the API client a session needs.
type scanAPI interface {
	batch.Creator
	List(ctx context.Context) ([]model.Scan, error)
}

// session is one interactive batch. It owns the accumulator; nothing else mutates it.
type session struct {
	api scanAPI
	src *capture.ReaderSource
	out io.Writer
	acc *batch.Accumulator
}

func newSession(api scanAPI, src *capture.ReaderSource, out io.Writer) *session {
	return &session{
		api: api,
		src: src,
		out: out,
		acc: batch.New(),
	}
}

const sessionHelp = `Commands:
  scan               capture a barcode (empty line or "cancel" closes the scanner)
  barcode <text>     type a barcode instead of scanning
  level <level>      select First, Second or Third
  add                add the staged barcode and level to the batch
  delete <id>        remove batch row <id>
  show               list the batch
  clear              discard the batch
  submit             save every batch row
  history            list saved scans
  levels             list selectable levels
  quit               leave without saving`

func (s *session) run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Batch session started. Type \"help\" for commands.")

	for {
		fmt.Fprint(s.out, "> ")
		line, err := s.src.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if quit := s.exec(ctx, line); quit {
			return nil
		}
	}
}

// exec runs one command line and reports whether the session should end.
func (s *session) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, arg := strings.ToLower(fields[0]), strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch cmd {
	case "scan":
		s.scan(ctx)
	case "barcode":
		if arg == "" {
			s.fail(batch.ErrBarcodeRequired)
			return false
		}
		s.acc.SetBarcode(arg)
		s.printStaged()
	case "level":
		level, err := batch.ParseLevel(arg)
		if err != nil {
			s.fail(err)
			return false
		}
		s.acc.SetLevel(level)
		s.printStaged()
	case "add":
		if err := s.acc.AddStaged(); err != nil {
			s.fail(err)
			return false
		}
		printRows(s.out, s.acc.Rows())
	case "delete":
		id, err := strconv.Atoi(arg)
		if err != nil {
			s.fail(fmt.Errorf("delete needs a row id, got %q", arg))
			return false
		}
		if err := s.acc.Delete(id - 1); err != nil {
			s.fail(err)
			return false
		}
		printRows(s.out, s.acc.Rows())
	case "show":
		s.printStaged()
		printRows(s.out, s.acc.Rows())
	case "clear", "close":
		s.acc.Clear()
		fmt.Fprintln(s.out, "Batch cleared")
	case "submit", "save":
		s.submit(ctx)
	case "history":
		scans, err := s.api.List(ctx)
		if err != nil {
			s.fail(err)
			return false
		}
		printHistory(s.out, scans)
	case "levels":
		for _, l := range batch.Levels() {
			fmt.Fprintln(s.out, l)
		}
	case "help":
		fmt.Fprintln(s.out, sessionHelp)
	case "quit", "exit":
		if n := s.acc.Len(); n > 0 {
			fmt.Fprintf(s.out, "Discarding %d unsaved row(s)\n", n)
		}
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type \"help\" for commands.\n", cmd)
	}
	return false
}

func (s *session) scan(ctx context.Context) {
	if msg := s.src.Permission(ctx).Message(); msg != "" {
		fmt.Fprintln(s.out, msg)
	}
	fmt.Fprint(s.out, "Scan a barcode: ")

	payload, err := capture.Capture(ctx, s.src)
	if err != nil {
		if errors.Is(err, capture.ErrCancelled) {
			fmt.Fprintln(s.out, "Scanner closed")
			return
		}
		s.fail(err)
		return
	}

	s.acc.SetBarcode(payload)
	fmt.Fprintf(s.out, "Scanned: %s\n", payload)
}

func (s *session) submit(ctx context.Context) {
	res, err := s.acc.Submit(ctx, s.api)
	if err != nil {
		var submitErr *batch.SubmitError
		if errors.As(err, &submitErr) {
			fmt.Fprintf(s.out, "Error: saved %d, %d row(s) still pending: %v\n",
				submitErr.Sent, submitErr.Pending, submitErr.Err)
			printRows(s.out, s.acc.Rows())
			return
		}
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Success: All batches saved! (%d)\n", res.Submitted)
}

func (s *session) printStaged() {
	barcode, level := s.acc.Staged()
	if barcode == "" {
		barcode = "-"
	}
	fmt.Fprintf(s.out, "Staged: %s / %s\n", barcode, level)
}

func (s *session) fail(err error) {
	fmt.Fprintf(s.out, "Error: %v\n", err)
}
