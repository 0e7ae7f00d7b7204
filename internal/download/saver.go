package download

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
)

// ErrCanceled is returned when the user dismisses the save prompt.
var ErrCanceled = errors.New("download: save canceled")

// Saver writes the image behind imageURL to local storage and returns the
// path it was written to.
type Saver interface {
	Save(ctx context.Context, imageURL, suggestedName string) (string, error)
}

// DialogSaver asks for a destination on In before saving. An empty answer
// accepts the suggested name; end of input cancels.
type DialogSaver struct {
	In         io.Reader
	Out        io.Writer
	Dir        string
	HTTPClient *http.Client
}

func (s *DialogSaver) Save(ctx context.Context, imageURL, suggestedName string) (string, error) {
	def := filepath.Join(s.Dir, suggestedName)
	fmt.Fprintf(s.Out, "Save image as [%s]: ", def)

	line, err := bufio.NewReader(s.In).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		fmt.Fprintln(s.Out)
		return "", ErrCanceled
	}
	path := strings.TrimSpace(line)
	if path == "" {
		path = def
	}
	return writeImage(ctx, s.HTTPClient, imageURL, path)
}

// FileSaver writes the image into Dir under the suggested name without asking.
type FileSaver struct {
	Dir        string
	HTTPClient *http.Client
}

func (s *FileSaver) Save(ctx context.Context, imageURL, suggestedName string) (string, error) {
	return writeImage(ctx, s.HTTPClient, imageURL, filepath.Join(s.Dir, suggestedName))
}

// NewSaver returns a DialogSaver when both in and out are terminals and a
// FileSaver otherwise.
func NewSaver(in, out *os.File, dir string, client *http.Client) Saver {
	if isTerminal(in) && isTerminal(out) {
		return &DialogSaver{In: in, Out: out, Dir: dir, HTTPClient: client}
	}
	return &FileSaver{Dir: dir, HTTPClient: client}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func writeImage(ctx context.Context, client *http.Client, imageURL, path string) (string, error) {
	data, _, err := Fetch(ctx, client, imageURL)
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("download: create dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("download: write file: %w", err)
	}
	return path, nil
}
