// Command docxhtml converts word-processing documents to an editable
// HTML representation and back:
//
//	docxhtml get <doc.docx> <out.html>     produce HTML from a word document
//	docxhtml put <doc.docx> <edited.html>  update the document from edited HTML
//	docxhtml create <doc.docx> <in.html>   create a fresh document from HTML
//	docxhtml inspect <doc.docx>            interactive round-trip inspector
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/uxwrite/docxhtml/cmd/docxhtml/tui"
	"github.com/uxwrite/docxhtml/pkg/docxhtml"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	prefix := flag.String("prefix", "", "id attribute prefix for generated HTML")
	indent := flag.String("indent", "", "indentation string for serialized output")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	opts := &docxhtml.Options{IDPrefix: *prefix, Indent: *indent}

	verb := args[0]
	switch verb {
	case "get", "put", "create":
		if len(args) != 3 {
			slog.Error("expected a document path and an HTML path", "verb", verb)
			usage()
			os.Exit(1)
		}
		if err := runVerb(verb, args[1], args[2], opts); err != nil {
			slog.Error("conversion failed", "verb", verb, "error", err)
			os.Exit(1)
		}
		slog.Info("done", "verb", verb, "document", args[1], "html", args[2])

	case "inspect":
		if len(args) != 2 {
			slog.Error("expected a document path")
			usage()
			os.Exit(1)
		}
		if err := runInspect(args[1], opts); err != nil {
			slog.Error("inspect failed", "error", err)
			os.Exit(1)
		}

	default:
		slog.Error("unknown verb", "verb", verb)
		usage()
		os.Exit(1)
	}
}

func runVerb(verb, concretePath, abstractPath string, opts *docxhtml.Options) error {
	switch verb {
	case "get":
		return docxhtml.GetFile(concretePath, abstractPath, opts)
	case "put":
		return docxhtml.PutFile(concretePath, abstractPath, opts)
	default:
		return docxhtml.CreateFile(concretePath, abstractPath, opts)
	}
}

func runInspect(concretePath string, opts *docxhtml.Options) error {
	model, err := tui.NewInspector(concretePath, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: docxhtml [flags] <verb> <args>

verbs:
  get <doc.docx> <out.html>      produce HTML from a word document
  put <doc.docx> <edited.html>   update the document from edited HTML
  create <doc.docx> <in.html>    create a fresh document from HTML
  inspect <doc.docx>             interactive round-trip inspector

flags:
`)
	flag.PrintDefaults()
}
